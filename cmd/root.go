// Package cmd provides the root command and CLI setup for unityloc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/adapter"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/controller"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

// Stateless shared dependencies. Parser state (the session) is
// deliberately not here: each command constructs its own session scoped
// to one scan-or-patch operation.
var walker adapter.ProjectWalker
var recordStore adapter.RecordStore

// recordsPathFlag is a root-level flag shared by commands that read or
// write the scan snapshot.
var recordsPathFlag string

// plainFlag forces the non-interactive renderer even on a TTY.
var plainFlag bool

// verboseFlag raises the log level to debug.
var verboseFlag bool

// excludeFlags and excludePatternFlags filter text during scans.
var excludeFlags []string
var excludePatternFlags []string

func init() {
	configureRootFlags(rootCmd)

	walker = adapter.NewLocalProjectWalker()
	recordStore = adapter.NewRecordStore()
}

const rootLongDescription = `Unityloc extracts translatable text and font resources from compiled
game data, exports them for external editing, and writes edited
translations back without corrupting the surrounding binary structures.

Typical round trip:
  unityloc scan ./Game_Data --sheet texts.csv
  (edit texts.csv in a spreadsheet tool)
  unityloc apply --sheet texts.csv`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unityloc",
		Short: "Game text extraction and patch tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetBool(verboseFlagName))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(
		&recordsPathFlag, recordsFlagName, "o",
		viper.GetString(recordsFlagName),
		"path of the scan snapshot file",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(recordsFlagName), recordsFlagName)

	cmd.PersistentFlags().BoolVar(&plainFlag, plainFlagName, false, "disable the interactive progress display")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), verboseFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludeFlags, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude exact string from translation (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringArrayVar(&excludePatternFlags, excludePatternFlagName, viper.GetStringSlice(excludePatternKey), "exclude strings matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludePatternFlagName), excludePatternKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// newUI picks the interactive or plain frontend for a command run.
func newUI(cmd *cobra.Command) controller.UI {
	simple := controller.NewSimpleUI(cmd)
	if plainFlag || !controller.IsTTY(os.Stdout) {
		return simple
	}
	return controller.NewTUI(simple, cmd.OutOrStdout())
}

// scanConfigFromFlags assembles the immutable scan policy from flags,
// config file and environment.
func scanConfigFromFlags() *m.ScanConfiguration {
	return m.NewScanConfiguration(m.ScanOptions{
		ScanBytecode:        viper.GetBool(scanBytecodeKey),
		ScanObjectFields:    viper.GetBool(scanObjectsKey),
		ScanRawBlobs:        viper.GetBool(scanBlobsKey),
		MinLength:           viper.GetInt(scanMinLengthKey),
		SourceLanguage:      m.Language(viper.GetString(scanLanguageKey)),
		UseReservedKeywords: viper.GetBool(scanKeywordsKey),
		Exclusions:          viper.GetStringSlice(excludeConfigKey),
		ExclusionPatterns:   viper.GetStringSlice(excludePatternKey),
	})
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
