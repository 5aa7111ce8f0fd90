package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/domain"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

var replaceFontFlag string
var replaceObjectFlag int64
var replaceFileFlag string

// resourcesCmd represents the resources command.
var resourcesCmd = newResourcesCmd()

func newResourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List font resources found by the last scan",
		Long: `List the font-like resources discovered by the last scan.

Simple font resources can be replaced with 'resources replace'. Composite
resources (TextMeshPro font assets) are listed for reference only: their
replacement requires regenerating atlas and material data.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshotPath := m.Path(viper.GetString(recordsFlagName))
			_, resources, err := recordStore.LoadScan(snapshotPath)
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}
			return newUI(cmd).DisplayResources(resources)
		},
	}

	cmd.AddCommand(newResourcesReplaceCmd())

	return cmd
}

func newResourcesReplaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace a simple font resource with a new font file",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshotPath := m.Path(viper.GetString(recordsFlagName))
			_, resources, err := recordStore.LoadScan(snapshotPath)
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			var target *m.ResourceRecord
			for i := range resources {
				res := &resources[i]
				if string(res.ContainerFile) == replaceFileFlag && res.PrimaryObjectID == replaceObjectFlag {
					target = res
					break
				}
			}
			if target == nil {
				return fmt.Errorf("no resource at object %d in %s; run scan first", replaceObjectFlag, replaceFileFlag)
			}

			fontData, err := os.ReadFile(replaceFontFlag)
			if err != nil {
				return fmt.Errorf("read font file: %w", err)
			}

			session, err := domain.NewSession(viper.GetInt(sessionCacheSizeKey))
			if err != nil {
				return err
			}

			patcher := domain.NewPatcher(session)
			if err := patcher.ApplyFontReplacement(target, fontData); err != nil {
				return fmt.Errorf("replace font: %w", err)
			}
			if target.Status == m.StatusFailed {
				cmd.Printf("Replacement failed: %s\n", target.FailReason)
				return nil
			}

			cmd.Printf("Replaced font %q (object %s) in %s\n",
				target.Name, strconv.FormatInt(target.PrimaryObjectID, 10), target.ContainerFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&replaceFontFlag, "font", "", "path of the replacement font file")
	cmd.Flags().StringVar(&replaceFileFlag, "file", "", "container file holding the resource")
	cmd.Flags().Int64Var(&replaceObjectFlag, "object", 0, "object id of the resource")
	cobra.CheckErr(cmd.MarkFlagRequired("font"))
	cobra.CheckErr(cmd.MarkFlagRequired("file"))
	cobra.CheckErr(cmd.MarkFlagRequired("object"))

	return cmd
}

func init() {
	rootCmd.AddCommand(resourcesCmd)
}
