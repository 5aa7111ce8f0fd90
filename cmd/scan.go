package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/adapter"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/domain"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

var scanSheetFlag string
var scanMinLengthFlag int
var scanLanguageFlag string

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

const scanLongDescription = `Scan a game data directory for translatable text and font resources.

The scan walks the managed module first, then every container file, then
every bundle. Results are written to the snapshot file (see --records)
and optionally exported as a CSV sheet for external editing.`

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [data-dir]",
		Short: "Scan game data for translatable text",
		Long:  scanLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := m.Path(".")
			if len(args) == 1 {
				root = m.Path(args[0])
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			session, err := domain.NewSession(viper.GetInt(sessionCacheSizeKey))
			if err != nil {
				return err
			}

			ui := newUI(cmd)
			if err := ui.Start(); err != nil {
				return err
			}

			orch := domain.NewOrchestrator(walker, session, scanConfigFromFlags(), ui.Progress)

			// The scan runs on a worker goroutine; progress callbacks
			// cross into the UI's own execution context.
			var result *domain.ScanResult
			group := errgroup.Group{}
			group.Go(func() error {
				r, err := orch.Scan(ctx, root)
				result = r
				return err
			})
			err = group.Wait()
			ui.Close()
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			if result.Cancelled {
				cmd.Printf("Scan cancelled after %d/%d files; keeping partial results.\n", result.FilesDone, result.FileCount)
			}

			snapshotPath := m.Path(viper.GetString(recordsFlagName))
			if err := recordStore.SaveScan(snapshotPath, result.Records, result.Resources); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}

			if scanSheetFlag != "" {
				if err := exportSheet(scanSheetFlag, result.Records); err != nil {
					return err
				}
				cmd.Printf("Exported %d record(s) to %s\n", len(result.Records), scanSheetFlag)
			}

			return ui.DisplayScanSummary(result.Records, result.Resources)
		},
	}

	configureScanFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func configureScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&scanSheetFlag, "sheet", "s", "", "export records as a CSV sheet for external editing")
	cmd.Flags().IntVar(&scanMinLengthFlag, "min-length", viper.GetInt(scanMinLengthKey), "minimum text length to keep")
	bindFlagToConfig(cmd.Flags().Lookup("min-length"), scanMinLengthKey)
	cmd.Flags().StringVarP(&scanLanguageFlag, "language", "l", viper.GetString(scanLanguageKey), "source language filter (any, ja, ko, zh-hans, zh-hant, en)")
	bindFlagToConfig(cmd.Flags().Lookup("language"), scanLanguageKey)
}

func exportSheet(path string, records []m.TextRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", path, err)
	}
	defer f.Close()

	if err := adapter.ExportSheet(f, records); err != nil {
		return fmt.Errorf("export sheet: %w", err)
	}
	return nil
}
