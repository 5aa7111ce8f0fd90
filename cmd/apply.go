package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/adapter"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/domain"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

var applySheetFlag string
var applyDryRunFlag bool

// applyCmd represents the apply command.
var applyCmd = newApplyCmd()

const applyLongDescription = `Apply edited translations back into the game files.

Edits come from the scan snapshot, optionally overlaid with an edited CSV
sheet (--sheet). Every touched file gets a one-time .bak backup before
any mutation; files whose records no longer resolve report misses, not
errors.`

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write translations back into game files",
		Long:  applyLongDescription,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshotPath := m.Path(viper.GetString(recordsFlagName))
			records, _, err := recordStore.LoadScan(snapshotPath)
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}

			if applySheetFlag != "" {
				if err := overlaySheet(applySheetFlag, records); err != nil {
					return err
				}
			}

			if applyDryRunFlag {
				return previewEdits(cmd, records)
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

			var summary *domain.PatchSummary
			group := errgroup.Group{}
			group.Go(func() error {
				s, err := orch.Patch(ctx, records)
				summary = s
				return err
			})
			err = group.Wait()
			ui.Close()
			if err != nil {
				return fmt.Errorf("apply: %w", err)
			}

			return ui.DisplayPatchSummary(summary)
		},
	}

	cmd.Flags().StringVarP(&applySheetFlag, "sheet", "s", "", "CSV sheet with edited translations")
	cmd.Flags().BoolVarP(&applyDryRunFlag, "dry-run", "n", false, "preview edits as a diff without writing")

	return cmd
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

// overlaySheet merges sheet translations into the snapshot records,
// keyed by stable record ID. Unknown IDs are ignored: the sheet may be
// older or wider than the snapshot.
func overlaySheet(path string, records []m.TextRecord) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open sheet %s: %w", path, err)
	}
	defer f.Close()

	translations, err := adapter.ImportSheet(f)
	if err != nil {
		return fmt.Errorf("import sheet: %w", err)
	}

	for i := range records {
		if translated, ok := translations[records[i].ID]; ok && translated != "" {
			records[i].TranslatedText = translated
		}
	}
	return nil
}

// previewEdits renders a unified diff per edited record instead of
// touching any file.
func previewEdits(cmd *cobra.Command, records []m.TextRecord) error {
	edited := 0
	for i := range records {
		rec := &records[i]
		if !rec.Edited() {
			continue
		}
		edited++

		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(rec.OriginalText),
			B:        difflib.SplitLines(rec.TranslatedText),
			FromFile: rec.ID,
			ToFile:   "translated",
			Context:  1,
		})
		if err != nil {
			return fmt.Errorf("diff record %s: %w", rec.ID, err)
		}
		cmd.Print(diff)
	}

	cmd.Printf("%d record(s) would be applied.\n", edited)
	return nil
}
