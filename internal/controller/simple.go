package controller

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/domain"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

// SimpleUI prints through the cobra command's writer. Progress events are
// rendered as plain lines, one per file.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start() error { return nil }

// Close finalizes the UI.
func (s *SimpleUI) Close() {}

// Progress prints one line per progress event.
func (s *SimpleUI) Progress(p m.Progress) {
	s.cmd.Printf("[%3.0f%%] %s\n", p.Fraction*100, p.Message)
}

// DisplayScanSummary renders a per-file table of discovered records.
func (s *SimpleUI) DisplayScanSummary(records []m.TextRecord, resources []m.ResourceRecord) error {
	type fileStat struct {
		kept    int
		skipped int
	}
	stats := make(map[string]*fileStat)
	for i := range records {
		rec := &records[i]
		stat, ok := stats[string(rec.ContainerFile)]
		if !ok {
			stat = &fileStat{}
			stats[string(rec.ContainerFile)] = stat
		}
		if rec.Skip {
			stat.skipped++
		} else {
			stat.kept++
		}
	}

	paths := make([]string, 0, len(stats))
	for path := range stats {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"File", "Kept", "Skipped"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	kept, skipped := 0, 0
	for _, path := range paths {
		stat := stats[path]
		table.Append([]string{path, strconv.Itoa(stat.kept), strconv.Itoa(stat.skipped)})
		kept += stat.kept
		skipped += stat.skipped
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d files", len(paths)),
		strconv.Itoa(kept),
		strconv.Itoa(skipped),
	})
	table.Render()

	s.cmd.Printf("\n%s", buf.String())
	if len(resources) > 0 {
		s.cmd.Printf("\nFound %d font resource(s); run 'unityloc resources' for details.\n", len(resources))
	}
	return nil
}

// DisplayResources renders the discovered font-like resources.
func (s *SimpleUI) DisplayResources(resources []m.ResourceRecord) error {
	if len(resources) == 0 {
		s.cmd.Println("No font resources found.")
		return nil
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Name", "File", "Object", "Kind", "Related", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for i := range resources {
		res := &resources[i]
		related := make([]string, 0, len(res.RelatedObjectIDs))
		for _, id := range res.RelatedObjectIDs {
			related = append(related, strconv.FormatInt(id, 10))
		}
		table.Append([]string{
			res.Name,
			string(res.ContainerFile),
			strconv.FormatInt(res.PrimaryObjectID, 10),
			string(res.Kind),
			strings.Join(related, ","),
			string(res.Status),
		})
	}
	table.Render()

	s.cmd.Printf("\n%s", buf.String())
	return nil
}

// DisplayPatchSummary prints the apply outcome.
func (s *SimpleUI) DisplayPatchSummary(summary *domain.PatchSummary) error {
	s.cmd.Printf("Applied %d edit(s), %d stale record(s).\n", summary.Applied, summary.Misses)
	for _, file := range summary.FailedFiles {
		s.cmd.Printf("Failed to patch %s (see log for details).\n", file)
	}
	return nil
}
