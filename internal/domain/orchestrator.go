package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/adapter"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/unity"
)

// ScanResult aggregates everything one scan pass collected.
type ScanResult struct {
	Records   []m.TextRecord
	Resources []m.ResourceRecord

	// Cancelled marks a partial result: the scan stopped cooperatively
	// between files, keeping whatever was collected so far.
	Cancelled bool
	FilesDone int
	FileCount int
}

// PatchSummary aggregates one patch pass across container files.
type PatchSummary struct {
	Applied int
	Misses  int
	// FailedFiles lists container files whose edits were dropped whole
	// because the file could not be read or written.
	FailedFiles []m.Path
}

// Orchestrator sequences the locator, detector and patch engine across a
// file set, reporting coarse progress and honoring cooperative
// cancellation at file boundaries. A file in flight always finishes.
type Orchestrator struct {
	walker   adapter.ProjectWalker
	session  *Session
	cfg      *m.ScanConfiguration
	progress m.ProgressFunc
}

// NewOrchestrator wires an orchestrator. progress may be nil; when set it
// is invoked from the scanning goroutine and the consumer redispatches to
// its own execution context.
func NewOrchestrator(walker adapter.ProjectWalker, session *Session, cfg *m.ScanConfiguration, progress m.ProgressFunc) *Orchestrator {
	return &Orchestrator{walker: walker, session: session, cfg: cfg, progress: progress}
}

// Scan discovers the project under root and locates text and resources in
// every file, module first, then containers, then bundles. A container or
// bundle that fails to parse is logged and dropped; a failed project
// discovery or a primary module that cannot be opened aborts the whole
// scan.
func (o *Orchestrator) Scan(ctx context.Context, root m.Path) (*ScanResult, error) {
	project, err := o.walker.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("discover project: %w", err)
	}

	files := project.Files()
	locator := NewLocator(o.session, o.cfg)
	detector := NewDetector(o.session)

	result := &ScanResult{FileCount: len(files)}
	out := &Collector{}

	for _, file := range files {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		if file == project.ManagedModule {
			// Every bytecode record lives in the primary module; losing it
			// silently would invalidate the whole scan.
			if err := locator.LocateModule(file, out); err != nil {
				return nil, fmt.Errorf("scan module %s: %w", file, err)
			}
		} else {
			o.scanFile(file, locator, detector, out, result)
		}
		result.FilesDone++
		o.emit(float64(result.FilesDone)/float64(len(files)), fmt.Sprintf("scanned %s", file))
	}

	result.Records = out.Records()
	return result, nil
}

// scanFile handles the recoverable substrates: containers and bundles.
func (o *Orchestrator) scanFile(file m.Path, locator *Locator, detector *Detector, out *Collector, result *ScanResult) {
	kind, err := unity.SniffFile(string(file))
	if err != nil {
		slog.Warn("skipping unreadable file", "file", file, "error", err)
		return
	}

	switch kind {
	case unity.FileContainer:
		o.scanContainer(file, locator, detector, out, result)

	case unity.FileBundle:
		bundle, err := o.session.Bundle(string(file))
		if err != nil {
			slog.Warn("skipping bundle", "file", file, "error", err)
			return
		}
		for _, entry := range bundle.Entries {
			nested := m.Path(unity.NestedContainerPath(string(file), entry.Name))
			o.scanContainer(nested, locator, detector, out, result)
		}
	}
}

func (o *Orchestrator) scanContainer(file m.Path, locator *Locator, detector *Detector, out *Collector, result *ScanResult) {
	if err := locator.LocateContainer(file, out); err != nil {
		slog.Warn("skipping container", "file", file, "error", err)
		return
	}
	resources, err := detector.LocateResources(file)
	if err != nil {
		slog.Warn("resource detection failed", "file", file, "error", err)
		return
	}
	result.Resources = append(result.Resources, resources...)
}

// Patch groups edited records by container file, preserving first-seen
// file order, and applies each group through the patch engine. A file
// that cannot be read or written drops only its own edits.
func (o *Orchestrator) Patch(ctx context.Context, records []m.TextRecord) (*PatchSummary, error) {
	byFile := make(map[m.Path][]m.TextRecord)
	var order []m.Path
	for i := range records {
		rec := records[i]
		if !rec.Edited() {
			continue
		}
		if _, seen := byFile[rec.ContainerFile]; !seen {
			order = append(order, rec.ContainerFile)
		}
		byFile[rec.ContainerFile] = append(byFile[rec.ContainerFile], rec)
	}

	patcher := NewPatcher(o.session)
	summary := &PatchSummary{}

	for i, file := range order {
		if ctx.Err() != nil {
			break
		}

		result, err := patcher.Apply(file, byFile[file])
		if err != nil {
			slog.Error("patch failed for file", "file", file, "error", err)
			summary.FailedFiles = append(summary.FailedFiles, file)
		} else {
			summary.Applied += result.Applied
			summary.Misses += result.Misses
		}
		o.emit(float64(i+1)/float64(len(order)), fmt.Sprintf("patched %s", file))
	}

	return summary, nil
}

func (o *Orchestrator) emit(fraction float64, message string) {
	if o.progress == nil {
		return
	}
	o.progress(m.Progress{Fraction: fraction, Message: message})
}
