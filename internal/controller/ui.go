// Package controller provides the output frontends for scan and patch
// results: a plain text writer and an interactive progress TUI.
package controller

import (
	"os"

	"golang.org/x/term"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/domain"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

// UI is the display surface commands talk to. Progress may be invoked
// from a worker goroutine; implementations redispatch to their own
// execution context.
type UI interface {
	Start() error
	Close()

	Progress(p m.Progress)
	DisplayScanSummary(records []m.TextRecord, resources []m.ResourceRecord) error
	DisplayResources(resources []m.ResourceRecord) error
	DisplayPatchSummary(summary *domain.PatchSummary) error
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
