package controller

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/domain"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

var (
	tuiTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tuiMessageStyle = lipgloss.NewStyle().Faint(true)
)

// TUI renders live scan/patch progress with a Bubble Tea progress bar and
// falls back to the simple renderer for final tables.
type TUI struct {
	simple  *SimpleUI
	output  io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a TUI that shares the SimpleUI table rendering.
func NewTUI(simple *SimpleUI, output io.Writer) *TUI {
	return &TUI{simple: simple, output: output}
}

type progressMsg m.Progress

type finishedMsg struct{}

// Start launches the progress program on its own goroutine. Progress
// events arrive through Send, which is safe across goroutines; that is
// how worker-thread callbacks reach the UI's execution context.
func (t *TUI) Start() error {
	model := newProgressbarModel()
	t.program = tea.NewProgram(model, tea.WithOutput(t.output))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		if _, err := t.program.Run(); err != nil {
			fmt.Fprintf(t.output, "progress display error: %v\n", err)
		}
	}()

	return nil
}

// Close stops the progress program and waits for it to unwind.
func (t *TUI) Close() {
	if t.program == nil {
		return
	}
	t.program.Send(finishedMsg{})
	<-t.done
	t.program = nil
}

// Progress forwards a progress event into the running program.
func (t *TUI) Progress(p m.Progress) {
	if t.program == nil {
		return
	}
	t.program.Send(progressMsg(p))
}

// DisplayScanSummary defers to the simple renderer.
func (t *TUI) DisplayScanSummary(records []m.TextRecord, resources []m.ResourceRecord) error {
	return t.simple.DisplayScanSummary(records, resources)
}

// DisplayResources defers to the simple renderer.
func (t *TUI) DisplayResources(resources []m.ResourceRecord) error {
	return t.simple.DisplayResources(resources)
}

// DisplayPatchSummary defers to the simple renderer.
func (t *TUI) DisplayPatchSummary(summary *domain.PatchSummary) error {
	return t.simple.DisplayPatchSummary(summary)
}

type progressbarModel struct {
	bar      progress.Model
	fraction float64
	message  string
	quitting bool
}

func newProgressbarModel() progressbarModel {
	return progressbarModel{
		bar: progress.New(progress.WithDefaultGradient()),
	}
}

func (pm progressbarModel) Init() tea.Cmd {
	return nil
}

func (pm progressbarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		pm.fraction = msg.Fraction
		pm.message = msg.Message
		return pm, nil

	case finishedMsg:
		pm.quitting = true
		return pm, tea.Quit

	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 0 {
			pm.bar.Width = width
		}
		return pm, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			pm.quitting = true
			return pm, tea.Quit
		}
	}
	return pm, nil
}

func (pm progressbarModel) View() string {
	if pm.quitting {
		return ""
	}
	return fmt.Sprintf(
		"%s\n%s\n%s\n",
		tuiTitleStyle.Render("unityloc"),
		pm.bar.ViewAs(pm.fraction),
		tuiMessageStyle.Render(pm.message),
	)
}
