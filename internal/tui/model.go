// Package tui provides chronoscribe's interactive mode: a single
// prompt-and-trace Bubble Tea program, scoped to the one view
// --interactive needs.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/orchestrator"
)

type phase int

const (
	phasePrompt phase = iota
	phaseRunning
	phaseDone
)

// Model is the interactive prompt's state.
type Model struct {
	orch *orchestrator.Orchestrator
	tz   string

	prompt textinput.Model
	phase  phase

	trace     *orchestrator.Trace
	scheduled *booking.ScheduledTask
	err       error

	quitting bool
}

// New builds the initial Model for an interactive session against orch.
func New(orch *orchestrator.Orchestrator, tz string) Model {
	ti := textinput.New()
	ti.Placeholder = `"block two hours tomorrow afternoon for the Q3 review"`
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 64

	return Model{orch: orch, tz: tz, prompt: ti, phase: phasePrompt}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}
