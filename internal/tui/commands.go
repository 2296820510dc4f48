package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/orchestrator"
)

// runResultMsg carries one pipeline run's outcome back into Update.
type runResultMsg struct {
	trace     *orchestrator.Trace
	scheduled *booking.ScheduledTask
	err       error
}

func runQueryCmd(orch *orchestrator.Orchestrator, text, tz string) tea.Cmd {
	return func() tea.Msg {
		trace, scheduled, err := orch.Run(context.Background(), booking.Query{Text: text, TZ: tz})
		return runResultMsg{trace: trace, scheduled: scheduled, err: err}
	}
}
