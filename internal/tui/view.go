package tui

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/orchestrator"
)

// View renders the current model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("chronoscribe"))
	b.WriteString("\n\n")

	switch m.phase {
	case phasePrompt:
		b.WriteString(styleBox.Render(m.prompt.View()))
		b.WriteString("\n\n")
		b.WriteString(styleMuted.Render("enter to run · esc/ctrl+c to quit"))

	case phaseRunning:
		fmt.Fprintf(&b, "running %q…\n", m.prompt.Value())

	case phaseDone:
		b.WriteString(m.renderResult())
		b.WriteString("\n\n")
		b.WriteString(styleMuted.Render("esc to ask another · ctrl+c to quit"))
	}

	b.WriteByte('\n')
	return b.String()
}

func (m Model) renderResult() string {
	var b strings.Builder
	if m.trace != nil {
		b.WriteString(renderTrace(m.trace))
	}

	if m.err != nil {
		b.WriteString(styleError.Render(m.err.Error()))
		return b.String()
	}

	if m.scheduled == nil {
		return b.String()
	}

	if m.scheduled.Type == booking.TaskSimple {
		fmt.Fprintf(&b, "%s %s  %s – %s\n", styleOK.Render("✓"), m.scheduled.Title,
			m.scheduled.Slot.Start.Format("Jan 02 15:04"), m.scheduled.Slot.End.Format("15:04"))
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s (%d subtasks)\n", styleOK.Render("✓"), m.scheduled.Title, len(m.scheduled.Subtasks))
	for _, st := range m.scheduled.Subtasks {
		fmt.Fprintf(&b, "    - %s  %s – %s\n", st.Title,
			st.Slot.Start.Format("Jan 02 15:04"), st.Slot.End.Format("15:04"))
	}
	return b.String()
}

// renderTrace renders one colored line per pipeline stage: green for ok,
// red for error, dim for skipped/pending.
func renderTrace(trace *orchestrator.Trace) string {
	var b strings.Builder
	for _, r := range trace.Records {
		line := fmt.Sprintf("%-10s %-8s", r.Stage, r.Status)
		if r.Kind != "" {
			line += fmt.Sprintf(" %s", r.Kind)
		}
		switch r.Status {
		case orchestrator.StatusOK:
			b.WriteString(styleOK.Render(line))
		case orchestrator.StatusError:
			b.WriteString(styleError.Render(line))
		default:
			b.WriteString(styleMuted.Render(line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
