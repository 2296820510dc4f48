package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and advances the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case runResultMsg:
		m.phase = phaseDone
		m.trace = msg.trace
		m.scheduled = msg.scheduled
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.phase == phaseDone {
			m.phase = phasePrompt
			m.prompt.SetValue("")
			m.prompt.Focus()
			return m, textinput.Blink
		}
		m.quitting = true
		return m, tea.Quit

	case "enter":
		if m.phase != phasePrompt {
			return m, nil
		}
		text := m.prompt.Value()
		if text == "" {
			return m, nil
		}
		m.phase = phaseRunning
		m.prompt.Blur()
		return m, runQueryCmd(m.orch, text, m.tz)
	}

	if m.phase == phasePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}
