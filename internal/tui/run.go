package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/javiermolinar/chronoscribe/internal/orchestrator"
)

// Run launches the interactive prompt against orch. It refuses to start
// outside a real terminal, since Bubble Tea needs a TTY to render.
func Run(orch *orchestrator.Orchestrator, tz string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("--interactive requires a terminal; pass a query positionally instead")
	}

	p := tea.NewProgram(New(orch, tz))
	_, err := p.Run()
	return err
}
