package ui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoscribe/internal/booking"
)

func (a *App) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every persisted task",
		Long: `List every task chronoscribe has scheduled, parents and
children alike.

Example:
  chronoscribe list
  chronoscribe list --copy`,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := a.ensureStore()
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			defer func() { _ = a.Close() }()

			tasks, err := store.ListTasks(context.Background())
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			rendered := renderTaskTable(tasks)
			fmt.Print(rendered)

			if a.copyOut {
				if err := clipboard.WriteAll(rendered); err != nil {
					return &ExitError{Code: 1, Err: fmt.Errorf("copying to clipboard: %w", err)}
				}
			}
			return nil
		},
	}
}

func renderTaskTable(tasks []booking.PersistedTask) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}
	var out string
	for _, t := range tasks {
		if t.ParentID == nil {
			out += fmt.Sprintf("%s  %s\n", t.ID, t.Title)
		} else {
			out += fmt.Sprintf("%s  %s  (parent: %s)\n", t.ID, t.Title, *t.ParentID)
		}
	}
	return out
}
