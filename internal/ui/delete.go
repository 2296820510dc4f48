package ui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task (cascades children if it is a parent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			creator, err := a.newCreator()
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			defer func() { _ = a.Close() }()

			if err := creator.DeleteByTaskID(context.Background(), args[0]); err != nil {
				return &ExitError{Code: exitCodeFor(err), Err: err}
			}
			fmt.Printf("%s deleted %s\n", colorOK("✓"), args[0])
			return nil
		},
	}
}

func (a *App) deleteParentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-parent ID",
		Short: "Delete only the children of a parent task",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			creator, err := a.newCreator()
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			defer func() { _ = a.Close() }()

			if err := creator.DeleteByParentID(context.Background(), args[0]); err != nil {
				return &ExitError{Code: exitCodeFor(err), Err: err}
			}
			fmt.Printf("%s deleted children of %s\n", colorOK("✓"), args[0])
			return nil
		},
	}
}

func (a *App) deleteAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every persisted task and its backend events",
		Long: `Delete every task chronoscribe has ever scheduled, along with
their backend calendar events. This cannot be undone and requires typing
"yes" to confirm.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !confirmYes("This will delete every task. Type \"yes\" to continue") {
				fmt.Println("Aborted.")
				return nil
			}

			creator, err := a.newCreator()
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			defer func() { _ = a.Close() }()

			if err := creator.DeleteAll(context.Background()); err != nil {
				return &ExitError{Code: exitCodeFor(err), Err: err}
			}
			fmt.Printf("%s deleted all tasks\n", colorOK("✓"))
			return nil
		},
	}
}

func confirmYes(prompt string) bool {
	fmt.Printf("%s: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input) == "yes"
}
