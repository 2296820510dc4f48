package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/tui"
)

// runQuery is the root command's default action: run the pipeline for the
// positional QUERY, or launch the interactive prompt if --interactive was
// passed or no query text was given at all.
func (a *App) runQuery(cmd *cobra.Command, args []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	text := strings.TrimSpace(strings.Join(args, " "))

	if interactive || text == "" {
		orch, err := a.newOrchestrator()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		defer func() { _ = a.Close() }()
		return tui.Run(orch, a.effectiveConfig().Schedule.Timezone)
	}

	orch, err := a.newOrchestrator()
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	defer func() { _ = a.Close() }()

	query := booking.Query{Text: text, TZ: a.effectiveConfig().Schedule.Timezone}
	trace, scheduled, runErr := orch.Run(context.Background(), query)

	if a.jsonTrace {
		raw, jerr := trace.JSON()
		if jerr != nil {
			return &ExitError{Code: 1, Err: jerr}
		}
		fmt.Println(string(raw))
	} else {
		fmt.Print(trace.Pretty())
		if scheduled != nil {
			printScheduled(*scheduled)
		}
	}

	if runErr == nil {
		return nil
	}

	stageErr, ok := runErr.(*booking.StageError)
	if ok && stageErr.Kind == booking.KindECPartial {
		// §6: "0 success (including partial with reported errors)" — the
		// trace above already surfaced which children failed.
		fmt.Println(colorError(runErr.Error()))
		return nil
	}

	fmt.Println(colorError(runErr.Error()))
	return &ExitError{Code: exitCodeFor(runErr), Err: runErr}
}

func printScheduled(task booking.ScheduledTask) {
	if task.Type == booking.TaskSimple {
		fmt.Printf("%s %s  %s – %s\n", colorOK("✓"), task.Title,
			task.Slot.Start.Format("Jan 02 15:04"), task.Slot.End.Format("15:04"))
		return
	}
	fmt.Printf("%s %s (%d subtasks)\n", colorOK("✓"), task.Title, len(task.Subtasks))
	for _, st := range task.Subtasks {
		fmt.Printf("    - %s  %s – %s\n", st.Title,
			st.Slot.Start.Format("Jan 02 15:04"), st.Slot.End.Format("15:04"))
	}
}
