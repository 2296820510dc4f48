// Package ui implements chronoscribe's CLI surface: a cobra.Command tree
// wrapping the orchestrator, one file per subcommand around a shared
// App struct.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/chronoscribe/internal/allotter"
	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/calbackend"
	"github.com/javiermolinar/chronoscribe/internal/config"
	"github.com/javiermolinar/chronoscribe/internal/db"
	"github.com/javiermolinar/chronoscribe/internal/eventcreator"
	"github.com/javiermolinar/chronoscribe/internal/llm"
	"github.com/javiermolinar/chronoscribe/internal/orchestrator"
)

// Version is set at build time.
var Version = "dev"

// ExitError carries the exit code the CLI surface §6 pins: 2 for an
// infeasible schedule, 3 for a calendar backend that could not be reached,
// 1 for anything else (LLM failures included).
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func exitCodeFor(err error) int {
	stageErr, ok := err.(*booking.StageError)
	if !ok {
		return 1
	}
	switch stageErr.Kind {
	case booking.KindSchedInfeasibleTotal, booking.KindSchedInfeasibleLocal:
		return 2
	case booking.KindBackendUnavailable:
		return 3
	default:
		return 1
	}
}

// App holds the CLI application state.
type App struct {
	cfg     *config.Config
	store   *db.Store
	backend *calbackend.Client

	root *cobra.Command

	timezone  string
	dbPath    string
	jsonTrace bool
	copyOut   bool
}

// NewApp wires a CLI application around cfg. Collaborators (the database,
// the calendar backend client, the LLM client) are constructed lazily in
// ensureStore/ensureBackend/newOrchestrator once flags are parsed, so
// --db-path and --timezone can override the loaded config first.
func NewApp(cfg *config.Config) *App {
	a := &App{cfg: cfg}

	a.root = &cobra.Command{
		Use:   "chronoscribe [QUERY]",
		Short: "An LLM-backed natural-language calendar booking tool",
		Long: `chronoscribe turns a free-form request like "block two hours
tomorrow afternoon for the Q3 review" into one or more calendar events,
scheduling multi-step work across the days before its deadline.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.root.PersistentFlags().StringVar(&a.timezone, "timezone", "", "IANA timezone override (default: config/America/New_York)")
	a.root.PersistentFlags().StringVar(&a.dbPath, "db-path", "", "Database path override")
	a.root.Flags().Bool("interactive", false, "Launch the interactive prompt")
	a.root.Flags().BoolVar(&a.jsonTrace, "json", false, "Emit the final pipeline trace as JSON")
	a.root.PersistentFlags().BoolVar(&a.copyOut, "copy", false, "Copy the rendered output to the clipboard")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.deleteParentCmd())
	a.root.AddCommand(a.deleteAllCmd())

	return a
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases any resources the app opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *App) effectiveConfig() *config.Config {
	cfg := *a.cfg
	if a.timezone != "" {
		cfg.Schedule.Timezone = a.timezone
	}
	if a.dbPath != "" {
		cfg.Storage.DBPath = a.dbPath
	}
	return &cfg
}

func (a *App) ensureStore() (*db.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	cfg := a.effectiveConfig()
	dbDir := filepath.Dir(cfg.Storage.DBPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	store, err := db.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	a.store = store
	return store, nil
}

func (a *App) ensureBackend() *calbackend.Client {
	if a.backend == nil {
		a.backend = calbackend.NewClient(a.effectiveConfig().Backend.BaseURL)
	}
	return a.backend
}

func (a *App) newOrchestrator() (*orchestrator.Orchestrator, error) {
	cfg := a.effectiveConfig()

	store, err := a.ensureStore()
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewClient(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}

	backend := a.ensureBackend()
	allotOpts, err := cfg.AllotterOptions()
	if err != nil {
		return nil, err
	}

	return &orchestrator.Orchestrator{
		LLM:                   llmClient,
		Backend:               backend,
		Creator:               eventcreator.New(backend, store),
		ScheduleOptions:       allotOpts.ScheduleOptions,
		Constraints:           allotOpts.Constraints,
		HolidaysCalendarTitle: orDefault(allotOpts.HolidaysCalendarTitle, allotter.DefaultHolidaysCalendarTitle),
		Now:                   time.Now,
	}, nil
}

func (a *App) newCreator() (*eventcreator.Creator, error) {
	store, err := a.ensureStore()
	if err != nil {
		return nil, err
	}
	return eventcreator.New(a.ensureBackend(), store), nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("chronoscribe %s\n", Version)
		},
	}
}

func colorError(s string) string {
	return color.New(color.FgRed, color.Bold).Sprint(s)
}

func colorOK(s string) string {
	return color.New(color.FgGreen).Sprint(s)
}
