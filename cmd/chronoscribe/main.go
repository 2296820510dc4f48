package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/javiermolinar/chronoscribe/internal/config"
	"github.com/javiermolinar/chronoscribe/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		os.Exit(1)
	}

	app := ui.NewApp(cfg)
	if err := app.Execute(); err != nil {
		var exitErr *ui.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", exitErr.Err)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
