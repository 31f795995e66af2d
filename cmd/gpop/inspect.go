package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mattjoyce/gpop/internal/inspect"
	"github.com/mattjoyce/gpop/internal/journal"
	"github.com/mattjoyce/gpop/internal/log"
)

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	jsonOut := fs.Bool("json", false, "Print the run as JSON")

	// Allow the run id before or after flags.
	var runID string
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		runID, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if runID == "" && fs.NArg() == 1 {
		runID = fs.Arg(0)
	}
	if runID == "" {
		fmt.Fprintln(os.Stderr, "Usage: gpop inspect <run-id> [--config PATH] [--json]")
		return 1
	}

	h, code := openReadJournal(*configPath)
	if h == nil {
		return code
	}
	defer h.Close()

	run, err := h.journal.GetRun(context.Background(), runID)
	if errors.Is(err, journal.ErrRunNotFound) {
		fmt.Fprintf(os.Stderr, "Run %s not found\n", runID)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load run: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render run: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	fmt.Print(inspect.BuildReport(run, inspect.DefaultTheme()))
	return 0
}

func runRuns(args []string) int {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	limit := fs.Int("limit", 20, "Maximum number of runs to list")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	h, code := openReadJournal(*configPath)
	if h == nil {
		return code
	}
	defer h.Close()

	runs, err := h.journal.ListRuns(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list runs: %v\n", err)
		return 1
	}
	fmt.Print(inspect.BuildRunList(runs, inspect.DefaultTheme()))
	return 0
}

// openReadJournal opens the journal without taking the writer lock. On
// failure it returns a nil handle and the exit code.
func openReadJournal(configPath string) (*journalHandle, int) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, 1
	}
	log.Setup(cfg.Service.LogLevel)

	if !cfg.Journal.Enabled {
		fmt.Fprintln(os.Stderr, "Journal is disabled in config")
		return nil, 1
	}
	h, err := openJournal(context.Background(), cfg, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open journal: %v\n", err)
		return nil, 1
	}
	return h, 0
}
