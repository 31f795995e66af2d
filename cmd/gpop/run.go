package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattjoyce/gpop/internal/api"
	"github.com/mattjoyce/gpop/internal/auth"
	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/config"
	"github.com/mattjoyce/gpop/internal/events"
	"github.com/mattjoyce/gpop/internal/log"
	"github.com/mattjoyce/gpop/internal/session"
	"github.com/mattjoyce/gpop/internal/workload"
)

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	alternating := fs.Int("alternating", 0, "Seed N commands with alternating high-power flags instead of the configured workload")
	base := fs.String("base", "0x1000", "First opcode for --alternating (decimal or 0x hex)")
	jsonOut := fs.Bool("json", false, "Print the run result as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *jsonOut {
		// stdout carries only the result document.
		log.SetupTo(cfg.Service.LogLevel, os.Stderr)
	} else {
		log.Setup(cfg.Service.LogLevel)
	}
	logger := log.WithComponent("main")

	q, err := seedQueue(cfg, *alternating, *base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid workload: %v\n", err)
		return 1
	}

	ctx := context.Background()
	h, err := openJournal(ctx, cfg, true)
	if err != nil {
		logger.Error("failed to open journal", "path", cfg.Journal.Path, "error", err)
		return 1
	}
	defer h.Close()

	res, err := newRunner(h, nil).Run(ctx, "cli", q)
	if err != nil && res == nil {
		logger.Error("run failed", "error", err)
		return 1
	}
	if err != nil {
		logger.Warn("run completed but journal was not finalized", "run_id", res.RunID, "error", err)
	}

	if *jsonOut {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render result: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("run %s: %d commands, %d launches, %d triggers\n", res.RunID, res.Commands, res.Launches, res.Triggers)
	for _, c := range res.Calls {
		fmt.Printf("  %3d %-7s %s\n", c.Seq, c.Kind, command.OpcodeName(c.Opcode))
	}
	return 0
}

func seedQueue(cfg *config.Config, alternating int, base string) (*command.Queue, error) {
	if alternating < 0 {
		return nil, errors.New("--alternating must not be negative")
	}
	if alternating > 0 {
		op, err := strconv.ParseUint(base, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("--base: %w", err)
		}
		return workload.Alternating(alternating, uint32(op)), nil
	}
	if len(cfg.Workload) > 0 {
		return workload.FromConfig(cfg.Workload), nil
	}
	return workload.Default(), nil
}

// newRunner wires a session runner to the journal when one is open.
func newRunner(h *journalHandle, hub *events.Hub) *session.Runner {
	var rj session.RunJournal
	if h != nil {
		rj = h.journal
	}
	return session.New(rj, hub, log.WithComponent("session"))
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("gpop starting", "version", version, "config", cfg.SourcePath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h, err := openJournal(ctx, cfg, true)
	if err != nil {
		logger.Error("failed to open journal", "path", cfg.Journal.Path, "error", err)
		return 1
	}
	defer h.Close()

	hub := events.NewHub(256)
	var store api.RunStore
	if h != nil {
		store = h.journal
	}
	apiCfg := api.Config{Listen: cfg.API.Listen}
	for _, tok := range cfg.API.Tokens {
		apiCfg.Tokens = append(apiCfg.Tokens, auth.TokenConfig{Token: tok.Token, Scopes: tok.Scopes})
	}
	if len(apiCfg.Tokens) == 0 {
		logger.Warn("API tokens not configured; API is unauthenticated", "listen", cfg.API.Listen)
	}
	srv := api.New(apiCfg, newRunner(h, hub), store, hub, log.WithComponent("api"))

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("API server failed", "error", err)
		return 1
	}
	logger.Info("gpop stopped")
	return 0
}
