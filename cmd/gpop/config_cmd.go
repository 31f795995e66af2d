package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattjoyce/gpop/internal/config"
)

func runConfigNoun(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: gpop config <check|lock> [--config PATH]")
		return 1
	}

	switch args[0] {
	case "check":
		return runConfigCheck(args[1:])
	case "lock":
		return runConfigLock(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", args[0])
		return 1
	}
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("config check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		return 1
	}

	source := cfg.SourcePath
	if source == "" {
		source = "<defaults>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Configuration valid: %s\n", source)
	fmt.Fprintf(&b, "  log_level: %s\n", cfg.Service.LogLevel)
	if cfg.Journal.Enabled {
		fmt.Fprintf(&b, "  journal:   %s\n", cfg.Journal.Path)
	} else {
		fmt.Fprintf(&b, "  journal:   disabled\n")
	}
	fmt.Fprintf(&b, "  api:       %s\n", cfg.API.Listen)
	fmt.Fprintf(&b, "  workload:  %d entries\n", len(cfg.Workload))
	fmt.Print(b.String())
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("config lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *configPath == "" {
		*configPath = config.Discover()
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "No config file to lock; pass --config PATH")
		return 1
	}

	manifest, err := config.Lock(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote %s\n", manifest)
	return 0
}
