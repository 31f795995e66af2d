package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/gpop/internal/tui/watch"
)

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	apiURL := fs.String("api-url", "http://127.0.0.1:8088", "gpop serve API URL")
	token := fs.String("token", os.Getenv("GPOP_API_TOKEN"), "API bearer token (needs events:ro)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	m := watch.New(*apiURL, *token)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}
