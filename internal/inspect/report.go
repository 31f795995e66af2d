// Package inspect renders journaled runs for the terminal.
package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/journal"
)

// Theme holds the report styles.
type Theme struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Trigger lipgloss.Style
	Launch  lipgloss.Style
	Dim     lipgloss.Style
	Box     lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF")),
		Label:   lipgloss.NewStyle().Width(12),
		Trigger: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		Launch:  lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1),
	}
}

// BuildReport renders a run and its calls.
func BuildReport(run *journal.Run, th Theme) string {
	var header strings.Builder
	fmt.Fprintln(&header, th.Title.Render("Dispatch Run"))
	fmt.Fprintf(&header, "%s: %s\n", th.Label.Render("Run ID"), run.ID)
	fmt.Fprintf(&header, "%s: %s\n", th.Label.Render("Source"), run.Source)
	fmt.Fprintf(&header, "%s: %d\n", th.Label.Render("Commands"), run.Commands)
	fmt.Fprintf(&header, "%s: %d\n", th.Label.Render("Triggers"), run.Triggers)
	fmt.Fprintf(&header, "%s: %s\n", th.Label.Render("Started"), run.StartedAt.Format(time.RFC3339))
	if run.CompletedAt != nil {
		fmt.Fprintf(&header, "%s: %s", th.Label.Render("Completed"), run.CompletedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintf(&header, "%s: %s", th.Label.Render("Completed"), th.Dim.Render("<incomplete>"))
	}

	var out strings.Builder
	out.WriteString(th.Box.Render(header.String()))
	out.WriteString("\n")

	if len(run.Calls) == 0 {
		out.WriteString(th.Dim.Render("no sink calls"))
		out.WriteString("\n")
		return out.String()
	}

	for _, c := range run.Calls {
		style := th.Launch
		if c.Kind == journal.KindTrigger {
			style = th.Trigger
		}
		fmt.Fprintf(&out, "%4d  %s  %-10d %s\n",
			c.Seq,
			style.Render(fmt.Sprintf("%-7s", c.Kind)),
			c.Opcode,
			th.Dim.Render(command.OpcodeName(c.Opcode)),
		)
	}
	return out.String()
}

// BuildRunList renders one line per run.
func BuildRunList(runs []*journal.Run, th Theme) string {
	if len(runs) == 0 {
		return th.Dim.Render("no runs recorded") + "\n"
	}

	var out strings.Builder
	fmt.Fprintln(&out, th.Title.Render(fmt.Sprintf("%-36s  %-6s  %8s  %8s  %s", "RUN ID", "SOURCE", "COMMANDS", "TRIGGERS", "STARTED")))
	for _, r := range runs {
		fmt.Fprintf(&out, "%-36s  %-6s  %8d  %8d  %s\n",
			r.ID, r.Source, r.Commands, r.Triggers, r.StartedAt.Format(time.RFC3339))
	}
	return out.String()
}
