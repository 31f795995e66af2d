package watch

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"

	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/events"
)

const maxTrackedRuns = 20

// RunState is what the stream has shown about one run so far.
type RunState struct {
	ID         string
	Commands   int
	Triggers   int
	Launches   int
	LastOpcode uint32
	Completed  bool
	LastSeen   time.Time
}

// payload covers the fields of every dispatch event type.
type payload struct {
	RunID    string `json:"run_id"`
	Opcode   uint32 `json:"opcode"`
	Commands int    `json:"commands"`
	Triggers int    `json:"triggers"`
}

// runBoard tracks recent runs, newest first.
type runBoard struct {
	byID  map[string]*RunState
	order []string
}

func newRunBoard() runBoard {
	return runBoard{byID: make(map[string]*RunState)}
}

// apply folds e into the board. Events without a run id are ignored.
func (b *runBoard) apply(e events.Event) {
	var p payload
	if err := json.Unmarshal(e.Data, &p); err != nil || p.RunID == "" {
		return
	}

	r, ok := b.byID[p.RunID]
	if !ok {
		r = &RunState{ID: p.RunID}
		b.byID[p.RunID] = r
		b.order = append([]string{p.RunID}, b.order...)
		if len(b.order) > maxTrackedRuns {
			for _, id := range b.order[maxTrackedRuns:] {
				delete(b.byID, id)
			}
			b.order = b.order[:maxTrackedRuns]
		}
	}
	r.LastSeen = e.At

	switch e.Type {
	case events.TypeTriggerAsserted:
		r.Triggers++
		r.LastOpcode = p.Opcode
	case events.TypeKernelLaunched:
		r.Launches++
		r.LastOpcode = p.Opcode
	case events.TypeRunCompleted:
		r.Completed = true
		r.Commands = p.Commands
		r.Triggers = p.Triggers
	}
}

func newRunTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ST", Width: 2},
			{Title: "Run", Width: 10},
			{Title: "Cmds", Width: 6},
			{Title: "Trig", Width: 6},
			{Title: "Launch", Width: 6},
			{Title: "Last opcode", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	return t
}

func (b runBoard) rows(theme Theme) []table.Row {
	rows := make([]table.Row, 0, len(b.order))
	for _, id := range b.order {
		r := b.byID[id]
		status := theme.StatusRunning.Render("◉")
		cmds := "-"
		if r.Completed {
			status = theme.StatusOK.Render("●")
			cmds = fmt.Sprint(r.Commands)
		}
		short := r.ID
		if len(short) > 8 {
			short = short[:8]
		}
		last := "-"
		if r.Launches > 0 || r.Triggers > 0 {
			last = command.OpcodeName(r.LastOpcode)
		}
		rows = append(rows, table.Row{
			status,
			short,
			cmds,
			fmt.Sprint(r.Triggers),
			fmt.Sprint(r.Launches),
			last,
		})
	}
	return rows
}
