// Package session runs one dispatch drain with the standard set of sinks and
// records it in the journal.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/dispatch"
	"github.com/mattjoyce/gpop/internal/events"
	"github.com/mattjoyce/gpop/internal/journal"
	"github.com/mattjoyce/gpop/internal/log"
	"github.com/mattjoyce/gpop/internal/sink"
)

// RunJournal is the subset of journal.Journal used by a session.
type RunJournal interface {
	BeginRun(ctx context.Context, source string, commands int) (string, error)
	Record(ctx context.Context, runID string, seq int, kind journal.Kind, opcode uint32) error
	CompleteRun(ctx context.Context, runID string, triggers int) error
}

// Result summarizes one drain.
type Result struct {
	RunID           string      `json:"run_id"`
	Source          string      `json:"source"`
	Commands        int         `json:"commands"`
	Triggers        int         `json:"triggers"`
	Launches        int         `json:"launches"`
	Calls           []sink.Call `json:"calls"`
	JournalFailures int         `json:"journal_failures,omitempty"`
}

// Runner serializes drains so concurrent callers cannot interleave sink
// calls of different queues.
type Runner struct {
	mu      sync.Mutex
	journal RunJournal
	hub     *events.Hub
	logger  *slog.Logger
}

// New creates a Runner. journal and hub are optional.
func New(j RunJournal, hub *events.Hub, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = log.WithComponent("session")
	}
	return &Runner{journal: j, hub: hub, logger: logger}
}

// Run drains q once. If the journal cannot open a run, nothing is dispatched
// and q is left untouched. A failure to close the run is returned alongside
// the completed Result.
func (r *Runner) Run(ctx context.Context, source string, q *command.Queue) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if q == nil {
		q = command.NewQueue()
	}
	res := &Result{Source: source, Commands: q.Len()}

	if r.journal != nil {
		id, err := r.journal.BeginRun(ctx, source, res.Commands)
		if err != nil {
			return nil, fmt.Errorf("begin run: %w", err)
		}
		res.RunID = id
	} else {
		res.RunID = uuid.NewString()
	}

	// Once the run is open its journal writes must outlive the caller, or a
	// dispatched run would be stored without calls.
	jctx := context.WithoutCancel(ctx)

	runLogger := r.logger.With("run_id", res.RunID)
	rec := sink.NewRecorder()
	logSink := sink.NewLog(runLogger)

	triggers := []dispatch.TriggerSink{logSink, rec}
	execs := []dispatch.ExecutionSink{logSink, rec}
	if r.hub != nil {
		h := sink.NewHub(r.hub, res.RunID)
		triggers = append(triggers, h)
		execs = append(execs, h)
	}
	var js *sink.Journal
	if r.journal != nil {
		js = sink.NewJournal(jctx, r.journal, res.RunID)
		triggers = append(triggers, js)
		execs = append(execs, js)
	}

	runLogger.Info("run started", "source", source, "commands", res.Commands)
	d := dispatch.New(sink.Triggers(triggers...), sink.Executions(execs...), dispatch.WithLogger(runLogger))
	d.Process(q)

	res.Calls = rec.Calls()
	res.Triggers = len(rec.Triggers())
	res.Launches = len(rec.Launches())
	if js != nil {
		res.JournalFailures = js.Failed()
	}

	if r.hub != nil {
		r.hub.Publish(events.TypeRunCompleted, map[string]any{
			"run_id":   res.RunID,
			"commands": res.Commands,
			"triggers": res.Triggers,
		})
	}
	runLogger.Info("run completed", "launches", res.Launches, "triggers", res.Triggers)

	if r.journal != nil {
		if err := r.journal.CompleteRun(jctx, res.RunID, res.Triggers); err != nil {
			return res, fmt.Errorf("finalize run %s: %w", res.RunID, err)
		}
	}
	return res, nil
}
