package sink

import (
	"context"
	"log/slog"

	"github.com/mattjoyce/gpop/internal/journal"
	"github.com/mattjoyce/gpop/internal/log"
)

// CallWriter persists one call of a run.
type CallWriter interface {
	Record(ctx context.Context, runID string, seq int, kind journal.Kind, opcode uint32) error
}

// Journal appends every call of one run to a CallWriter. Write failures are
// logged and counted; they never reach the dispatcher.
type Journal struct {
	ctx    context.Context
	w      CallWriter
	runID  string
	seq    int
	failed int
	logger *slog.Logger
}

func NewJournal(ctx context.Context, w CallWriter, runID string) *Journal {
	return &Journal{
		ctx:    ctx,
		w:      w,
		runID:  runID,
		logger: log.WithRun(runID).With("component", "journal-sink"),
	}
}

func (s *Journal) Assert(opcode uint32) { s.record(journal.KindTrigger, opcode) }

func (s *Journal) Launch(opcode uint32) { s.record(journal.KindLaunch, opcode) }

// Failed reports how many calls could not be written.
func (s *Journal) Failed() int { return s.failed }

func (s *Journal) record(kind journal.Kind, opcode uint32) {
	s.seq++
	if err := s.w.Record(s.ctx, s.runID, s.seq, kind, opcode); err != nil {
		s.failed++
		s.logger.Error("failed to journal call", "seq", s.seq, "kind", kind, "opcode", opcode, "error", err)
	}
}
