package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Journal persists dispatch runs and their ordered sink calls.
type Journal struct {
	db *sql.DB
}

func New(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// BeginRun opens a run for a queue of n commands and returns its id.
func (j *Journal) BeginRun(ctx context.Context, source string, commands int) (string, error) {
	if source == "" {
		return "", fmt.Errorf("source is empty")
	}
	if commands < 0 {
		return "", fmt.Errorf("negative command count %d", commands)
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := j.db.ExecContext(ctx, `
INSERT INTO dispatch_run(id, source, commands, started_at)
VALUES(?, ?, ?, ?);
`, id, source, commands, now)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// Record appends one sink call to a run.
func (j *Journal) Record(ctx context.Context, runID string, seq int, kind Kind, opcode uint32) error {
	if runID == "" {
		return fmt.Errorf("runID is empty")
	}
	if kind != KindTrigger && kind != KindLaunch {
		return fmt.Errorf("invalid call kind: %q", kind)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := j.db.ExecContext(ctx, `
INSERT INTO dispatch_call(run_id, seq, kind, opcode, recorded_at)
VALUES(?, ?, ?, ?, ?);
`, runID, seq, kind, int64(opcode), now)
	if err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}

// CompleteRun marks a run finished with the number of triggers asserted.
func (j *Journal) CompleteRun(ctx context.Context, runID string, triggers int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := j.db.ExecContext(ctx, `
UPDATE dispatch_run
SET completed_at = ?, triggers = ?
WHERE id = ?;
`, now, triggers, runID)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun loads a run with its calls in sequence order.
func (j *Journal) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := j.db.QueryRowContext(ctx, `
SELECT id, source, commands, triggers, started_at, completed_at
FROM dispatch_run
WHERE id = ?;
`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, `
SELECT seq, kind, opcode, recorded_at
FROM dispatch_call
WHERE run_id = ?
ORDER BY seq ASC;
`, runID)
	if err != nil {
		return nil, fmt.Errorf("get run calls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c        Call
			kind     string
			opcode   int64
			recorded string
		)
		if err := rows.Scan(&c.Seq, &kind, &opcode, &recorded); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		c.Kind = Kind(kind)
		c.Opcode = uint32(opcode)
		if t, err := time.Parse(time.RFC3339Nano, recorded); err == nil {
			c.RecordedAt = t
		}
		run.Calls = append(run.Calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first, without calls.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, source, commands, triggers, started_at, completed_at
FROM dispatch_run
ORDER BY rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r           Run
		startedAt   string
		completedAt sql.NullString
	)
	if err := s.Scan(&r.ID, &r.Source, &r.Commands, &r.Triggers, &startedAt, &completedAt); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		r.StartedAt = t
	}
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, completedAt.String); err == nil {
			r.CompletedAt = &t
		}
	}
	return &r, nil
}
