package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/mattjoyce/gpop/internal/config"
	"github.com/mattjoyce/gpop/internal/journal"
	"github.com/mattjoyce/gpop/internal/lock"
	"github.com/mattjoyce/gpop/internal/log"
	"github.com/mattjoyce/gpop/internal/storage"
)

// loadConfig loads the config at path, discovering one when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.Discover()
		if path != "" {
			fmt.Fprintf(os.Stderr, "Using discovered config: %s\n", path)
		}
	}
	return config.Load(path)
}

// journalHandle owns the journal database and, for writers, its PID lock.
type journalHandle struct {
	db      *sql.DB
	journal *journal.Journal
	lock    *lock.PIDLock
}

// openJournal opens the configured journal. It returns a nil handle when the
// journal is disabled. Writers take the single-instance lock first.
func openJournal(ctx context.Context, cfg *config.Config, writer bool) (*journalHandle, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}

	h := &journalHandle{}
	if writer {
		l, err := lock.Acquire(lock.PathFor(cfg.Journal.Path))
		if err != nil {
			return nil, fmt.Errorf("acquire journal lock (another instance may be running): %w", err)
		}
		h.lock = l
		log.Debug("acquired journal lock", "path", l.Path())
	}

	db, err := storage.OpenSQLite(ctx, cfg.Journal.Path)
	if err != nil {
		_ = h.lock.Release()
		return nil, err
	}
	h.db = db
	h.journal = journal.New(db)
	return h, nil
}

func (h *journalHandle) Close() {
	if h == nil {
		return
	}
	if h.db != nil {
		_ = h.db.Close()
	}
	_ = h.lock.Release()
}
