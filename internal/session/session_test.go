package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/events"
	"github.com/mattjoyce/gpop/internal/journal"
	"github.com/mattjoyce/gpop/internal/log"
	"github.com/mattjoyce/gpop/internal/sink"
	"github.com/mattjoyce/gpop/internal/storage"
	"github.com/mattjoyce/gpop/internal/workload"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR")
	os.Exit(m.Run())
}

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "gpop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return journal.New(db)
}

func TestRunDefaultSeedJournaled(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)
	hub := events.NewHub(16)
	r := New(j, hub, nil)

	q := workload.Default()
	res, err := r.Run(ctx, "cli", q)
	require.NoError(t, err)

	assert.True(t, q.Empty())
	assert.Equal(t, 1, res.Commands)
	assert.Equal(t, 1, res.Triggers)
	assert.Equal(t, 1, res.Launches)
	assert.Equal(t, []sink.Call{
		{Seq: 1, Kind: journal.KindTrigger, Opcode: 0xBEFF},
		{Seq: 2, Kind: journal.KindLaunch, Opcode: 0xBEFF},
	}, res.Calls)

	run, err := j.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Triggers)
	assert.NotNil(t, run.CompletedAt)
	require.Len(t, run.Calls, 2)
	assert.Equal(t, journal.KindTrigger, run.Calls[0].Kind)

	evs := hub.SnapshotSince(0)
	require.Len(t, evs, 3)
	assert.Equal(t, events.TypeTriggerAsserted, evs[0].Type)
	assert.Equal(t, events.TypeKernelLaunched, evs[1].Type)
	assert.Equal(t, events.TypeRunCompleted, evs[2].Type)
}

func TestRunWithoutJournalOrHub(t *testing.T) {
	r := New(nil, nil, nil)

	res, err := r.Run(context.Background(), "test", command.NewQueue(
		command.Command{Opcode: 1},
		command.Command{Opcode: 2, HighPower: true},
	))
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []sink.Call{
		{Seq: 1, Kind: journal.KindLaunch, Opcode: 1},
		{Seq: 2, Kind: journal.KindTrigger, Opcode: 2},
		{Seq: 3, Kind: journal.KindLaunch, Opcode: 2},
	}, res.Calls)
}

func TestRunEmptyQueue(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	res, err := New(j, nil, nil).Run(ctx, "api", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Calls)
	assert.Zero(t, res.Commands)

	run, err := j.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Empty(t, run.Calls)
}

type brokenJournal struct {
	beginErr    error
	completeErr error
	records     int
}

func (b *brokenJournal) BeginRun(context.Context, string, int) (string, error) {
	if b.beginErr != nil {
		return "", b.beginErr
	}
	return "run-x", nil
}

func (b *brokenJournal) Record(context.Context, string, int, journal.Kind, uint32) error {
	b.records++
	return errors.New("write failed")
}

func (b *brokenJournal) CompleteRun(context.Context, string, int) error { return b.completeErr }

func TestRunBeginFailureLeavesQueue(t *testing.T) {
	r := New(&brokenJournal{beginErr: errors.New("db locked")}, nil, nil)
	q := workload.Default()

	_, err := r.Run(context.Background(), "cli", q)
	assert.ErrorContains(t, err, "db locked")
	assert.Equal(t, 1, q.Len())
}

func TestRunRecordFailuresDoNotStopDispatch(t *testing.T) {
	b := &brokenJournal{}
	res, err := New(b, nil, nil).Run(context.Background(), "cli", workload.Alternating(4, 1))
	require.NoError(t, err)

	assert.Equal(t, 4, res.Launches)
	assert.Equal(t, 2, res.Triggers)
	assert.Equal(t, 6, res.JournalFailures)
	assert.Equal(t, 6, b.records)
}

func TestRunCompleteFailureReturnsResult(t *testing.T) {
	b := &brokenJournal{completeErr: errors.New("gone")}
	res, err := New(b, nil, nil).Run(context.Background(), "cli", workload.Default())

	require.Error(t, err)
	assert.Equal(t, "finalize run run-x: gone", err.Error())
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Launches)
}

// cancelAfterBegin cancels the caller's context as soon as the run is open,
// like a client that disconnects mid-drain.
type cancelAfterBegin struct {
	*journal.Journal
	cancel context.CancelFunc
}

func (c *cancelAfterBegin) BeginRun(ctx context.Context, source string, commands int) (string, error) {
	id, err := c.Journal.BeginRun(ctx, source, commands)
	c.cancel()
	return id, err
}

func TestRunJournalSurvivesCallerCancel(t *testing.T) {
	j := openJournal(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(&cancelAfterBegin{Journal: j, cancel: cancel}, nil, nil)
	res, err := r.Run(ctx, "api", command.NewQueue(
		command.Command{Opcode: 1},
		command.Command{Opcode: 2, HighPower: true},
	))
	require.NoError(t, err)
	require.Error(t, ctx.Err())
	assert.Zero(t, res.JournalFailures)

	run, err := j.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.NotNil(t, run.CompletedAt)
	assert.Equal(t, 1, run.Triggers)
	require.Len(t, run.Calls, 3)
	assert.Equal(t, journal.KindLaunch, run.Calls[0].Kind)
	assert.Equal(t, journal.KindTrigger, run.Calls[1].Kind)
	assert.Equal(t, journal.KindLaunch, run.Calls[2].Kind)
}

func TestRunSerializesConcurrentDrains(t *testing.T) {
	hub := events.NewHub(1024)
	r := New(nil, hub, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Run(context.Background(), "test", workload.Alternating(10, uint32(i*100)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Calls of one run are contiguous and each run ends with run.completed.
	var current string
	for _, ev := range hub.SnapshotSince(0) {
		if ev.Type == events.TypeRunCompleted {
			current = ""
			continue
		}
		var payload sink.CallEvent
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		if current == "" {
			current = payload.RunID
		}
		assert.Equal(t, current, payload.RunID)
	}
}
