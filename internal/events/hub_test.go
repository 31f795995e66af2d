package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishSubscribe(t *testing.T) {
	t.Parallel()

	h := NewHub(8)
	ch, cancel := h.Subscribe(4)
	defer cancel()

	h.Publish(TypeTriggerAsserted, map[string]any{"opcode": 48895})

	ev := <-ch
	assert.Equal(t, int64(1), ev.ID)
	assert.Equal(t, TypeTriggerAsserted, ev.Type)

	var data map[string]any
	require.NoError(t, json.Unmarshal(ev.Data, &data))
	assert.EqualValues(t, 48895, data["opcode"])
}

func TestHubSnapshotSinceWrapsRing(t *testing.T) {
	t.Parallel()

	h := NewHub(3)
	for i := 0; i < 5; i++ {
		h.Publish(TypeKernelLaunched, nil)
	}

	all := h.SnapshotSince(0)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 4, 5}, []int64{all[0].ID, all[1].ID, all[2].ID})

	tail := h.SnapshotSince(4)
	require.Len(t, tail, 1)
	assert.Equal(t, int64(5), tail[0].ID)
	assert.JSONEq(t, `{}`, string(tail[0].Data))
}

func TestHubCancelClosesChannel(t *testing.T) {
	t.Parallel()

	h := NewHub(2)
	ch, cancel := h.Subscribe(1)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic.
	h.Publish(TypeRunCompleted, nil)
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	h := NewHub(16)
	_, cancel := h.Subscribe(1)
	defer cancel()

	for i := 0; i < 10; i++ {
		h.Publish(TypeKernelLaunched, nil)
	}
	assert.Len(t, h.SnapshotSince(0), 10)
}
