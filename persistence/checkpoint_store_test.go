package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsampaio-rh/virt-llm-agents/workflow"
)

func newTestStore(t *testing.T) *SQLiteCheckpointStore {
	t.Helper()
	store, err := NewSQLiteCheckpointStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	checkpoint := &workflow.Checkpoint{
		SessionID: "session-1",
		Step:      2,
		State: workflow.State{
			workflow.InputSlot: "migrate db-01",
			"plan_response":    "plan text",
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, checkpoint))

	loaded, found, err := store.Load(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, loaded.Step)
	assert.Equal(t, "migrate db-01", loaded.State[workflow.InputSlot])
	assert.Equal(t, "plan text", loaded.State["plan_response"])
}

func TestSQLiteSaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for step := 1; step <= 3; step++ {
		require.NoError(t, store.Save(ctx, &workflow.Checkpoint{
			SessionID: "session-1",
			Step:      step,
			State:     workflow.State{workflow.InputSlot: "x"},
			CreatedAt: time.Now().UTC(),
		}))
	}
	loaded, found, err := store.Load(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, loaded.Step, "latest save wins")
}

func TestSQLiteLoadMissingSession(t *testing.T) {
	store := newTestStore(t)
	loaded, found, err := store.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, loaded)
}

func TestSQLiteListAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, store.Save(ctx, &workflow.Checkpoint{
			SessionID: id,
			Step:      1,
			State:     workflow.State{},
			CreatedAt: time.Now().UTC(),
		}))
	}
	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, store.Delete(ctx, "a"))
	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, sessions)
}

func TestSQLiteRejectsInvalidCheckpoints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	assert.Error(t, store.Save(ctx, nil))
	assert.Error(t, store.Save(ctx, &workflow.Checkpoint{Step: 1}))
}

func TestMemoryStoreIsolatesState(t *testing.T) {
	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	state := workflow.State{"slot": "original"}
	require.NoError(t, store.Save(ctx, &workflow.Checkpoint{
		SessionID: "s",
		Step:      1,
		State:     state,
		CreatedAt: time.Now().UTC(),
	}))
	state["slot"] = "mutated after save"

	loaded, found, err := store.Load(ctx, "s")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "original", loaded.State["slot"])

	loaded.State["slot"] = "mutated after load"
	again, _, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "original", again.State["slot"])
}
