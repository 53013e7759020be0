package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/foundrydata/foundry/internal/history"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStartRunCreatesRunningRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "demo", "staging_customers+")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	require.Equal(t, history.StatusRunning, run.Status)

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, "demo", got.Project)
	require.Equal(t, "staging_customers+", got.Selector)
	require.Nil(t, got.CompletedAt)
}

func TestCompleteRunRecordsOutcome(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "demo", "")
	require.NoError(t, err)

	require.NoError(t, store.CompleteRun(ctx, run.ID, history.StatusFailed, "level 0 failed"))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, history.StatusFailed, got.Status)
	require.Equal(t, "level 0 failed", got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestRecordNodeRunAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "demo", "")
	require.NoError(t, err)
	require.NoError(t, store.RecordNodeRun(ctx, run.ID, "staging_customers", "model", history.StatusSuccess, 12*time.Millisecond, ""))
	require.NoError(t, store.CompleteRun(ctx, run.ID, history.StatusSuccess, ""))

	runs, err := store.ListRuns(ctx, "demo", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, run.ID, runs[0].ID)
}
