package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/chathouse/core"
	"github.com/poiesic/chathouse/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRuns(t *testing.T) storage.RunRepository {
	t.Helper()
	runs, backend, err := NewMemoryRunRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		runs.Close()
		backend.Close()
	})
	return runs
}

func testRun(id, fingerprint string, started time.Time) *core.Run {
	return &core.Run{
		Id:          id,
		InputPath:   "/data/conversations.json",
		Fingerprint: fingerprint,
		Table:       "chatgpt_messages",
		Status:      core.RunStatusRunning,
		StartedAt:   started,
	}
}

func TestNewRunRepository_NilBackend(t *testing.T) {
	repo, err := NewRunRepository(nil)
	require.Error(t, err)
	assert.Nil(t, repo)
}

func TestAddAndGetRun(t *testing.T) {
	runs := setupRuns(t)
	ctx := context.Background()
	started := time.UnixMicro(1_700_000_000_000_000).UTC()

	run := testRun("run-1", "abc", started)
	run.Conversations = 2
	run.Rows = 3
	require.NoError(t, runs.AddRun(ctx, run))

	got, err := runs.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestAddRun_Duplicate(t *testing.T) {
	runs := setupRuns(t)
	ctx := context.Background()

	run := testRun("run-1", "abc", time.Now().UTC())
	require.NoError(t, runs.AddRun(ctx, run))

	err := runs.AddRun(ctx, run)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestAddRun_Invalid(t *testing.T) {
	runs := setupRuns(t)

	err := runs.AddRun(context.Background(), testRun("", "abc", time.Now()))
	assert.ErrorIs(t, err, core.ErrInvalidRun)
}

func TestGetRun_NotFound(t *testing.T) {
	runs := setupRuns(t)

	got, err := runs.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, got)
}

func TestUpdateRun(t *testing.T) {
	runs := setupRuns(t)
	ctx := context.Background()
	started := time.UnixMicro(1_700_000_000_000_000).UTC()

	run := testRun("run-1", "abc", started)
	require.NoError(t, runs.AddRun(ctx, run))

	run.Status = core.RunStatusFailed
	run.Batches = 1
	run.Inserted = 2
	run.Rows = 3
	run.Error = "insert failed: HTTP 500"
	run.FinishedAt = started.Add(time.Second)
	require.NoError(t, runs.UpdateRun(ctx, run))

	got, err := runs.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusFailed, got.Status)
	assert.Equal(t, 2, got.Inserted)
	assert.Equal(t, "insert failed: HTTP 500", got.Error)
	assert.Equal(t, run.FinishedAt, got.FinishedAt)

	// indexes still resolve to a single entry
	listed, err := runs.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestUpdateRun_NotFound(t *testing.T) {
	runs := setupRuns(t)

	err := runs.UpdateRun(context.Background(), testRun("missing", "abc", time.Now()))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateRun_MovesIndexes(t *testing.T) {
	runs := setupRuns(t)
	ctx := context.Background()
	base := time.UnixMicro(1_700_000_000_000_000).UTC()

	run := testRun("run-1", "abc", base)
	require.NoError(t, runs.AddRun(ctx, run))

	run.Fingerprint = "def"
	run.StartedAt = base.Add(time.Minute)
	require.NoError(t, runs.UpdateRun(ctx, run))

	old, err := runs.FindRunsByFingerprint(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, old)

	moved, err := runs.FindRunsByFingerprint(ctx, "def")
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "run-1", moved[0].Id)

	listed, err := runs.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestListRuns_NewestFirst(t *testing.T) {
	runs := setupRuns(t)
	ctx := context.Background()
	base := time.UnixMicro(1_700_000_000_000_000).UTC()

	require.NoError(t, runs.AddRun(ctx, testRun("b", "x", base.Add(time.Hour))))
	require.NoError(t, runs.AddRun(ctx, testRun("a", "x", base)))
	require.NoError(t, runs.AddRun(ctx, testRun("c", "y", base.Add(2*time.Hour))))

	t.Run("all", func(t *testing.T) {
		listed, err := runs.ListRuns(ctx, 0)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, "c", listed[0].Id)
		assert.Equal(t, "b", listed[1].Id)
		assert.Equal(t, "a", listed[2].Id)
	})

	t.Run("limited", func(t *testing.T) {
		listed, err := runs.ListRuns(ctx, 2)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "c", listed[0].Id)
		assert.Equal(t, "b", listed[1].Id)
	})
}

func TestListRuns_Empty(t *testing.T) {
	runs := setupRuns(t)

	listed, err := runs.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestFindRunsByFingerprint(t *testing.T) {
	runs := setupRuns(t)
	ctx := context.Background()
	base := time.UnixMicro(1_700_000_000_000_000).UTC()

	require.NoError(t, runs.AddRun(ctx, testRun("first", "abc", base)))
	require.NoError(t, runs.AddRun(ctx, testRun("other", "abcd", base.Add(time.Minute))))
	require.NoError(t, runs.AddRun(ctx, testRun("second", "abc", base.Add(time.Hour))))

	found, err := runs.FindRunsByFingerprint(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, found, 2, "prefix of another fingerprint must not match")
	assert.Equal(t, "second", found[0].Id)
	assert.Equal(t, "first", found[1].Id)

	none, err := runs.FindRunsByFingerprint(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListRuns_CancelledContext(t *testing.T) {
	runs := setupRuns(t)
	require.NoError(t, runs.AddRun(context.Background(), testRun("a", "x", time.Now().UTC())))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runs.ListRuns(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
