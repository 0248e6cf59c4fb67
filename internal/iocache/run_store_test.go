package iocache

import (
	"errors"
	"testing"
	"time"

	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), "a.jar", "m.json", "blake3:00")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordRewrite(runID, schema.RewriteRecord{ClassName: "Foo"}))
	assert.NoError(t, store.EndRun(runID, time.Now(), schema.RunSuccess, 1, nil))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestRunStore_UnsupportedBackend(t *testing.T) {
	_, err := NewRunStore(schema.FileBackend, "")
	assert.Error(t, err)
}

func TestRunStore_SQLite(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Now().Add(-2 * time.Second)
	runID, err := store.BeginRun(start, "/build/libs/mod.jar", "/build/febb/manifests/v.json", "blake3:ab")
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	rewrites := []schema.RewriteRecord{
		{EntryName: "Foo.class", ClassName: "Foo", APIClassName: "api/IFoo", NewSignature: "Ljava/lang/Object;Lapi/IFoo;", SizeBefore: 100, SizeAfter: 140},
		{EntryName: "a/Bar.class", ClassName: "a/Bar", APIClassName: "api/IBar", NewSignature: "Ljava/lang/Object;Lapi/IBar;", SizeBefore: 90, SizeAfter: 131},
	}
	for _, r := range rewrites {
		require.NoError(t, store.RecordRewrite(runID, r))
	}

	end := start.Add(1500 * time.Millisecond)
	require.NoError(t, store.EndRun(runID, end, schema.RunSuccess, len(rewrites), nil))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "/build/libs/mod.jar", run.ArchivePath)
	assert.Equal(t, "blake3:ab", run.ManifestDigest)
	assert.Equal(t, string(schema.RunSuccess), run.Status)
	assert.Equal(t, int32(2), run.TotalRewritten)
	assert.True(t, run.StartTime.Equal(start), "start time should round-trip")
	require.NotNil(t, run.EndTime)
	assert.True(t, run.EndTime.Equal(end))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Nil(t, run.ErrorMessage)

	history, err := store.GetAllRewrites()
	require.NoError(t, err)
	require.Len(t, history, 2)
	// ordered by entry name
	assert.Equal(t, "Foo.class", history[0].EntryName)
	assert.Equal(t, "a/Bar.class", history[1].EntryName)
	assert.Equal(t, int32(131), history[1].SizeAfter)
}

func TestRunStore_FailedRun(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), "a.jar", "m.json", "blake3:00")
	require.NoError(t, err)
	require.NoError(t, store.EndRun(runID, time.Now(), schema.RunFailed, 0, errors.New("boom")))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].ErrorMessage)
	assert.Equal(t, "boom", *runs[0].ErrorMessage)
	assert.Equal(t, "failed", runs[0].Status)
}

func TestRunStore_DuplicateRewrite(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), "a.jar", "m.json", "blake3:00")
	require.NoError(t, err)
	r := schema.RewriteRecord{EntryName: "Foo.class", ClassName: "Foo"}
	require.NoError(t, store.RecordRewrite(runID, r))
	assert.Error(t, store.RecordRewrite(runID, r), "same entry twice in one run violates the primary key")
}

func TestRunStore_EndRunUnknownID(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndRun(99, time.Now(), schema.RunSuccess, 0, nil))
}

func TestRunStore_GetStatus(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[processRunsTable])

	base := time.Now().Add(-time.Hour)
	for i, st := range []schema.RunStatus{schema.RunSuccess, schema.RunSkipped, schema.RunSuccess} {
		start := base.Add(time.Duration(i) * time.Minute)
		runID, err := store.BeginRun(start, "a.jar", "m.json", "blake3:00")
		require.NoError(t, err)
		total := 0
		if st == schema.RunSuccess {
			require.NoError(t, store.RecordRewrite(runID, schema.RewriteRecord{EntryName: "Foo.class", ClassName: "Foo"}))
			total = 1
		}
		require.NoError(t, store.EndRun(runID, start.Add(time.Second), st, total, nil))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, int64(3), status.LastRunID)
	assert.Equal(t, 2, status.TotalRewrites)
	assert.True(t, status.OldestRunTime.Before(status.LastRunTime))
	assert.Equal(t, map[string]int{"success": 2, "skipped": 1}, status.RunsPerStatus)
	assert.Equal(t, int64(3), status.TableSizes[processRunsTable])
	assert.Equal(t, int64(2), status.TableSizes[classRewritesTable])
}
