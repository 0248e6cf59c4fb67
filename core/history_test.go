package core

import (
	"context"
	"errors"
	"testing"

	"github.com/Astrarre/FebbGradle/internal/iocache"
	"github.com/Astrarre/FebbGradle/internal/resolve"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProcessRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	archivePath := fooBarJar(t, dir)
	manifestPath := writeManifest(t, dir, fooManifest)
	cfg := customConfig(archivePath, manifestPath)

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, archivePath, manifestPath, iocache.Digest([]byte(fooManifest))).Return(int64(7), nil)
	runs.On("RecordRewrite", int64(7), mock.MatchedBy(func(r schema.RewriteRecord) bool {
		return r.ClassName == "com/example/Foo" && r.APIClassName == "com/example/IFoo"
	})).Return(nil).Once()
	runs.On("EndRun", int64(7), mock.Anything, schema.RunSuccess, 1, nil).Return(nil).Once()

	deps := fileDeps()
	deps.Runs = runs
	_, _, err := Process(context.Background(), cfg, deps, resolve.ManifestCache{})
	require.NoError(t, err)
	runs.AssertExpectations(t)

	// Second run is skipped and recorded as such, with no rewrites.
	runs.On("EndRun", int64(7), mock.Anything, schema.RunSkipped, 0, nil).Return(nil).Once()
	result, _, err := Process(context.Background(), cfg, deps, resolve.ManifestCache{})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	runs.AssertExpectations(t)
	runs.AssertNumberOfCalls(t, "RecordRewrite", 1)
}

func TestProcessRecordsFailedRun(t *testing.T) {
	dir := t.TempDir()
	archivePath := fooBarJar(t, dir)
	writeJar(t, archivePath, jarEntry{name: "com/example/Foo.class", data: []byte("not a class")})
	cfg := customConfig(archivePath, writeManifest(t, dir, fooManifest))

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(3), nil)
	runs.On("EndRun", int64(3), mock.Anything, schema.RunFailed, 0, mock.MatchedBy(func(err error) bool {
		return errors.Is(err, schema.ErrClassFileCorruption)
	})).Return(nil)

	deps := fileDeps()
	deps.Runs = runs
	_, _, err := Process(context.Background(), cfg, deps, resolve.ManifestCache{})
	assert.ErrorIs(t, err, schema.ErrClassFileCorruption)
	runs.AssertExpectations(t)
	runs.AssertNotCalled(t, "RecordRewrite", mock.Anything, mock.Anything)
}

func TestProcessHistoryFailuresOnlyWarn(t *testing.T) {
	t.Run("begin fails", func(t *testing.T) {
		dir := t.TempDir()
		cfg := customConfig(fooBarJar(t, dir), writeManifest(t, dir, fooManifest))

		runs := &iocache.MockRunStore{}
		runs.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

		deps := fileDeps()
		deps.Runs = runs
		result, _, err := Process(context.Background(), cfg, deps, resolve.ManifestCache{})
		require.NoError(t, err)
		assert.Len(t, result.Rewritten, 1)
		runs.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("record and end fail", func(t *testing.T) {
		dir := t.TempDir()
		cfg := customConfig(fooBarJar(t, dir), writeManifest(t, dir, fooManifest))

		runs := &iocache.MockRunStore{}
		runs.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
		runs.On("RecordRewrite", int64(1), mock.Anything).Return(errors.New("constraint"))
		runs.On("EndRun", int64(1), mock.Anything, schema.RunSuccess, 1, nil).Return(errors.New("db down"))

		deps := fileDeps()
		deps.Runs = runs
		result, _, err := Process(context.Background(), cfg, deps, resolve.ManifestCache{})
		require.NoError(t, err)
		assert.Equal(t, schema.StateCommitted, result.State)
		runs.AssertExpectations(t)
	})
}
