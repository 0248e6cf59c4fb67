package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCoord = schema.Coordinate{Group: "io.github.febb", Artifact: "api", Version: "1.16.5+7-3", Classifier: "dev-manifest"}

func TestLocalRepository(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, filepath.FromSlash(testCoord.Path()))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("jar"), 0o644))

	got, err := (&LocalRepository{Root: root}).Resolve(context.Background(), testCoord)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = (&LocalRepository{Root: t.TempDir()}).Resolve(context.Background(), testCoord)
	assert.Error(t, err)
}

func TestRemoteRepository(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/maven/"+testCoord.Path() {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("artifact bytes"))
	}))
	defer srv.Close()

	cache := t.TempDir()
	repo := &RemoteRepository{BaseURL: srv.URL + "/maven/", Client: srv.Client(), CacheDir: cache}

	path, err := repo.Resolve(context.Background(), testCoord)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, filepath.FromSlash(testCoord.Path())), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "artifact bytes", string(data))

	_, err = repo.Resolve(context.Background(), testCoord)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second resolve is served from the cache dir")

	missing := testCoord
	missing.Version = "0.0.0"
	_, err = repo.Resolve(context.Background(), missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.part"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChain(t *testing.T) {
	first := &MockArtifactResolver{}
	first.On("Resolve", mock.Anything, testCoord).Return("", errors.New("not here"))
	second := &MockArtifactResolver{}
	second.On("Resolve", mock.Anything, testCoord).Return("/found.jar", nil)
	third := &MockArtifactResolver{}

	path, err := Chain{first, second, third}.Resolve(context.Background(), testCoord)
	require.NoError(t, err)
	assert.Equal(t, "/found.jar", path)
	third.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)

	_, err = Chain{first, first}.Resolve(context.Background(), testCoord)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not here")

	_, err = Chain{}.Resolve(context.Background(), testCoord)
	assert.Error(t, err)
}

func TestNewResolver(t *testing.T) {
	cfg := &contract.Config{
		LocalRepository: "/m2",
		ResolverCommand: "mvn dependency:get -Dartifact={coordinate}",
		Repositories:    []string{"https://a", "https://b"},
	}
	chain := NewResolver(cfg)
	require.Len(t, chain, 4)
	assert.IsType(t, &LocalRepository{}, chain[0])
	assert.IsType(t, &CommandResolver{}, chain[1])
	assert.Equal(t, "https://b", chain[3].(*RemoteRepository).BaseURL)
}

func TestCommandResolver(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses true and false binaries")
	}
	root := t.TempDir()
	path := filepath.Join(root, filepath.FromSlash(testCoord.Path()))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("jar"), 0o644))

	ok := &CommandResolver{Command: "true " + CoordinatePlaceholder, Repository: &LocalRepository{Root: root}}
	got, err := ok.Resolve(context.Background(), testCoord)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	failing := &CommandResolver{Command: "false", Repository: &LocalRepository{Root: root}}
	_, err = failing.Resolve(context.Background(), testCoord)
	assert.Error(t, err)

	empty := &CommandResolver{Command: "  ", Repository: &LocalRepository{Root: root}}
	_, err = empty.Resolve(context.Background(), testCoord)
	assert.Error(t, err)
}
