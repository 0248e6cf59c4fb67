package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
)

// DefaultHTTPTimeout bounds a single artifact download.
const DefaultHTTPTimeout = 2 * time.Minute

// RemoteRepository downloads artifacts from a Maven-layout HTTP repository.
// Downloads are stored under CacheDir with the same layout and reused.
type RemoteRepository struct {
	BaseURL  string
	Client   *http.Client
	CacheDir string
}

var _ contract.ArtifactResolver = &RemoteRepository{} // Compile-time check

// Resolve implements the ArtifactResolver interface.
func (r *RemoteRepository) Resolve(ctx context.Context, coordinate schema.Coordinate) (string, error) {
	rel := coordinate.Path()
	target := filepath.Join(r.CacheDir, filepath.FromSlash(rel))
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return target, nil
	}

	url := strings.TrimRight(r.BaseURL, "/") + "/" + rel
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*.part")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return target, nil
}

func (r *RemoteRepository) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return &http.Client{Timeout: DefaultHTTPTimeout}
}
