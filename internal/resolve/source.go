// Package resolve locates the abstraction manifest, either at a configured
// path or inside a dependency artifact named by the version triple.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Astrarre/FebbGradle/internal/archive"
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/logging"
	"github.com/Astrarre/FebbGradle/schema"
	"go.uber.org/zap"
)

// ManifestCache remembers the last resolved manifest and the versions it was
// resolved for. It is a value: Resolve returns the next cache instead of
// mutating shared state, so callers sharing one must serialize their calls.
type ManifestCache struct {
	Path     string
	Versions schema.VersionTriple
}

// Valid reports whether the cache holds a path resolved for exactly these versions.
func (c ManifestCache) Valid(versions schema.VersionTriple) bool {
	return c.Path != "" && c.Versions.Equal(versions)
}

// ManifestSource decides where the manifest comes from.
type ManifestSource struct {
	CustomPath string
	Versions   *schema.VersionTriple
	Group      string
	Artifact   string
	Resolver   contract.ArtifactResolver
	WorkDir    string // extracted manifests go under WorkDir/manifests
	Logger     *zap.Logger
}

// NewManifestSource builds a source from a validated config.
func NewManifestSource(cfg *contract.Config, resolver contract.ArtifactResolver, logger *zap.Logger) *ManifestSource {
	return &ManifestSource{
		CustomPath: cfg.ManifestPath,
		Versions:   cfg.Versions,
		Group:      cfg.Group,
		Artifact:   cfg.Artifact,
		Resolver:   resolver,
		WorkDir:    cfg.WorkDir,
		Logger:     logger,
	}
}

// Coordinate returns the manifest coordinate for the configured versions.
func (s *ManifestSource) Coordinate() (schema.Coordinate, error) {
	if s.Versions == nil {
		return schema.Coordinate{}, fmt.Errorf("%w: no version triple configured", schema.ErrConfiguration)
	}
	return schema.ManifestCoordinate(s.Group, s.Artifact, *s.Versions), nil
}

// Resolve returns the manifest path and the cache to use on the next call.
//
// A custom path wins and leaves the cache untouched. Otherwise a cache that is
// valid for the configured versions is reused, and only on a miss is the
// manifest artifact resolved and its manifest entry extracted. An empty
// WorkDir extracts under contract.GetWorkDirPath.
func (s *ManifestSource) Resolve(ctx context.Context, cache ManifestCache) (string, ManifestCache, error) {
	logger := logging.OrNop(s.Logger)

	if s.CustomPath != "" {
		f, err := os.Open(s.CustomPath)
		if err != nil {
			return "", cache, fmt.Errorf("%w: custom manifest is not readable: %w", schema.ErrConfiguration, err)
		}
		_ = f.Close()
		logger.Debug("Using custom manifest", zap.String("path", s.CustomPath))
		return s.CustomPath, cache, nil
	}

	coord, err := s.Coordinate()
	if err != nil {
		return "", cache, err
	}
	versions := *s.Versions
	if cache.Valid(versions) {
		logger.Debug("Reusing resolved manifest", zap.String("path", cache.Path), zap.Stringer("versions", versions))
		return cache.Path, cache, nil
	}

	if s.Resolver == nil {
		return "", cache, fmt.Errorf("%w: no artifact resolver configured for %s", schema.ErrResolution, coord)
	}
	artifactPath, err := s.Resolver.Resolve(ctx, coord)
	if err != nil {
		return "", cache, fmt.Errorf("%w: %s: %w", schema.ErrResolution, coord, err)
	}
	logger.Info("Resolved manifest artifact", zap.Stringer("coordinate", coord), zap.String("path", artifactPath))

	data, err := archive.ReadEntry(artifactPath, schema.ManifestEntryName)
	if err != nil {
		if archive.IsNotExist(err) {
			return "", cache, fmt.Errorf("%w: %s has no %s entry", schema.ErrResolution, artifactPath, schema.ManifestEntryName)
		}
		return "", cache, fmt.Errorf("%w: %s: %w", schema.ErrResolution, artifactPath, err)
	}

	workDir := s.WorkDir
	if workDir == "" {
		workDir = contract.GetWorkDirPath()
	}
	target := filepath.Join(workDir, "manifests", versions.ArtifactVersion()+".json")
	if err := writeFileAtomic(target, data); err != nil {
		return "", cache, err
	}
	return target, ManifestCache{Path: target, Versions: versions}, nil
}

// writeFileAtomic writes data to a sibling temp file and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrIO, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", schema.ErrIO, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: writing %s: %w", schema.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: writing %s: %w", schema.ErrIO, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: writing %s: %w", schema.ErrIO, path, err)
	}
	return nil
}
