package core

import (
	"context"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/logging"
	"github.com/Astrarre/FebbGradle/internal/manifest"
	"github.com/Astrarre/FebbGradle/internal/resolve"
	"github.com/Astrarre/FebbGradle/schema"
)

// ResolvedManifest is a manifest located and parsed without touching any archive.
type ResolvedManifest struct {
	Path     string
	Bytes    []byte
	Manifest schema.AbstractionManifest
}

// ResolveManifest locates and parses the configured manifest. It performs the
// same resolution as Process and returns the next cache.
func ResolveManifest(ctx context.Context, cfg *contract.Config, deps Deps, cache resolve.ManifestCache) (ResolvedManifest, resolve.ManifestCache, error) {
	if err := cfg.RequireManifestSource(); err != nil {
		return ResolvedManifest{}, cache, err
	}
	source := resolve.NewManifestSource(cfg, deps.Resolver, logging.OrNop(deps.Logger))
	path, cache, err := source.Resolve(ctx, cache)
	if err != nil {
		return ResolvedManifest{}, cache, err
	}
	data, m, err := manifest.ReadFile(path)
	if err != nil {
		return ResolvedManifest{}, cache, err
	}
	return ResolvedManifest{Path: path, Bytes: data, Manifest: m}, cache, nil
}

// ManifestCoordinate returns the coordinate the manifest would be resolved from.
func ManifestCoordinate(cfg *contract.Config) (schema.Coordinate, error) {
	return resolve.NewManifestSource(cfg, nil, nil).Coordinate()
}
