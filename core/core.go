// Package core has the processing pipeline: manifest resolution, invalidation,
// archive rewriting, and the commands built on top of them.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/logging"
	"github.com/Astrarre/FebbGradle/internal/outwriter"
	"github.com/Astrarre/FebbGradle/internal/resolve"
)

// NewDeps wires the default collaborators for cfg from the store manager.
func NewDeps(cfg *contract.Config, mgr contract.StoreManager) Deps {
	deps := Deps{
		Resolver: resolve.NewResolver(cfg),
		Logger:   logging.L(),
	}
	if mgr != nil {
		deps.Records = mgr.GetRecordStore()
		deps.Runs = mgr.GetRunStore()
	}
	return deps
}

// ExecuteProcess runs the pipeline on cfg.ArchivePath and prints the result.
// It serves as the main entry point for the 'process' command.
func ExecuteProcess(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, _, err := Process(ctx, cfg, NewDeps(cfg, mgr), resolve.ManifestCache{})
	if err != nil {
		return err
	}
	return outwriter.WriteProcessResult(result, cfg)
}

// ExecuteInspect lists the classes of cfg.ArchivePath, or a single class when
// className is set. When a manifest source is configured, classes it names are flagged.
func ExecuteInspect(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, className string) error {
	start := time.Now()
	var resolved ResolvedManifest
	if cfg.RequireManifestSource() == nil {
		var err error
		resolved, _, err = ResolveManifest(ctx, cfg, NewDeps(cfg, mgr), resolve.ManifestCache{})
		if err != nil {
			return err
		}
	}
	classes, err := InspectArchive(ctx, cfg.ArchivePath, resolved.Manifest, className)
	if err != nil {
		return err
	}
	return outwriter.WriteInspectResults(classes, cfg, time.Since(start))
}

// ExecuteManifestResolve resolves the manifest and prints its local path.
func ExecuteManifestResolve(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	resolved, _, err := ResolveManifest(ctx, cfg, NewDeps(cfg, mgr), resolve.ManifestCache{})
	if err != nil {
		return err
	}
	fmt.Println(resolved.Path)
	return nil
}

// ExecuteManifestShow resolves the manifest and prints its entries.
func ExecuteManifestShow(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	resolved, _, err := ResolveManifest(ctx, cfg, NewDeps(cfg, mgr), resolve.ManifestCache{})
	if err != nil {
		return err
	}
	return outwriter.WriteManifest(resolved.Manifest, cfg)
}

// ExecuteManifestCoordinate prints the coordinate the manifest resolves from.
func ExecuteManifestCoordinate(cfg *contract.Config) error {
	coord, err := ManifestCoordinate(cfg)
	if err != nil {
		return err
	}
	fmt.Println(coord.String())
	return nil
}
