package core

import (
	"context"
	"fmt"
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/logging"
	"github.com/Astrarre/FebbGradle/internal/resolve"
	"github.com/Astrarre/FebbGradle/schema"
	"go.uber.org/zap"
)

// Deps are the collaborators a processing run needs. Any of them may be nil:
// no resolver means only a custom manifest works, no record store means every
// run reprocesses, and no run store means history is off.
type Deps struct {
	Resolver contract.ArtifactResolver
	Records  contract.RecordStore
	Runs     contract.RunStore
	Logger   *zap.Logger
}

// ProcessResultBuilder walks one run through the processing states.
type ProcessResultBuilder struct {
	ctx     context.Context
	cfg     *contract.Config
	deps    Deps
	logger  *zap.Logger
	tracker *Tracker
	cache   resolve.ManifestCache
	start   time.Time

	manifestBytes []byte
	manifest      schema.AbstractionManifest
	result        *schema.ProcessResult
}

// NewProcessResultBuilder creates a builder in the idle state.
func NewProcessResultBuilder(ctx context.Context, cfg *contract.Config, deps Deps, cache resolve.ManifestCache) *ProcessResultBuilder {
	return &ProcessResultBuilder{
		ctx:     ctx,
		cfg:     cfg,
		deps:    deps,
		logger:  logging.OrNop(deps.Logger),
		tracker: NewTracker(deps.Records, cfg.RecordKey()),
		cache:   cache,
		start:   time.Now(),
		result: &schema.ProcessResult{
			Archive: cfg.ArchivePath,
			State:   schema.StateIdle,
		},
	}
}

// ResolveManifest locates, reads and parses the manifest.
func (b *ProcessResultBuilder) ResolveManifest() (*ProcessResultBuilder, error) {
	resolved, cache, err := ResolveManifest(b.ctx, b.cfg, b.deps, b.cache)
	b.cache = cache
	if err != nil {
		return nil, err
	}
	b.manifestBytes = resolved.Bytes
	b.manifest = resolved.Manifest
	b.result.ManifestPath = resolved.Path
	b.result.State = schema.StateManifestResolved
	b.logger.Debug("Manifest resolved", zap.String("path", resolved.Path), zap.Int("classes", len(resolved.Manifest)))
	return b, nil
}

// CheckInvalidation compares the manifest bytes against the record. When they
// are equal the run ends here, committed and skipped, with the archive untouched.
func (b *ProcessResultBuilder) CheckInvalidation() (*ProcessResultBuilder, error) {
	reprocess, err := b.tracker.ShouldReprocessBytes(b.manifestBytes)
	if err != nil {
		return nil, fmt.Errorf("checking invalidation record: %w", err)
	}
	if !reprocess {
		b.logger.Info("Manifest unchanged, skipping", zap.String("archive", b.cfg.ArchivePath))
		b.result.Skipped = true
		b.result.State = schema.StateCommitted
	}
	return b, nil
}

// RewriteArchive rewrites every archive class named by the manifest.
func (b *ProcessResultBuilder) RewriteArchive() (*ProcessResultBuilder, error) {
	if b.result.Skipped {
		return b, nil
	}
	b.result.State = schema.StateFiltered
	out, err := rewriteArchive(b.ctx, b.cfg.ArchivePath, b.manifest, b.cfg.Excludes, b.logger)
	if err != nil {
		return nil, err
	}
	b.result.Entries = out.Entries
	b.result.Scanned = out.Scanned
	b.result.Rewritten = out.Rewritten
	b.result.State = schema.StateRewritten
	return b, nil
}

// Commit stores the applied manifest as the new invalidation record.
func (b *ProcessResultBuilder) Commit() (*ProcessResultBuilder, error) {
	if b.result.Skipped {
		return b, nil
	}
	if err := b.tracker.CommitBytes(b.manifestBytes); err != nil {
		return nil, fmt.Errorf("committing invalidation record: %w", err)
	}
	b.result.State = schema.StateCommitted
	b.logger.Info("Archive processed",
		zap.String("archive", b.cfg.ArchivePath),
		zap.Int("rewritten", len(b.result.Rewritten)),
		zap.Int("scanned", b.result.Scanned))
	return b, nil
}

// GetResult returns the result so far, stamped with the elapsed time.
func (b *ProcessResultBuilder) GetResult() schema.ProcessResult {
	b.result.Duration = time.Since(b.start)
	return *b.result
}

// GetCache returns the manifest cache to pass to the next run.
func (b *ProcessResultBuilder) GetCache() resolve.ManifestCache {
	return b.cache
}
