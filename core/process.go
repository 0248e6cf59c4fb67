package core

import (
	"context"
	"fmt"

	"github.com/Astrarre/FebbGradle/internal/archive"
	"github.com/Astrarre/FebbGradle/internal/classfile"
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/logging"
	"github.com/Astrarre/FebbGradle/internal/resolve"
	"github.com/Astrarre/FebbGradle/schema"
	"go.uber.org/zap"
)

// Process runs the whole pipeline for cfg.ArchivePath: resolve the manifest,
// skip if the invalidation record matches it, otherwise rewrite and commit.
// Any error returns before the commit, so the next run retries.
//
// The returned cache replaces the one passed in; callers sharing a cache
// across goroutines must serialize calls.
func Process(ctx context.Context, cfg *contract.Config, deps Deps, cache resolve.ManifestCache) (schema.ProcessResult, resolve.ManifestCache, error) {
	builder := NewProcessResultBuilder(ctx, cfg, deps, cache)

	if _, err := builder.ResolveManifest(); err != nil {
		return builder.GetResult(), builder.GetCache(), err
	}

	history := beginHistory(builder)

	err := runSteps(builder)
	result := builder.GetResult()
	history.end(result, err)
	return result, builder.GetCache(), err
}

// runSteps performs the steps after resolution.
func runSteps(builder *ProcessResultBuilder) error {
	if _, err := builder.CheckInvalidation(); err != nil {
		return err
	}
	if _, err := builder.RewriteArchive(); err != nil {
		return err
	}
	if _, err := builder.Commit(); err != nil {
		return err
	}
	return nil
}

// ProcessArchive rewrites the classes of archivePath named by m. It does no
// manifest resolution and no invalidation check.
func ProcessArchive(ctx context.Context, archivePath string, m schema.AbstractionManifest, excludes []string) (schema.ProcessResult, error) {
	return rewriteArchive(ctx, archivePath, m, excludes, logging.L())
}

func rewriteArchive(ctx context.Context, archivePath string, m schema.AbstractionManifest, excludes []string, logger *zap.Logger) (schema.ProcessResult, error) {
	result := schema.ProcessResult{Archive: archivePath, State: schema.StateIdle}
	if archivePath == "" {
		return result, fmt.Errorf("%w: no archive path given", schema.ErrConfiguration)
	}

	filter := func(e archive.Entry) bool {
		return m.Contains(e.ClassName) && !contract.ShouldIgnore(e.Name, excludes)
	}

	var rewritten []schema.RewriteRecord
	rewrite := func(e archive.Entry, data []byte) ([]byte, error) {
		info, _ := m.Lookup(e.ClassName)
		out, err := classfile.Rewrite(data, info)
		if err != nil {
			return nil, err
		}
		rewritten = append(rewritten, schema.RewriteRecord{
			EntryName:    e.Name,
			ClassName:    e.ClassName,
			APIClassName: info.APIClassName,
			NewSignature: info.NewSignature,
			SizeBefore:   len(data),
			SizeAfter:    len(out),
		})
		if !shouldSuppressLog(ctx) {
			logger.Debug("Rewrote class",
				zap.String("class", e.ClassName),
				zap.String("interface", info.APIClassName))
		}
		return out, nil
	}

	stats, err := archive.ProcessInPlace(ctx, archivePath, filter, rewrite)
	result.Entries = stats.Entries
	result.Scanned = stats.Classes
	if err != nil {
		return result, err
	}
	result.State = schema.StateRewritten
	result.Rewritten = rewritten
	if result.Rewritten == nil {
		result.Rewritten = []schema.RewriteRecord{}
	}
	return result, nil
}
