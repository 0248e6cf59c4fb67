package core

import (
	"context"
	"errors"
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/iocache"
	"github.com/Astrarre/FebbGradle/schema"
	"go.uber.org/zap"
)

// runHistory records one run in the optional run store. Every failure is
// logged as a warning and never changes the outcome of the run.
type runHistory struct {
	ctx    context.Context
	store  contract.RunStore
	logger *zap.Logger
}

// beginHistory opens a run once the manifest is known. The run ID travels in
// the builder's context.
func beginHistory(b *ProcessResultBuilder) *runHistory {
	h := &runHistory{ctx: b.ctx, store: b.deps.Runs, logger: b.logger}
	if h.store == nil {
		return h
	}
	runID, err := h.store.BeginRun(b.start, b.cfg.ArchivePath, b.result.ManifestPath, iocache.Digest(b.manifestBytes))
	if err != nil {
		h.logger.Warn("Run history initialization failed", zap.Error(err))
		return h
	}
	if runID > 0 {
		h.ctx = withRunID(h.ctx, runID)
		b.ctx = h.ctx
	}
	return h
}

// end records the rewritten classes of a successful run and closes the run.
func (h *runHistory) end(result schema.ProcessResult, runErr error) {
	runID := runIDFromContext(h.ctx)
	if h.store == nil || runID == 0 {
		return
	}

	var failed error
	if runErr == nil {
		for _, r := range result.Rewritten {
			if err := h.store.RecordRewrite(runID, r); err != nil {
				failed = errors.Join(failed, err)
			}
		}
	}
	if failed != nil {
		h.logger.Warn("Failed to record class rewrites", zap.Int64("run_id", runID), zap.Error(failed))
	}

	status := contract.StatusOf(result, runErr)
	if err := h.store.EndRun(runID, time.Now(), status, len(result.Rewritten), runErr); err != nil {
		h.logger.Warn("Failed to finalize run history", zap.Int64("run_id", runID), zap.Error(err))
	}
}
