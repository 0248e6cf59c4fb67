// Package contract provides interfaces and shared utilities for febb's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/Astrarre/FebbGradle/schema"
)

// ArtifactResolver locates a single dependency artifact on disk.
// This is the only dependency-resolution capability the pipeline needs.
type ArtifactResolver interface {
	// Resolve returns the local path of the artifact named by the coordinate.
	Resolve(ctx context.Context, coordinate schema.Coordinate) (string, error)
}

// StoreManager defines the interface for managing record and history stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRecordStore() RecordStore
	GetRunStore() RunStore
}

// RecordStore persists the raw bytes of the last applied manifest per key.
type RecordStore interface {
	// Get returns the stored bytes, or an error wrapping schema.ErrRecordNotFound.
	Get(key string) ([]byte, error)

	// Set replaces the stored bytes for key.
	Set(key string, value []byte) error

	// Delete removes the record for key. Deleting a missing record is not an error.
	Delete(key string) error

	// GetStatus returns status information about the record for key.
	GetStatus(key string) (schema.RecordStatus, error)

	// Close closes the underlying connection
	Close() error
}

// RunStore defines the interface for tracking processing runs and the classes they rewrote.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, archivePath, manifestPath, manifestDigest string) (int64, error)

	// RecordRewrite stores one rewritten class for a run
	RecordRewrite(runID int64, rewrite schema.RewriteRecord) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, status schema.RunStatus, totalRewritten int, runErr error) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRewrites returns every recorded class rewrite ordered by run and entry
	GetAllRewrites() ([]schema.RewriteHistoryRecord, error)

	// Close closes the underlying connection
	Close() error
}
