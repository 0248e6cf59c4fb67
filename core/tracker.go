package core

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
)

// Tracker decides whether an archive needs reprocessing by comparing the
// candidate manifest against the bytes of the last one applied.
type Tracker struct {
	store contract.RecordStore
	key   string
}

// NewTracker creates a tracker for one build output key. A nil store never
// remembers anything, so every run reprocesses.
func NewTracker(store contract.RecordStore, key string) *Tracker {
	return &Tracker{store: store, key: key}
}

// ShouldReprocess reports whether the manifest at candidatePath differs from
// the recorded one. A missing record always means reprocess.
func (t *Tracker) ShouldReprocess(candidatePath string) (bool, error) {
	candidate, err := readCandidate(candidatePath)
	if err != nil {
		return false, err
	}
	return t.ShouldReprocessBytes(candidate)
}

// ShouldReprocessBytes is ShouldReprocess for manifest bytes already in memory.
// Equality is byte for byte: a reformatted manifest counts as changed.
func (t *Tracker) ShouldReprocessBytes(candidate []byte) (bool, error) {
	if t.store == nil {
		return true, nil
	}
	previous, err := t.store.Get(t.key)
	if errors.Is(err, schema.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !bytes.Equal(candidate, previous), nil
}

// Commit records the manifest at candidatePath as applied. It must only be
// called after a successful run.
func (t *Tracker) Commit(candidatePath string) error {
	candidate, err := readCandidate(candidatePath)
	if err != nil {
		return err
	}
	return t.CommitBytes(candidate)
}

// CommitBytes is Commit for manifest bytes already in memory.
func (t *Tracker) CommitBytes(candidate []byte) error {
	if t.store == nil {
		return nil
	}
	return t.store.Set(t.key, candidate)
}

func readCandidate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading manifest %s: %w", schema.ErrIO, path, err)
	}
	return data, nil
}
