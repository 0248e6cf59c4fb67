// Package iocache persists invalidation records and run history.
package iocache

import (
	"sync"

	"github.com/Astrarre/FebbGradle/internal/contract"
)

// StoreManager manages the record store and the run store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	record       contract.RecordStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetRecordStore returns the invalidation RecordStore.
func (mgr *StoreManager) GetRecordStore() contract.RecordStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.record
}

// GetRunStore returns the history RunStore.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
