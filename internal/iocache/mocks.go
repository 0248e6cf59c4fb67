package iocache

import (
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRecordStore implements the StoreManager interface.
func (m *MockStoreManager) GetRecordStore() contract.RecordStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RecordStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

var _ contract.RecordStore = &MockRecordStore{} // Compile-time check

// Get implements the RecordStore interface.
func (m *MockRecordStore) Get(key string) ([]byte, error) {
	args := m.Called(key)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

// Set implements the RecordStore interface.
func (m *MockRecordStore) Set(key string, value []byte) error {
	args := m.Called(key, value)
	return args.Error(0)
}

// Delete implements the RecordStore interface.
func (m *MockRecordStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// GetStatus implements the RecordStore interface.
func (m *MockRecordStore) GetStatus(key string) (schema.RecordStatus, error) {
	args := m.Called(key)
	return args.Get(0).(schema.RecordStatus), args.Error(1)
}

// Close implements the RecordStore interface.
func (m *MockRecordStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, archivePath, manifestPath, manifestDigest string) (int64, error) {
	args := m.Called(startTime, archivePath, manifestPath, manifestDigest)
	return args.Get(0).(int64), args.Error(1)
}

// RecordRewrite implements the RunStore interface.
func (m *MockRunStore) RecordRewrite(runID int64, rewrite schema.RewriteRecord) error {
	args := m.Called(runID, rewrite)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, status schema.RunStatus, totalRewritten int, runErr error) error {
	args := m.Called(runID, endTime, status, totalRewritten, runErr)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllRewrites implements the RunStore interface.
func (m *MockRunStore) GetAllRewrites() ([]schema.RewriteHistoryRecord, error) {
	args := m.Called()
	rewrites, _ := args.Get(0).([]schema.RewriteHistoryRecord)
	return rewrites, args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
