package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// ProcessState represents a step of the processing state machine.
	ProcessState string

	// RunStatus represents the final status of a processing run.
	RunStatus string

	// DatabaseBackend represents the storage backend for records and history.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All states a run passes through, in order.
const (
	StateIdle             ProcessState = "idle"
	StateManifestResolved ProcessState = "manifest_resolved"
	StateFiltered         ProcessState = "filtered"
	StateRewritten        ProcessState = "rewritten"
	StateCommitted        ProcessState = "committed"
)

// All run statuses recorded in history.
const (
	RunSuccess RunStatus = "success"
	RunSkipped RunStatus = "skipped"
	RunFailed  RunStatus = "failed"
	RunPending RunStatus = "pending"
)

// All storage backends supported.
const (
	FileBackend       DatabaseBackend = "file" // default for records
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default for history
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidRecordBackends lists all valid backends for the invalidation record.
var ValidRecordBackends = map[DatabaseBackend]struct{}{
	FileBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidHistoryBackends lists all valid backends for the run history.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllProcessStates lists the states in the order a successful run visits them.
var AllProcessStates = []ProcessState{
	StateIdle,
	StateManifestResolved,
	StateFiltered,
	StateRewritten,
	StateCommitted,
}

// IsSQL reports whether the backend is backed by database/sql.
func (b DatabaseBackend) IsSQL() bool {
	switch b {
	case SQLiteBackend, MySQLBackend, PostgreSQLBackend:
		return true
	default:
		return false
	}
}
