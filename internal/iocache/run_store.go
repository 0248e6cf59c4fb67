package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
)

// Table names for run history.
const (
	processRunsTable   = "febb_process_runs"
	classRewritesTable = "febb_class_rewrites"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	now     func() time.Time
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend, now: time.Now}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", backend)
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend, now: time.Now}, nil
}

// createRunTables creates the run history tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{processRunsTable, getCreateProcessRunsQuery(backend)},
		{classRewritesTable, getCreateClassRewritesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateProcessRunsQuery returns the CREATE TABLE query for febb_process_runs.
func getCreateProcessRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(processRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				archive_path VARCHAR(1024) NOT NULL,
				manifest_path VARCHAR(1024) NOT NULL,
				manifest_digest VARCHAR(80) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				status VARCHAR(20) NOT NULL,
				total_rewritten INT NOT NULL DEFAULT 0,
				error_message TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				archive_path TEXT NOT NULL,
				manifest_path TEXT NOT NULL,
				manifest_digest TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				status TEXT NOT NULL,
				total_rewritten INT NOT NULL DEFAULT 0,
				error_message TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				archive_path TEXT NOT NULL,
				manifest_path TEXT NOT NULL,
				manifest_digest TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				status TEXT NOT NULL,
				total_rewritten INTEGER NOT NULL DEFAULT 0,
				error_message TEXT
			);
		`, quotedTableName)
	}
}

// getCreateClassRewritesQuery returns the CREATE TABLE query for febb_class_rewrites.
func getCreateClassRewritesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(classRewritesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				entry_name VARCHAR(512) NOT NULL,
				class_name VARCHAR(512) NOT NULL,
				api_class_name VARCHAR(512) NOT NULL,
				new_signature TEXT NOT NULL,
				size_before INT NOT NULL,
				size_after INT NOT NULL,
				rewrite_time DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, entry_name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				entry_name TEXT NOT NULL,
				class_name TEXT NOT NULL,
				api_class_name TEXT NOT NULL,
				new_signature TEXT NOT NULL,
				size_before INT NOT NULL,
				size_after INT NOT NULL,
				rewrite_time TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, entry_name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				entry_name TEXT NOT NULL,
				class_name TEXT NOT NULL,
				api_class_name TEXT NOT NULL,
				new_signature TEXT NOT NULL,
				size_before INTEGER NOT NULL,
				size_after INTEGER NOT NULL,
				rewrite_time TEXT NOT NULL,
				PRIMARY KEY (run_id, entry_name)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new pending run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, archivePath, manifestPath, manifestDigest string) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(processRunsTable, rs.backend)
	args := []any{archivePath, manifestPath, manifestDigest, formatTime(startTime, rs.backend), string(schema.RunPending)}
	columns := "archive_path, manifest_path, manifest_digest, start_time, status"

	var runID int64
	var err error
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING run_id`, quotedTableName, columns, placeholderList(rs.backend, len(args)))
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quotedTableName, columns, placeholderList(rs.backend, len(args)))
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert process run: %w", err)
	}

	return runID, nil
}

// RecordRewrite stores one rewritten class for a run.
func (rs *RunStoreImpl) RecordRewrite(runID int64, rewrite schema.RewriteRecord) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(classRewritesTable, rs.backend)
	args := []any{
		runID, rewrite.EntryName, rewrite.ClassName, rewrite.APIClassName, rewrite.NewSignature,
		rewrite.SizeBefore, rewrite.SizeAfter, formatTime(rs.now(), rs.backend),
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, entry_name, class_name, api_class_name, new_signature,
		                size_before, size_after, rewrite_time)
		VALUES (%s)
	`, quotedTableName, placeholderList(rs.backend, len(args)))

	if _, err := rs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert class rewrite: %w", err)
	}

	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, status schema.RunStatus, totalRewritten int, runErr error) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(processRunsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))

	var rawStart any
	if err := rs.db.QueryRow(query, runID).Scan(&rawStart); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := scanTime(rawStart, rs.backend)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var errMsg *string
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, status = %s, total_rewritten = %s, error_message = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5), placeholder(rs.backend, 6))
	args := []any{formatTime(endTime, rs.backend), durationMs, string(status), totalRewritten, errMsg, runID}

	if _, err := rs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update process run: %w", err)
	}

	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:       string(rs.backend),
		Connected:     rs.db != nil,
		TableSizes:    make(map[string]int64),
		RunsPerStatus: make(map[string]int),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(processRunsTable, rs.backend)

	// Get total runs
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		var rawLast any
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable))
		if err := row.Scan(&status.LastRunID, &rawLast); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastRunTime, err := scanTime(rawLast, rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		// Get oldest run time
		var rawOldest any
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable))
		if err := row.Scan(&rawOldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestRunTime, err := scanTime(rawOldest, rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime

		// Get total classes rewritten
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_rewritten), 0) FROM %s", runsTable))
		if err := row.Scan(&status.TotalRewrites); err != nil {
			return status, fmt.Errorf("failed to get total rewrites: %w", err)
		}

		// Get runs per status
		if err := rs.scanRunsPerStatus(status.RunsPerStatus); err != nil {
			return status, err
		}
	}

	// Get table sizes
	for _, table := range []string{processRunsTable, classRewritesTable} {
		var count int64
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// scanRunsPerStatus counts runs grouped by status into counts.
func (rs *RunStoreImpl) scanRunsPerStatus(counts map[string]int) error {
	rows, err := rs.db.Query(fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", quoteTableName(processRunsTable, rs.backend)))
	if err != nil {
		return fmt.Errorf("failed to get runs per status: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return fmt.Errorf("failed to scan runs per status: %w", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating runs per status: %w", err)
	}
	return nil
}

// GetAllRuns retrieves all process runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, archive_path, manifest_path, manifest_digest, start_time, end_time,
		run_duration_ms, status, total_rewritten, error_message FROM %s ORDER BY run_id`, quoteTableName(processRunsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query process runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var rawStart, rawEnd any
		if err := rows.Scan(&record.RunID, &record.ArchivePath, &record.ManifestPath, &record.ManifestDigest,
			&rawStart, &rawEnd, &record.RunDurationMs, &record.Status, &record.TotalRewritten, &record.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan process run: %w", err)
		}
		if record.StartTime, err = scanTime(rawStart, rs.backend); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if rawEnd != nil {
			endTime, err := scanTime(rawEnd, rs.backend)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating process runs: %w", err)
	}

	return results, nil
}

// GetAllRewrites retrieves all class rewrites from the store.
func (rs *RunStoreImpl) GetAllRewrites() ([]schema.RewriteHistoryRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, entry_name, class_name, api_class_name, new_signature,
		size_before, size_after, rewrite_time FROM %s ORDER BY run_id, entry_name`, quoteTableName(classRewritesTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query class rewrites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RewriteHistoryRecord
	for rows.Next() {
		var record schema.RewriteHistoryRecord
		var rawTime any
		if err := rows.Scan(&record.RunID, &record.EntryName, &record.ClassName, &record.APIClassName,
			&record.NewSignature, &record.SizeBefore, &record.SizeAfter, &rawTime); err != nil {
			return nil, fmt.Errorf("failed to scan class rewrite: %w", err)
		}
		if record.RewriteTime, err = scanTime(rawTime, rs.backend); err != nil {
			return nil, fmt.Errorf("failed to parse rewrite_time: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating class rewrites: %w", err)
	}

	return results, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
