package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

const (
	// recordTable holds one manifest record per build output key.
	recordTable = "febb_manifest_records"

	// recordVersion is bumped when the stored record format changes.
	// Rows written with another version read as not found.
	recordVersion = 1

	// RecordFileName is the file written by the file backend under <key>/<namespace>.
	RecordFileName = "latest-manifest.json"
)

// NewRecordStore initializes and returns a RecordStore for the backend.
// namespace is only used by the file backend.
func NewRecordStore(backend schema.DatabaseBackend, connStr, namespace string) (contract.RecordStore, error) {
	switch backend {
	case schema.FileBackend:
		if namespace == "" {
			namespace = contract.DefaultRecordNamespace
		}
		return &FileRecordStore{Namespace: namespace}, nil

	case schema.NoneBackend:
		return &SQLRecordStore{backend: backend, tableName: recordTable}, nil

	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLRecordStore(recordTable, backend, connStr)

	default:
		return nil, fmt.Errorf("unsupported record backend: %s. Must be file, sqlite, mysql, postgresql, or none", backend)
	}
}

// FileRecordStore keeps the record as a plain file inside the build output directory.
type FileRecordStore struct {
	Namespace string
}

var _ contract.RecordStore = &FileRecordStore{} // Compile-time check

// Path returns the record file for a key.
func (fr *FileRecordStore) Path(key string) string {
	return filepath.Join(key, fr.Namespace, RecordFileName)
}

// Get reads the record file.
func (fr *FileRecordStore) Get(key string) ([]byte, error) {
	path := fr.Path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", schema.ErrRecordNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read record %s: %w", schema.ErrIO, path, err)
	}
	return data, nil
}

// Set writes the record file, creating parent directories.
func (fr *FileRecordStore) Set(key string, value []byte) error {
	path := fr.Path(key)
	if err := writeFileAtomic(path, value); err != nil {
		return fmt.Errorf("%w: write record %s: %w", schema.ErrIO, path, err)
	}
	return nil
}

// Delete removes the record file.
func (fr *FileRecordStore) Delete(key string) error {
	path := fr.Path(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove record %s: %w", schema.ErrIO, path, err)
	}
	return nil
}

// GetStatus describes the record file for key.
func (fr *FileRecordStore) GetStatus(key string) (schema.RecordStatus, error) {
	status := schema.RecordStatus{
		Backend:   string(schema.FileBackend),
		Connected: true,
		Key:       fr.Path(key),
	}
	info, err := os.Stat(status.Key)
	if errors.Is(err, os.ErrNotExist) {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("%w: stat record %s: %w", schema.ErrIO, status.Key, err)
	}
	data, err := os.ReadFile(status.Key)
	if err != nil {
		return status, fmt.Errorf("%w: read record %s: %w", schema.ErrIO, status.Key, err)
	}
	status.Present = true
	status.TotalRecords = 1
	status.SizeBytes = len(data)
	status.Digest = Digest(data)
	status.LastWriteTime = info.ModTime()
	return status, nil
}

// Close is a no-op for the file backend.
func (fr *FileRecordStore) Close() error { return nil }

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// SQLRecordStore keeps records in a SQL table keyed by build output directory.
type SQLRecordStore struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
}

var _ contract.RecordStore = &SQLRecordStore{} // Compile-time check

// NewSQLRecordStore opens a SQL backend and creates the record table.
func NewSQLRecordStore(tableName string, backend schema.DatabaseBackend, connStr string) (*SQLRecordStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	db, err := openDB(backend, connStr, GetRecordDBFilePath())
	if err != nil {
		return nil, err
	}

	query := getCreateRecordTableQuery(tableName, backend)
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SQLRecordStore{db: db, tableName: tableName, backend: backend}, nil
}

// getCreateRecordTableQuery returns the CREATE TABLE query for the given backend.
func getCreateRecordTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_key VARCHAR(512) PRIMARY KEY,
				manifest_bytes LONGBLOB NOT NULL,
				record_version INT NOT NULL,
				record_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_key TEXT PRIMARY KEY,
				manifest_bytes BYTEA NOT NULL,
				record_version INTEGER NOT NULL,
				record_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_key TEXT PRIMARY KEY,
				manifest_bytes BLOB NOT NULL,
				record_version INTEGER NOT NULL,
				record_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves the record bytes for key.
func (rs *SQLRecordStore) Get(key string) ([]byte, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, fmt.Errorf("%w: record backend disabled", schema.ErrRecordNotFound)
	}

	var value []byte
	var version int
	query := fmt.Sprintf(`SELECT manifest_bytes, record_version FROM %s WHERE record_key = %s`,
		quoteTableName(rs.tableName, rs.backend), placeholder(rs.backend, 1))
	err := rs.db.QueryRow(query, key).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", schema.ErrRecordNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query record %s: %w", schema.ErrIO, key, err)
	}
	if version != recordVersion {
		return nil, fmt.Errorf("%w: %s has record version %d", schema.ErrRecordNotFound, key, version)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set inserts or replaces the record for key.
func (rs *SQLRecordStore) Set(key string, value []byte) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := rs.db.Exec(rs.getUpsertQuery(), key, value, recordVersion, time.Now().Unix()); err != nil {
		return fmt.Errorf("%w: store record %s: %w", schema.ErrIO, key, err)
	}
	return nil
}

// Delete removes the record for key.
func (rs *SQLRecordStore) Delete(key string) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE record_key = %s`,
		quoteTableName(rs.tableName, rs.backend), placeholder(rs.backend, 1))
	if _, err := rs.db.Exec(query, key); err != nil {
		return fmt.Errorf("%w: delete record %s: %w", schema.ErrIO, key, err)
	}
	return nil
}

// getUpsertQuery returns the UPSERT query for the backend.
func (rs *SQLRecordStore) getUpsertQuery() string {
	quotedTableName := quoteTableName(rs.tableName, rs.backend)
	switch rs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (record_key, manifest_bytes, record_version, record_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE manifest_bytes = new.manifest_bytes, record_version = new.record_version, record_timestamp = new.record_timestamp`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (record_key, manifest_bytes, record_version, record_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (record_key) DO UPDATE SET manifest_bytes = EXCLUDED.manifest_bytes, record_version = EXCLUDED.record_version, record_timestamp = EXCLUDED.record_timestamp`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (record_key, manifest_bytes, record_version, record_timestamp) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// Close closes the underlying DB connection.
func (rs *SQLRecordStore) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the record store and the record for key.
func (rs *SQLRecordStore) GetStatus(key string) (schema.RecordStatus, error) {
	status := schema.RecordStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
		Key:       key,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(rs.tableName, rs.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := rs.db.QueryRow(countQuery).Scan(&status.TotalRecords); err != nil {
		return status, fmt.Errorf("failed to get total records: %w", err)
	}

	var value []byte
	var version int
	var ts int64
	query := fmt.Sprintf(`SELECT manifest_bytes, record_version, record_timestamp FROM %s WHERE record_key = %s`,
		quotedTableName, placeholder(rs.backend, 1))
	err := rs.db.QueryRow(query, key).Scan(&value, &version, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("failed to get record %s: %w", key, err)
	}

	status.Present = version == recordVersion
	status.SizeBytes = len(value)
	status.Digest = Digest(value)
	status.LastWriteTime = time.Unix(ts, 0)
	return status, nil
}
