package schema

import "time"

// RecordStatus represents the status of the invalidation record store.
type RecordStatus struct {
	Backend       string    `json:"backend" yaml:"backend"`
	Connected     bool      `json:"connected" yaml:"connected"`
	Key           string    `json:"key" yaml:"key"`
	Present       bool      `json:"present" yaml:"present"`
	SizeBytes     int       `json:"size_bytes" yaml:"size_bytes"`
	Digest        string    `json:"digest,omitempty" yaml:"digest,omitempty"`
	LastWriteTime time.Time `json:"last_write_time" yaml:"last_write_time"`
	TotalRecords  int       `json:"total_records" yaml:"total_records"`
}

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend       string           `json:"backend" yaml:"backend"`
	Connected     bool             `json:"connected" yaml:"connected"`
	TotalRuns     int              `json:"total_runs" yaml:"total_runs"`
	LastRunID     int64            `json:"last_run_id" yaml:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time" yaml:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time" yaml:"oldest_run_time"`
	TotalRewrites int              `json:"total_rewrites" yaml:"total_rewrites"`
	TableSizes    map[string]int64 `json:"table_sizes" yaml:"table_sizes"`
	RunsPerStatus map[string]int   `json:"runs_per_status" yaml:"runs_per_status"`
}
