package schema

import "time"

// RewriteRecord describes one class rewritten during a run.
type RewriteRecord struct {
	EntryName    string `json:"entry_name" yaml:"entry_name"`
	ClassName    string `json:"class_name" yaml:"class_name"`
	APIClassName string `json:"api_class_name" yaml:"api_class_name"`
	NewSignature string `json:"new_signature" yaml:"new_signature"`
	SizeBefore   int    `json:"size_before" yaml:"size_before"`
	SizeAfter    int    `json:"size_after" yaml:"size_after"`
}

// ProcessResult is the outcome of one orchestrated run.
type ProcessResult struct {
	Archive      string          `json:"archive" yaml:"archive"`
	ManifestPath string          `json:"manifest_path" yaml:"manifest_path"`
	State        ProcessState    `json:"state" yaml:"state"`
	Skipped      bool            `json:"skipped" yaml:"skipped"`
	Entries      int             `json:"entries" yaml:"entries"`
	Scanned      int             `json:"scanned" yaml:"scanned"`
	Rewritten    []RewriteRecord `json:"rewritten" yaml:"rewritten"`
	Duration     time.Duration   `json:"duration_ns" yaml:"duration_ns"`
}

// RunRecord represents a row from the febb_process_runs table.
type RunRecord struct {
	RunID          int64
	ArchivePath    string
	ManifestPath   string
	ManifestDigest string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	Status         string
	TotalRewritten int32
	ErrorMessage   *string
}

// RewriteHistoryRecord represents a row from the febb_class_rewrites table.
type RewriteHistoryRecord struct {
	RunID        int64
	EntryName    string
	ClassName    string
	APIClassName string
	NewSignature string
	SizeBefore   int32
	SizeAfter    int32
	RewriteTime  time.Time
}
