// Package parquet provides data structures and functions for exporting febb
// run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/Astrarre/FebbGradle/schema"
	"github.com/parquet-go/parquet-go"
)

// ProcessRun represents a single processing run of one archive.
// This struct maps to the febb_process_runs database table.
type ProcessRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// ArchivePath is the absolute path of the processed archive
	ArchivePath string `parquet:"archive_path,snappy,dict"`

	// ManifestPath is the manifest file the run applied
	ManifestPath string `parquet:"manifest_path,snappy,dict"`

	// ManifestDigest is the BLAKE3 digest of the manifest bytes
	ManifestDigest string `parquet:"manifest_digest,snappy,dict"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Status is one of success, skipped, failed or pending
	Status string `parquet:"status,snappy,dict"`

	// TotalRewritten is the number of classes rewritten in this run
	TotalRewritten int32 `parquet:"total_rewritten,snappy"`

	// ErrorMessage is the failure cause for failed runs (nullable)
	ErrorMessage *string `parquet:"error_message,optional,snappy"`
}

// ClassRewrite represents one class rewritten during a run.
// This struct maps to the febb_class_rewrites database table.
type ClassRewrite struct {
	RunID        int64     `parquet:"run_id,snappy"`
	EntryName    string    `parquet:"entry_name,snappy"`
	ClassName    string    `parquet:"class_name,snappy"`
	APIClassName string    `parquet:"api_class_name,snappy,dict"`
	NewSignature string    `parquet:"new_signature,snappy"`
	SizeBefore   int32     `parquet:"size_before,snappy"`
	SizeAfter    int32     `parquet:"size_after,snappy"`
	RewriteTime  time.Time `parquet:"rewrite_time,snappy"`
}

// WriteProcessRunsParquet writes a slice of ProcessRun structs to a Parquet file.
func WriteProcessRunsParquet(data []ProcessRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteClassRewritesParquet writes a slice of ClassRewrite structs to a Parquet file.
func WriteClassRewritesParquet(data []ClassRewrite, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using a schema derived from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the row groups and the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to ProcessRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ProcessRun {
	result := make([]ProcessRun, len(records))
	for i, record := range records {
		result[i] = ProcessRun{
			RunID:          record.RunID,
			ArchivePath:    record.ArchivePath,
			ManifestPath:   record.ManifestPath,
			ManifestDigest: record.ManifestDigest,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			Status:         record.Status,
			TotalRewritten: record.TotalRewritten,
			ErrorMessage:   record.ErrorMessage,
		}
	}
	return result
}

// ConvertRewriteRecords converts schema.RewriteHistoryRecord to ClassRewrite for Parquet export.
func ConvertRewriteRecords(records []schema.RewriteHistoryRecord) []ClassRewrite {
	result := make([]ClassRewrite, len(records))
	for i, record := range records {
		result[i] = ClassRewrite{
			RunID:        record.RunID,
			EntryName:    record.EntryName,
			ClassName:    record.ClassName,
			APIClassName: record.APIClassName,
			NewSignature: record.NewSignature,
			SizeBefore:   record.SizeBefore,
			SizeAfter:    record.SizeAfter,
			RewriteTime:  record.RewriteTime,
		}
	}
	return result
}
