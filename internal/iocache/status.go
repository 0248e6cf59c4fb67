package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/Astrarre/FebbGradle/schema"
)

// PrintRecordStatus prints invalidation record status information.
func PrintRecordStatus(w io.Writer, status schema.RecordStatus) {
	_, _ = fmt.Fprintf(w, "Record Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Key: %s\n", status.Key)
	_, _ = fmt.Fprintf(w, "Present: %t\n", status.Present)
	if status.Present {
		_, _ = fmt.Fprintf(w, "Size: %d bytes\n", status.SizeBytes)
		_, _ = fmt.Fprintf(w, "Digest: %s\n", status.Digest)
		_, _ = fmt.Fprintf(w, "Last Write: %s\n", status.LastWriteTime.Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintf(w, "Total Records: %d\n", status.TotalRecords)
}

// PrintHistoryStatus prints run history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Total Classes Rewritten: %d\n", status.TotalRewrites)
		_, _ = fmt.Fprintln(w, "Runs Per Status:")
		for _, name := range slices.Sorted(maps.Keys(status.RunsPerStatus)) {
			_, _ = fmt.Fprintf(w, "  %s: %d\n", name, status.RunsPerStatus[name])
		}
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
