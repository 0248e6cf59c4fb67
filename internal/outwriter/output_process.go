package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// processView is the serialized shape of a process result.
type processView struct {
	Archive      string                         `json:"archive" yaml:"archive"`
	ManifestPath string                         `json:"manifest_path" yaml:"manifest_path"`
	State        schema.ProcessState            `json:"state" yaml:"state"`
	Status       schema.RunStatus               `json:"status" yaml:"status"`
	Skipped      bool                           `json:"skipped" yaml:"skipped"`
	Entries      int                            `json:"entries" yaml:"entries"`
	Scanned      int                            `json:"scanned" yaml:"scanned"`
	DurationMs   int64                          `json:"duration_ms" yaml:"duration_ms"`
	Rewritten    []schema.EnrichedRewriteRecord `json:"rewritten" yaml:"rewritten"`
}

func newProcessView(result schema.ProcessResult) processView {
	return processView{
		Archive:      result.Archive,
		ManifestPath: result.ManifestPath,
		State:        result.State,
		Status:       contract.StatusOf(result, nil),
		Skipped:      result.Skipped,
		Entries:      result.Entries,
		Scanned:      result.Scanned,
		DurationMs:   result.Duration.Milliseconds(),
		Rewritten:    schema.EnrichRewrites(result.Rewritten),
	}
}

// WriteProcessResult outputs a process result, dispatching based on the output format configured.
func WriteProcessResult(result schema.ProcessResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, newProcessView(result))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, newProcessView(result))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProcessCSV(w, result)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetOnlyExport
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProcessTable(w, result, cfg)
		}, "Wrote table")
	}
}

// writeProcessTable generates and writes the human-readable table.
func writeProcessTable(w io.Writer, result schema.ProcessResult, cfg *contract.Config) error {
	status := contract.StatusOf(result, nil)
	label := contract.GetPlainLabel(status)
	if cfg.UseColors {
		label = contract.GetColorLabel(status)
	}

	if result.Skipped {
		_, err := fmt.Fprintf(w, "%s: manifest unchanged, %s left as is (%v)\n", label, result.Archive, result.Duration)
		return err
	}

	if len(result.Rewritten) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Rank", "Class", "Interface", "Before", "After", "Label"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		width := GetMaxTablePathWidth(cfg)
		var data [][]string
		for _, r := range schema.EnrichRewrites(result.Rewritten) {
			data = append(data, []string{
				strconv.Itoa(r.Rank),
				contract.TruncatePath(r.ClassName, width),
				contract.TruncatePath(r.APIClassName, width),
				strconv.Itoa(r.SizeBefore),
				strconv.Itoa(r.SizeAfter),
				r.Label,
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%s: rewrote %d of %d classes (%d entries) in %s\n",
		label, len(result.Rewritten), result.Scanned, result.Entries, result.Archive); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Manifest %s applied in %v. Record backend: %s\n",
		result.ManifestPath, result.Duration.Round(time.Millisecond), cfg.RecordBackend); err != nil {
		return err
	}
	return nil
}

// writeProcessCSV writes one row per rewritten class.
func writeProcessCSV(w io.Writer, result schema.ProcessResult) error {
	header := []string{"rank", "entry", "class", "interface", "signature", "size_before", "size_after", "delta", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range schema.EnrichRewrites(result.Rewritten) {
			row := []string{
				strconv.Itoa(r.Rank),
				r.EntryName,
				r.ClassName,
				r.APIClassName,
				r.NewSignature,
				strconv.Itoa(r.SizeBefore),
				strconv.Itoa(r.SizeAfter),
				strconv.Itoa(r.Delta),
				r.Label,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
