package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/manifest"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteManifest outputs a parsed manifest, dispatching based on the output format configured.
// JSON output is the canonical manifest encoding and parses back to the same manifest.
func WriteManifest(m schema.AbstractionManifest, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			data, err := manifest.Marshal(m)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, m)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeManifestCSV(w, m)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetOnlyExport
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeManifestTable(w, m, cfg)
		}, "Wrote table")
	}
}

func writeManifestTable(w io.Writer, m schema.AbstractionManifest, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Class", "Interface", "Signature"})

	width := getMaxTableWidth(cfg, manifestLayout)
	var data [][]string
	for _, name := range slices.Sorted(maps.Keys(m)) {
		info := m[name]
		data = append(data, []string{
			contract.TruncatePath(name, width),
			contract.TruncatePath(info.APIClassName, width),
			contract.TruncatePath(info.NewSignature, width),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d classes in manifest\n", len(m))
	return err
}

func writeManifestCSV(w io.Writer, m schema.AbstractionManifest) error {
	return writeCSVWithHeader(w, []string{"class", "api_class_name", "new_signature"}, func(cw *csv.Writer) error {
		for _, name := range slices.Sorted(maps.Keys(m)) {
			info := m[name]
			if err := cw.Write([]string{name, info.APIClassName, info.NewSignature}); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
