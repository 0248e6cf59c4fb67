package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteInspectResults outputs the inspected classes, dispatching based on the output format configured.
func WriteInspectResults(classes []schema.InspectedClass, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, classes)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, classes)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInspectCSV(w, classes)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetOnlyExport
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInspectTable(w, classes, cfg, duration)
		}, "Wrote table")
	}
}

func writeInspectTable(w io.Writer, classes []schema.InspectedClass, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Class", "Super", "Interfaces", "Java", "Manifest"})

	width := getMaxTableWidth(cfg, inspectLayout)
	var data [][]string
	for _, c := range classes {
		manifest := yesNo(c.InManifest)
		if c.InManifest && cfg.UseColors {
			manifest = contract.SuccessColor.Sprint(manifest)
		}
		data = append(data, []string{
			contract.TruncatePath(c.ClassName, width),
			contract.TruncatePath(c.SuperName, width/2),
			contract.TruncatePath(strings.Join(c.Interfaces, ", "), width),
			strconv.Itoa(c.JavaVersion),
			manifest,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// A single class also gets its signature, which rarely fits a table cell
	if len(classes) == 1 && classes[0].Signature != "" {
		if _, err := fmt.Fprintf(w, "Signature: %s\n", classes[0].Signature); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Inspected %d classes in %v\n", len(classes), duration.Round(time.Millisecond))
	return err
}

func writeInspectCSV(w io.Writer, classes []schema.InspectedClass) error {
	header := []string{"entry", "class", "super", "interfaces", "signature", "major_version", "java_version", "in_manifest"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range classes {
			row := []string{
				c.EntryName,
				c.ClassName,
				c.SuperName,
				strings.Join(c.Interfaces, ";"),
				c.Signature,
				strconv.Itoa(int(c.MajorVersion)),
				strconv.Itoa(c.JavaVersion),
				yesNo(c.InManifest),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
