package iocache

import (
	"errors"
	"fmt"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/parquet"
)

// ExecuteHistoryExport exports the run history to two Parquet files named after outputFile.
func ExecuteHistoryExport(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is disabled. Set --history-backend to sqlite, mysql or postgresql")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total class rewrites: %d\n", status.TableSizes[classRewritesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve process runs: %w", err)
	}

	rewrites, err := store.GetAllRewrites()
	if err != nil {
		return fmt.Errorf("failed to retrieve class rewrites: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetRewrites := parquet.ConvertRewriteRecords(rewrites)

	runsFile := outputFile + ".process_runs.parquet"
	if err := parquet.WriteProcessRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write process runs: %w", err)
	}
	fmt.Printf("Exported %d process runs to: %s\n", len(parquetRuns), runsFile)

	rewritesFile := outputFile + ".class_rewrites.parquet"
	if err := parquet.WriteClassRewritesParquet(parquetRewrites, rewritesFile); err != nil {
		return fmt.Errorf("failed to write class rewrites: %w", err)
	}
	fmt.Printf("Exported %d class rewrites to: %s\n", len(parquetRewrites), rewritesFile)

	return nil
}
