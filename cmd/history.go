package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/iocache"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads the configuration needed for history operations.
// The record store is not opened.
func historySetup() error {
	if err := setupConfig(nil); err != nil {
		return err
	}

	if err := iocache.InitStores(schema.NoneBackend, "", cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads the configuration needed for migrate operations.
// This does NOT initialize stores or create tables, allowing migrations
// to run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := setupConfig(nil); err != nil {
		return err
	}
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect == "" {
		cfg.HistoryDBConnect = contract.GetHistoryDBFilePath()
	}
	return nil
}

// historyDBFilePath returns the SQLite file the history backend uses.
func historyDBFilePath() string {
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect != "" {
		return cfg.HistoryDBConnect
	}
	return contract.GetHistoryDBFilePath()
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage run history tracking and exports",
	Long: `Manage the history of processing runs.

When enabled, febb tracks every run, storing:
- Run metadata (archive, manifest path and digest, status, duration)
- Every class rewritten by a successful run

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  migrate - Run database schema migrations
  clear   - Remove all history

Examples:
  # Check tracking status
  febb history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  febb history export --history-backend sqlite --output-file febb-history`,
}

// historyStatusCmd shows run history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run history statistics and connection details",
	Args:    cobra.NoArgs,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", errors.New("run history is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run history to Parquet format.

Exports two datasets:
- <output-file>.process_runs.parquet - one row per run
- <output-file>.class_rewrites.parquet - one row per rewritten class

Requires: --output-file parameter

Examples:
  # Export all data
  febb history export --output-file febb-history

  # Use with DuckDB for analysis
  duckdb -c "SELECT status, count(*) FROM read_parquet('febb-history.process_runs.parquet') GROUP BY 1"`,
	Args:    cobra.NoArgs,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the run history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  febb history migrate --history-backend sqlite

  # Rollback to initial state
  febb history migrate --history-backend sqlite --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history",
	Long: `Delete all stored runs and class rewrites.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  febb history export --output-file backup
  febb history clear`,
	Args:    cobra.NoArgs,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, historyDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}
