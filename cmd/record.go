package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/iocache"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/spf13/cobra"
)

// recordSetup loads the configuration needed for record operations.
// Run history is not opened.
func recordSetup(args []string) error {
	if err := setupConfig(args); err != nil {
		return err
	}
	if cfg.RecordKey() == "" {
		return fmt.Errorf("%w: pass the archive or --output-dir to locate the record", schema.ErrConfiguration)
	}

	if err := iocache.InitStores(cfg.RecordBackend, cfg.RecordDBConnect, "", ""); err != nil {
		return fmt.Errorf("failed to initialize record store: %w", err)
	}
	return nil
}

// recordSetupWrapper wraps recordSetup to provide PreRunE for record commands.
func recordSetupWrapper(_ *cobra.Command, args []string) error {
	return recordSetup(args)
}

// recordDBFilePath returns the SQLite file the record backend uses.
func recordDBFilePath() string {
	if cfg.RecordBackend == schema.SQLiteBackend && cfg.RecordDBConnect != "" {
		return cfg.RecordDBConnect
	}
	return contract.GetRecordDBFilePath()
}

// recordCmd focused on the invalidation record.
//
// Note: Record subcommands never resolve a manifest. They only need the build
// output directory, taken from the archive argument or --output-dir.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage the invalidation record of a build",
	Long: `Manage the record of the last manifest applied to a build output directory.

After a successful run febb stores the exact manifest bytes it applied. A later run
with identical bytes skips the jar entirely.

Supported backends: file (default, next to the build output), SQLite, MySQL,
PostgreSQL, or None (always reprocess)

Subcommands:
  status - Show the record for a build
  clear  - Forget the record so the next run rewrites again

Examples:
  # Check the record of a build
  febb record status build/libs/mod.jar

  # Force the next run to rewrite
  febb record clear --output-dir build/libs`,
}

// recordStatusCmd shows the record status.
var recordStatusCmd = &cobra.Command{
	Use:     "status [archive]",
	Short:   "Display the invalidation record of a build",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: recordSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRecordStore()
		if store == nil {
			contract.LogFatal("Failed to get record status", errors.New("record store is not initialized"))
		}
		status, err := store.GetStatus(cfg.RecordKey())
		if err != nil {
			contract.LogFatal("Failed to get record status", err)
		}
		iocache.PrintRecordStatus(os.Stdout, status)
	},
}

// recordClearCmd removes the record.
var recordClearCmd = &cobra.Command{
	Use:   "clear [archive]",
	Short: "Remove the invalidation record of a build",
	Long: `Delete the invalidation record so the next run rewrites the jar again.

For the file backend: deletes the record of the given build only
For SQLite: deletes the database file
For MySQL/PostgreSQL: drops the record table

Examples:
  # Clear the record next to a jar
  febb record clear build/libs/mod.jar

  # Clear a MySQL record table (set connection string via env variable)
  FEBB_RECORD_BACKEND=mysql FEBB_RECORD_DB_CONNECT="..." febb record clear --output-dir build/libs`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: recordSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRecords(cfg.RecordBackend, recordDBFilePath(), cfg.RecordDBConnect, cfg.RecordKey()); err != nil {
			contract.LogFatal("Failed to clear record", err)
		}
		fmt.Println("Record cleared successfully.")
	},
}
