// Package cmd defines the command-line interface for febb.
package cmd

import (
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the manifest subcommands to the parent manifest command
	manifestCmd.AddCommand(manifestResolveCmd)
	manifestCmd.AddCommand(manifestShowCmd)
	manifestCmd.AddCommand(manifestCoordinateCmd)

	// Add the record subcommands to the parent record command
	recordCmd.AddCommand(recordStatusCmd)
	recordCmd.AddCommand(recordClearCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)
	historyCmd.AddCommand(historyClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("platform-version", "", "Platform version of the abstraction manifest (e.g., 1.17.1)")
	rootCmd.PersistentFlags().String("mapping-build", "", "Mapping build of the abstraction manifest")
	rootCmd.PersistentFlags().String("abstraction-build", "", "Abstraction build of the abstraction manifest")
	rootCmd.PersistentFlags().StringP("manifest", "m", "", "Path to a custom manifest file (skips artifact resolution)")
	rootCmd.PersistentFlags().String("group", schema.DefaultGroup, "Maven group of the abstraction artifact")
	rootCmd.PersistentFlags().String("artifact", schema.DefaultArtifact, "Maven artifact id of the abstraction artifact")
	rootCmd.PersistentFlags().String("local-repository", "", "Local Maven repository (default ~/.m2/repository)")
	rootCmd.PersistentFlags().StringSlice("repositories", nil, "Remote Maven repository URLs, tried in order")
	rootCmd.PersistentFlags().String("resolver-command", "", "External command that prints the artifact path for a coordinate")
	rootCmd.PersistentFlags().String("output-dir", "", "Build output directory holding the invalidation record (default: the archive's directory)")
	rootCmd.PersistentFlags().String("work-dir", "", "Directory resolved manifests are extracted to (default: <output-dir>/febb)")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of entry prefixes or patterns to leave untouched")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("record-backend", string(schema.FileBackend), "Invalidation record backend: file or sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("record-db-connect", "", "Database connection string for the record backend")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from record-db-connect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
