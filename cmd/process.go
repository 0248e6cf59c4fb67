package cmd

import (
	"github.com/Astrarre/FebbGradle/core"
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/spf13/cobra"
)

// processCmd runs the rewrite pipeline over a built jar.
var processCmd = &cobra.Command{
	Use:   "process <archive>",
	Short: "Rewrite the classes of a jar listed in the abstraction manifest.",
	Long: `Resolve the abstraction manifest and rewrite every listed class of the jar in place.

Each matching class gets the manifest's API interface appended to its interfaces
and its generic Signature attribute replaced. Classes not in the manifest are
copied through byte for byte.

The raw manifest bytes are recorded next to the build output. When the next run
sees the same bytes the jar is left untouched.

Examples:
  # Resolve the manifest from Maven coordinates
  febb process build/libs/mod.jar --platform-version 1.17.1 --mapping-build 13 --abstraction-build 2

  # Use a local manifest file
  febb process build/libs/mod.jar --manifest abstraction.json

  # Machine-readable summary
  febb process build/libs/mod.jar --manifest abstraction.json --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProcess(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot process archive", err)
		}
	},
}
