package cmd

import (
	"github.com/Astrarre/FebbGradle/core"
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/spf13/cobra"
)

// manifestCmd groups the manifest source commands.
var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Resolve and display the abstraction manifest",
	Long: `Work with the abstraction manifest without touching any jar.

The manifest comes from --manifest when given. Otherwise it is extracted from the
abstraction artifact named by --platform-version, --mapping-build and
--abstraction-build.

Subcommands:
  resolve    - Print the local path of the manifest
  show       - Print the parsed manifest
  coordinate - Print the Maven coordinate of the abstraction artifact

Examples:
  # Where would the manifest come from?
  febb manifest coordinate --platform-version 1.17.1 --mapping-build 13 --abstraction-build 2

  # Dump the manifest as canonical JSON
  febb manifest show --manifest abstraction.json --output json`,
}

// manifestResolveCmd prints the resolved manifest path.
var manifestResolveCmd = &cobra.Command{
	Use:     "resolve",
	Short:   "Resolve the manifest and print its local path",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteManifestResolve(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot resolve manifest", err)
		}
	},
}

// manifestShowCmd prints the parsed manifest.
var manifestShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Resolve the manifest and print its entries",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteManifestShow(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot show manifest", err)
		}
	},
}

// manifestCoordinateCmd prints the abstraction artifact coordinate.
var manifestCoordinateCmd = &cobra.Command{
	Use:   "coordinate",
	Short: "Print the Maven coordinate of the abstraction artifact",
	Args:  cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, args []string) error {
		return setupConfig(args)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteManifestCoordinate(cfg); err != nil {
			contract.LogFatal("Cannot build coordinate", err)
		}
	},
}
