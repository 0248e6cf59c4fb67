package cmd

import (
	"github.com/Astrarre/FebbGradle/core"
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/spf13/cobra"
)

// inspectCmd lists the interfaces and signatures of the classes in a jar.
var inspectCmd = &cobra.Command{
	Use:   "inspect <archive> [class]",
	Short: "Show interfaces and signatures of the classes in a jar.",
	Long: `Read the classes of a jar without modifying it.

Without a class name every class is listed. A class may be given in internal
(com/example/Foo) or dotted (com.example.Foo) form.

When a manifest source is configured, classes listed by the manifest are marked.

Examples:
  # Check that a rewrite happened
  febb inspect build/libs/mod.jar com.example.Foo

  # List all classes, marking the manifest ones
  febb inspect build/libs/mod.jar --manifest abstraction.json`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		var className string
		if len(args) == 2 {
			className = args[1]
		}
		if err := core.ExecuteInspect(rootCtx, cfg, storeManager, className); err != nil {
			contract.LogFatal("Cannot inspect archive", err)
		}
	},
}
