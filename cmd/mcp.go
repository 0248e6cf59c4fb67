package cmd

import (
	"github.com/Astrarre/FebbGradle/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the febb MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents process and inspect jars via standard tools.

Tools:
  process_archive - run the pipeline on a jar
  inspect_class   - read interfaces and signatures from a jar
  show_manifest   - resolve and print the manifest

Flags given here become the defaults of every tool call.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs already go to stderr, leaving stdout to the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
