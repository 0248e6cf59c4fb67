// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the febb MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"febb Class Abstraction Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: process_archive ---
	s.AddTool(mcp.NewTool("process_archive",
		mcp.WithDescription("Rewrite the classes of a jar named by the abstraction manifest. Skips the jar when the manifest is unchanged since the last run."),
		mcp.WithString("archive_path", mcp.Description("Path to the jar to rewrite in place."), mcp.Required()),
		mcp.WithString("output_dir", mcp.Description("Build output directory holding the invalidation record (defaults to the jar's directory).")),
		mcp.WithString("manifest", mcp.Description("Path to a custom abstraction manifest. Takes precedence over the versions.")),
		mcp.WithString("platform_version", mcp.Description("Platform version, e.g. '1.17.1'.")),
		mcp.WithString("mapping_build", mcp.Description("Mapping build, e.g. 'build.5'.")),
		mcp.WithString("abstraction_build", mcp.Description("Abstraction build, e.g. '1.0.0'.")),
	), h.handleProcessArchive)

	// --- 2. Tool: inspect_class ---
	s.AddTool(mcp.NewTool("inspect_class",
		mcp.WithDescription("List the superclass, interfaces and generic signature of classes in a jar."),
		mcp.WithString("archive_path", mcp.Description("Path to the jar to read."), mcp.Required()),
		mcp.WithString("class_name", mcp.Description("Binary or dotted class name to show. Lists every class when empty.")),
	), h.handleInspectClass)

	// --- 3. Tool: show_manifest ---
	s.AddTool(mcp.NewTool("show_manifest",
		mcp.WithDescription("Resolve the abstraction manifest and return its entries."),
		mcp.WithString("manifest", mcp.Description("Path to a custom abstraction manifest.")),
		mcp.WithString("platform_version", mcp.Description("Platform version.")),
		mcp.WithString("mapping_build", mcp.Description("Mapping build.")),
		mcp.WithString("abstraction_build", mcp.Description("Abstraction build.")),
	), h.handleShowManifest)

	return s
}

// StartMCPServer starts the febb MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
