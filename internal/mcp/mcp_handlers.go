package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Astrarre/FebbGradle/core"
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/resolve"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
//
// Tool calls may arrive concurrently while the pipeline is single threaded, so
// every call that resolves a manifest or touches an archive holds mu. The
// manifest cache is carried from one call to the next.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager

	mu    sync.Mutex
	cache resolve.ManifestCache
}

// manifestConfig clones the base config and applies the manifest source arguments.
func (h *toolHandler) manifestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateManifestSource(cfg,
		request.GetString("manifest", ""),
		request.GetString("platform_version", ""),
		request.GetString("mapping_build", ""),
		request.GetString("abstraction_build", ""),
	)
	return cfg, err
}

func (h *toolHandler) handleProcessArchive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.manifestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid manifest parameters: %v", err)), nil
	}
	if err := contract.RevalidateArchive(cfg, request.GetString("archive_path", ""), request.GetString("output_dir", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid archive parameters: %v", err)), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, cache, err := core.Process(core.WithSuppressLog(ctx), cfg, core.NewDeps(cfg, h.mgr), h.cache)
	h.cache = cache
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}

	return jsonResult(struct {
		schema.ProcessResult
		Status schema.RunStatus `json:"status"`
	}{result, contract.StatusOf(result, nil)})
}

func (h *toolHandler) handleInspectClass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	archivePath := request.GetString("archive_path", "")
	if archivePath == "" {
		return mcp.NewToolResultError("invalid archive parameters: archive_path is required"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	classes, err := core.InspectArchive(ctx, archivePath, nil, request.GetString("class_name", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspection failed: %v", err)), nil
	}
	return jsonResult(classes)
}

func (h *toolHandler) handleShowManifest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.manifestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid manifest parameters: %v", err)), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	resolved, cache, err := core.ResolveManifest(ctx, cfg, core.NewDeps(cfg, h.mgr), h.cache)
	h.cache = cache
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("manifest resolution failed: %v", err)), nil
	}

	return jsonResult(struct {
		Path     string                     `json:"path"`
		Entries  int                        `json:"entries"`
		Manifest schema.AbstractionManifest `json:"manifest"`
	}{resolved.Path, len(resolved.Manifest), resolved.Manifest})
}

// jsonResult renders v as an indented JSON text result. Signatures keep
// their angle brackets unescaped.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
