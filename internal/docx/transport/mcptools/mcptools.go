// Package mcptools exposes the control-plane operations over
// github.com/mark3labs/mcp-go, one named tool per operation, grounded on
// cmd/quaero-mcp's tool-definition/handler-pair registration pattern and on
// the rmcp tool parameter shapes this module was translated from.
package mcptools

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/registry"
)

const defaultLimit = 200

// Build constructs an MCP server with every tool registered against reg.
// version is reported by the version tool.
func Build(reg *registry.Registry, logger arbor.ILogger, version string) *server.MCPServer {
	srv := server.NewMCPServer("docx-mcp", version, server.WithToolCapabilities(true))
	registerIngestTools(srv, reg, logger)
	registerDataTools(srv, reg, logger)
	registerMetadataTools(srv, reg, logger)
	registerContextTools(srv, version)
	return srv
}

// controlFor resolves solution to its control plane, trimming whitespace
// and rejecting an empty name as bad input, mirroring the original's
// control_for_solution helper.
func controlFor(reg *registry.Registry, solution string) (*control.Plane, error) {
	trimmed := strings.TrimSpace(solution)
	if trimmed == "" {
		return nil, docxerr.Invalid("solution is required")
	}
	handle, err := reg.GetOrInit(trimmed)
	if err != nil {
		return nil, err
	}
	return handle.Control, nil
}

// errResult turns a docxerr into a tool-level text result rather than a
// transport-level error, the same pattern cmd/quaero-mcp's handlers use for
// reporting a failure back to the caller as content instead of a Go error.
func errResult(err error) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent("Error: " + err.Error())},
	}, nil
}

// jsonResult marshals v as the tool's single text content block, the same
// Content: []mcp.Content{mcp.NewTextContent(...)} shape the teacher's own
// handlers build, just carrying JSON instead of markdown.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return errResult(err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(body))},
	}, nil
}

func limitOrDefault(request mcp.CallToolRequest) int {
	limit := request.GetInt("limit", defaultLimit)
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

