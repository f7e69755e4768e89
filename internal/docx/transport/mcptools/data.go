package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/registry"
)

func registerDataTools(srv *server.MCPServer, reg *registry.Registry, logger arbor.ILogger) {
	srv.AddTool(listSymbolTypesTool(), handleListSymbolTypes(reg))
	srv.AddTool(getMembersTool(), handleGetMembers(reg))
	srv.AddTool(getSymbolTool(), handleGetSymbol(reg))
	srv.AddTool(listDocBlocksTool(), handleListDocBlocks(reg))
	srv.AddTool(getSymbolAdjacencyTool(), handleGetSymbolAdjacency(reg))
	srv.AddTool(searchSymbolsTool(), handleSearchSymbols(reg))
	srv.AddTool(searchDocBlocksTool(), handleSearchDocBlocks(reg))
	srv.AddTool(searchSymbolsAdvancedTool(), handleSearchSymbolsAdvanced(reg))
	srv.AddTool(auditProjectCompletenessTool(), handleAuditProjectCompleteness(reg))
}

func listSymbolTypesTool() mcp.Tool {
	return mcp.NewTool("list_symbol_types",
		mcp.WithDescription("List symbol kinds present in a project."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
	)
}

func handleListSymbolTypes(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		kinds, err := plane.ListSymbolKinds(projectID)
		if err != nil {
			return errResult(err)
		}
		return jsonResult(kinds)
	}
}

func getMembersTool() mcp.Tool {
	return mcp.NewTool("get_members",
		mcp.WithDescription("List members under a namespace/module scope."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithString("scope", mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return, default 200")),
	)
}

func handleGetMembers(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		scope, err := request.RequireString("scope")
		if err != nil {
			return errResult(err)
		}
		members, err := plane.ListMembersByScope(projectID, scope, limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(members)
	}
}

func getSymbolTool() mcp.Tool {
	return mcp.NewTool("get_symbol",
		mcp.WithDescription("Fetch a symbol by its key."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithString("symbol_key", mcp.Required()),
	)
}

func handleGetSymbol(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		symbolKey, err := request.RequireString("symbol_key")
		if err != nil {
			return errResult(err)
		}
		symbol, err := plane.GetSymbol(projectID, symbolKey)
		if err != nil {
			return errResult(err)
		}
		return jsonResult(symbol)
	}
}

func listDocBlocksTool() mcp.Tool {
	return mcp.NewTool("list_doc_blocks",
		mcp.WithDescription("List doc blocks for a symbol."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithString("symbol_key", mcp.Required()),
		mcp.WithString("ingest_id", mcp.Description("Narrow results to one ingest")),
	)
}

func handleListDocBlocks(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		symbolKey, err := request.RequireString("symbol_key")
		if err != nil {
			return errResult(err)
		}
		blocks, err := plane.ListDocBlocks(projectID, symbolKey, request.GetString("ingest_id", ""))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(blocks)
	}
}

func getSymbolAdjacencyTool() mcp.Tool {
	return mcp.NewTool("get_symbol_adjacency",
		mcp.WithDescription("Fetch a symbol with doc metadata, relation edges, and related symbols."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithString("symbol_key", mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum edges per relation kind, default 200")),
	)
}

func handleGetSymbolAdjacency(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		symbolKey, err := request.RequireString("symbol_key")
		if err != nil {
			return errResult(err)
		}
		adjacency, err := plane.GetSymbolAdjacency(projectID, symbolKey, limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(adjacency)
	}
}

func searchSymbolsTool() mcp.Tool {
	return mcp.NewTool("search_symbols",
		mcp.WithDescription("Search symbols by name fragment."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithString("name", mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return, default 200")),
	)
}

func handleSearchSymbols(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		name, err := request.RequireString("name")
		if err != nil {
			return errResult(err)
		}
		symbols, err := plane.SearchSymbols(projectID, name, limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(symbols)
	}
}

func searchDocBlocksTool() mcp.Tool {
	return mcp.NewTool("search_doc_blocks",
		mcp.WithDescription("Search doc blocks by text fragment."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithString("text", mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return, default 200")),
	)
}

func handleSearchDocBlocks(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		text, err := request.RequireString("text")
		if err != nil {
			return errResult(err)
		}
		blocks, err := plane.SearchDocBlocks(projectID, text, limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(blocks)
	}
}

// searchSymbolsAdvancedTool is not present in the pulled tool sources (it is
// named only in the help text); it is wired here against the control plane's
// existing SearchSymbolsAdvanced, which already implements the multi-filter
// search the help text describes.
func searchSymbolsAdvancedTool() mcp.Tool {
	return mcp.NewTool("search_symbols_advanced",
		mcp.WithDescription("Search symbols by any combination of name, qualified name, exact key, or signature fragment."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithString("name"),
		mcp.WithString("qualified_name"),
		mcp.WithString("symbol_key"),
		mcp.WithString("signature"),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return, default 200")),
	)
}

func handleSearchSymbolsAdvanced(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		req := control.SearchSymbolsAdvancedRequest{
			Name:          request.GetString("name", ""),
			QualifiedName: request.GetString("qualified_name", ""),
			SymbolKey:     request.GetString("symbol_key", ""),
			Signature:     request.GetString("signature", ""),
		}
		result, err := plane.SearchSymbolsAdvanced(projectID, req, limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(result)
	}
}

// auditProjectCompletenessTool is likewise help-text-only in the pulled
// sources; it is wired against AuditProjectCompleteness.
func auditProjectCompletenessTool() mcp.Tool {
	return mcp.NewTool("audit_project_completeness",
		mcp.WithDescription("Report entity counts, missing-field counts, and per-relation edge counts for a project."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
	)
}

func handleAuditProjectCompleteness(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plane, projectID, err := planeAndProject(reg, request)
		if err != nil {
			return errResult(err)
		}
		audit, err := plane.AuditProjectCompleteness(projectID)
		if err != nil {
			return errResult(err)
		}
		return jsonResult(audit)
	}
}

// planeAndProject resolves both the solution and project_id parameters in
// one step, since every data tool needs both.
func planeAndProject(reg *registry.Registry, request mcp.CallToolRequest) (*control.Plane, string, error) {
	solution, err := request.RequireString("solution")
	if err != nil {
		return nil, "", err
	}
	plane, err := controlFor(reg, solution)
	if err != nil {
		return nil, "", err
	}
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return nil, "", err
	}
	return plane, projectID, nil
}
