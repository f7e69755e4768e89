package mcptools

import (
	"context"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/registry"
)

func registerMetadataTools(srv *server.MCPServer, reg *registry.Registry, logger arbor.ILogger) {
	srv.AddTool(listSolutionsTool(), handleListSolutions(reg))
	srv.AddTool(listProjectsTool(), handleListProjects(reg))
	srv.AddTool(searchProjectsTool(), handleSearchProjects(reg))
	srv.AddTool(listIngestsTool(), handleListIngests(reg))
	srv.AddTool(getIngestTool(), handleGetIngest(reg))
	srv.AddTool(listDocSourcesTool(), handleListDocSources(reg))
	srv.AddTool(getDocSourceTool(), handleGetDocSource(reg))
	srv.AddTool(deleteSolutionTool(), handleDeleteSolution(reg, logger))
}

func listSolutionsTool() mcp.Tool {
	return mcp.NewTool("list_solutions",
		mcp.WithDescription("List every solution that currently has an open tenant handle."),
	)
}

// handleListSolutions reports tenants the registry has actually built a
// handle for, not every solution a caller might ever address. Nothing in
// this codebase tracks a fixed roster of solution names up front; each one
// comes into existence the first time a tool addresses it.
func handleListSolutions(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		solutions := reg.ListTenants()
		sort.Strings(solutions)
		return jsonResult(solutions)
	}
}

func listProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List projects for a solution."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return, default 200")),
	)
}

func handleListProjects(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		solution, err := request.RequireString("solution")
		if err != nil {
			return errResult(err)
		}
		plane, err := controlFor(reg, solution)
		if err != nil {
			return errResult(err)
		}
		projects, err := plane.ListProjects(limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(projects)
	}
}

func searchProjectsTool() mcp.Tool {
	return mcp.NewTool("search_projects",
		mcp.WithDescription("Search projects by case-insensitive substring of id, name, or alias (e.g. DL)."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("pattern", mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return, default 200")),
	)
}

func handleSearchProjects(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		solution, err := request.RequireString("solution")
		if err != nil {
			return errResult(err)
		}
		plane, err := controlFor(reg, solution)
		if err != nil {
			return errResult(err)
		}
		pattern, err := request.RequireString("pattern")
		if err != nil {
			return errResult(err)
		}
		projects, err := plane.SearchProjects(pattern, limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(projects)
	}
}

func listIngestsTool() mcp.Tool {
	return mcp.NewTool("list_ingests",
		mcp.WithDescription("List ingests for a project."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return, default 200")),
	)
}

func handleListIngests(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		solution, err := request.RequireString("solution")
		if err != nil {
			return errResult(err)
		}
		plane, err := controlFor(reg, solution)
		if err != nil {
			return errResult(err)
		}
		projectID, err := request.RequireString("project_id")
		if err != nil {
			return errResult(err)
		}
		ingests, err := plane.ListIngests(projectID, limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(ingests)
	}
}

func getIngestTool() mcp.Tool {
	return mcp.NewTool("get_ingest",
		mcp.WithDescription("Fetch an ingest by id."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("ingest_id", mcp.Required()),
	)
}

func handleGetIngest(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		solution, err := request.RequireString("solution")
		if err != nil {
			return errResult(err)
		}
		plane, err := controlFor(reg, solution)
		if err != nil {
			return errResult(err)
		}
		ingestID, err := request.RequireString("ingest_id")
		if err != nil {
			return errResult(err)
		}
		ingest, err := plane.GetIngest(ingestID)
		if err != nil {
			return errResult(err)
		}
		return jsonResult(ingest)
	}
}

func listDocSourcesTool() mcp.Tool {
	return mcp.NewTool("list_doc_sources",
		mcp.WithDescription("List document sources for a project."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("project_id", mcp.Required()),
		mcp.WithString("ingest_id", mcp.Description("Narrow results to one ingest")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return, default 200")),
	)
}

func handleListDocSources(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		solution, err := request.RequireString("solution")
		if err != nil {
			return errResult(err)
		}
		plane, err := controlFor(reg, solution)
		if err != nil {
			return errResult(err)
		}
		projectID, err := request.RequireString("project_id")
		if err != nil {
			return errResult(err)
		}
		sources, err := plane.ListDocSources(projectID, request.GetString("ingest_id", ""), limitOrDefault(request))
		if err != nil {
			return errResult(err)
		}
		return jsonResult(sources)
	}
}

func getDocSourceTool() mcp.Tool {
	return mcp.NewTool("get_doc_source",
		mcp.WithDescription("Fetch a document source by id."),
		mcp.WithString("solution", mcp.Required()),
		mcp.WithString("doc_source_id", mcp.Required()),
	)
}

func handleGetDocSource(reg *registry.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		solution, err := request.RequireString("solution")
		if err != nil {
			return errResult(err)
		}
		plane, err := controlFor(reg, solution)
		if err != nil {
			return errResult(err)
		}
		docSourceID, err := request.RequireString("doc_source_id")
		if err != nil {
			return errResult(err)
		}
		source, err := plane.GetDocSource(docSourceID)
		if err != nil {
			return errResult(err)
		}
		return jsonResult(source)
	}
}

// deleteSolutionTool is named only in the help text among the pulled tool
// sources; it is wired here against Registry.DeleteTenant, which backs the
// "drops the entire tenant database" behavior the help text promises.
func deleteSolutionTool() mcp.Tool {
	return mcp.NewTool("delete_solution",
		mcp.WithDescription("Drop a solution's entire tenant database, including its disk state."),
		mcp.WithString("solution", mcp.Required()),
	)
}

func handleDeleteSolution(reg *registry.Registry, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		solution, err := request.RequireString("solution")
		if err != nil {
			return errResult(err)
		}
		if err := reg.DeleteTenant(solution); err != nil {
			return errResult(err)
		}
		logger.Info().Str("solution", solution).Msg("solution deleted")
		return jsonResult(map[string]any{"solution": solution, "deleted": true})
	}
}
