package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/registry"
)

func registerIngestTools(srv *server.MCPServer, reg *registry.Registry, logger arbor.ILogger) {
	srv.AddTool(ingestCsharpXMLTool(), handleIngestCsharpXML(reg, logger))
	srv.AddTool(ingestRustdocJSONTool(), handleIngestRustdocJSON(reg, logger))
}

func ingestCsharpXMLTool() mcp.Tool {
	return mcp.NewTool("ingest_csharp_xml",
		mcp.WithDescription("Ingest C# XML documentation into the solution store."),
		mcp.WithString("solution", mcp.Required(), mcp.Description("Tenant/solution name")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project scope (assembly name)")),
		mcp.WithString("xml", mcp.Description("Raw C# XML documentation content")),
		mcp.WithString("xml_path", mcp.Description("Path to the XML file, when xml is not inlined")),
		mcp.WithString("ingest_id", mcp.Description("Caller-supplied ingest id, scoped to the project")),
		mcp.WithString("source_path", mcp.Description("Source file path for provenance")),
		mcp.WithString("source_modified_at", mcp.Description("Source file modification timestamp")),
		mcp.WithString("tool_version", mcp.Description("Version of the tool that produced the XML")),
		mcp.WithString("source_hash", mcp.Description("Content hash for provenance")),
	)
}

func handleIngestCsharpXML(reg *registry.Registry, logger arbor.ILogger) server.ToolHandlerFunc {
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

		report, err := plane.IngestCsharpXML(control.CsharpIngestRequest{
			ProjectID:        projectID,
			XML:              request.GetString("xml", ""),
			XMLPath:          request.GetString("xml_path", ""),
			IngestID:         request.GetString("ingest_id", ""),
			SourcePath:       request.GetString("source_path", ""),
			SourceModifiedAt: request.GetString("source_modified_at", ""),
			ToolVersion:      request.GetString("tool_version", ""),
			SourceHash:       request.GetString("source_hash", ""),
		})
		if err != nil {
			logger.Error().Err(err).Str("solution", solution).Msg("ingest_csharp_xml failed")
			return errResult(err)
		}
		return jsonResult(report)
	}
}

func ingestRustdocJSONTool() mcp.Tool {
	return mcp.NewTool("ingest_rustdoc_json",
		mcp.WithDescription("Ingest rustdoc JSON documentation into the solution store."),
		mcp.WithString("solution", mcp.Required(), mcp.Description("Tenant/solution name")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project scope (crate name)")),
		mcp.WithString("json", mcp.Description("Raw rustdoc JSON content")),
		mcp.WithString("json_path", mcp.Description("Path to the rustdoc JSON file, when json is not inlined")),
		mcp.WithString("ingest_id", mcp.Description("Caller-supplied ingest id, scoped to the project")),
		mcp.WithString("source_path", mcp.Description("Source file path for provenance")),
		mcp.WithString("source_modified_at", mcp.Description("Source file modification timestamp")),
		mcp.WithString("tool_version", mcp.Description("Version of the tool that produced the JSON")),
		mcp.WithString("source_hash", mcp.Description("Content hash for provenance")),
	)
}

func handleIngestRustdocJSON(reg *registry.Registry, logger arbor.ILogger) server.ToolHandlerFunc {
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

		report, err := plane.IngestRustdocJSON(control.RustdocIngestRequest{
			ProjectID:        projectID,
			JSON:             request.GetString("json", ""),
			JSONPath:         request.GetString("json_path", ""),
			IngestID:         request.GetString("ingest_id", ""),
			SourcePath:       request.GetString("source_path", ""),
			SourceModifiedAt: request.GetString("source_modified_at", ""),
			ToolVersion:      request.GetString("tool_version", ""),
			SourceHash:       request.GetString("source_hash", ""),
		})
		if err != nil {
			logger.Error().Err(err).Str("solution", solution).Msg("ingest_rustdoc_json failed")
			return errResult(err)
		}
		return jsonResult(report)
	}
}
