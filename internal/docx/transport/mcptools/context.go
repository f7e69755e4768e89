package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// helpCommands is the help tool's payload, one short line per command,
// grounded on the original's HelpCommands default listing.
type helpCommands struct {
	Commands []string `json:"commands"`
}

func defaultHelpCommands() helpCommands {
	return helpCommands{Commands: []string{
		"help - List MCP commands to get context with how this MCP server works.",
		"version - Get the MCP server version.",
		"ingestion_help - Details how to send code documentation to the MCP server for ingestion.",
		"ingest_csharp_xml - Ingest .NET XML documentation into the solution store (xml or xml_path).",
		"ingest_rustdoc_json - Ingest rustdoc JSON output into the solution store (json or json_path).",
		"list_solutions - List solutions that currently have an open tenant handle.",
		"list_projects - List projects for a solution.",
		"search_projects - Search projects by case-insensitive substring of id, name, or alias (e.g. docx).",
		"list_ingests - List ingest metadata for a project.",
		"get_ingest - Fetch a specific ingest record by id.",
		"delete_solution - Delete an entire solution database.",
		"list_doc_sources - List document source metadata for a project.",
		"get_doc_source - Fetch a specific document source by id.",
		"list_symbol_types - List symbol kinds present in a project.",
		"search_symbols - Search symbols by name fragment.",
		"search_symbols_advanced - Search symbols by optional filters (name, qualified_name, symbol_key, signature).",
		"get_symbol - Fetch a symbol by its key.",
		"list_doc_blocks - List doc blocks for a symbol.",
		"search_doc_blocks - Search doc blocks by text fragment.",
		"get_symbol_adjacency - Fetch a symbol along with relation edges and related symbols.",
		"audit_project_completeness - Report per-project counts for symbols/docs/relations and missing source metadata.",
		"dotnet_help - Describes how .net solutions are processed and ingested.",
		"rust_help - Describes how rust solutions are processed and ingested.",
	}}
}

const ingestionHelpText = `
1. Use the MCP ingestion tools to send documentation payloads into the server.
2. Required fields for all ingest tools:
    - solution: the solution/tenant name managed by the MCP server.
    - project_id: the project or crate identifier inside the solution.
    - documentation payload: provide raw XML/JSON file contents (full text), or use *_path.
3. Optional metadata fields:
    - ingest_id: a caller-provided identifier to tag this ingest batch.
    - source_path: where the source documentation was generated.
    - source_modified_at: ISO-8601 timestamp for the source file.
    - tool_version: the tool version that produced the docs.
    - source_hash: a hash of the source documentation file.
4. Tool choices:
    - ingest_csharp_xml: use for raw .NET XML documentation payloads (xml or xml_path).
    - ingest_rustdoc_json: use for raw rustdoc JSON payloads (json or json_path).
5. Payload options (MCP tools and HTTP ingest):
    - Provide xml/json (raw file contents) or xml_path/json_path (server-local path).
      When both are given, the raw contents are used. Empty strings are treated as missing.
6. HTTP ingest endpoint (when MCP tool payloads are too large):
    - POST to /ingest with JSON payload:
      {
        "solution": "<solution>",
        "project_id": "<project_id>",
        "kind": "csharp_xml" | "rustdoc_json",
        "contents": "<raw file contents>",
        "contents_path": "<optional server path>",
        "ingest_id": "<optional>",
        "source_path": "<optional>",
        "source_modified_at": "<optional>",
        "tool_version": "<optional>",
        "source_hash": "<optional>"
      }
    - Required for HTTP ingest: solution, project_id, kind, and either contents or contents_path.
7. After ingestion, use the metadata and data tools to query projects, symbols, and doc blocks.
`

const dotnetHelpText = `
1. .net doc comments in XML format must be emitted from .net solution projects, by setting
   <GenerateDocumentationFile>true</GenerateDocumentationFile> in a Directory.Build.props or the project file.
   The XML is emitted beside the assembly, e.g. bin/Debug/net10.0/.
2. The XML files must then be sent to the MCP server for ingestion (kind=csharp_xml); see ingestion_help.
3. During ingestion, the symbols are normalized into the canonical symbol/doc/relation graph.
4. From the graph, the other MCP commands can query for information about the code and its relationships.
`

const rustHelpText = `
1. JSON rustdoc must be emitted from the Rust workspace using nightly (rustdoc JSON is unstable).
2. Example: cargo +nightly rustdoc -p <project> --lib -Z unstable-options --output-format json --document-private-items
   Per-workspace (Unix): RUSTDOCFLAGS="-Z unstable-options --output-format json" cargo doc --workspace --no-deps --document-private-items
3. The JSON files are sent to the MCP server for ingestion (kind=rustdoc_json); see ingestion_help.
4. During ingestion, symbols are normalized into the canonical symbol/doc/relation graph, queryable via the other tools.
`

func registerContextTools(srv *server.MCPServer, version string) {
	srv.AddTool(helpTool(), handleHelp())
	srv.AddTool(versionTool(), handleVersion(version))
	srv.AddTool(ingestionHelpTool(), handleStaticText(ingestionHelpText))
	srv.AddTool(dotnetHelpTool(), handleStaticText(dotnetHelpText))
	srv.AddTool(rustHelpTool(), handleStaticText(rustHelpText))
}

func helpTool() mcp.Tool {
	return mcp.NewTool("help",
		mcp.WithDescription("List the MCP commands to get context with how this MCP server works."),
	)
}

func handleHelp() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(defaultHelpCommands())
	}
}

func versionTool() mcp.Tool {
	return mcp.NewTool("version",
		mcp.WithDescription("Get the MCP server version."),
	)
}

func handleVersion(version string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(version)}}, nil
	}
}

func ingestionHelpTool() mcp.Tool {
	return mcp.NewTool("ingestion_help",
		mcp.WithDescription("Details how to send code documentation to the MCP server for ingestion."),
	)
}

func dotnetHelpTool() mcp.Tool {
	return mcp.NewTool("dotnet_help",
		mcp.WithDescription("Describes how .net solutions are processed and ingested."),
	)
}

func rustHelpTool() mcp.Tool {
	return mcp.NewTool("rust_help",
		mcp.WithDescription("Describes how rust solutions or crates are processed and ingested."),
	)
}

func handleStaticText(text string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(text)}}, nil
	}
}
