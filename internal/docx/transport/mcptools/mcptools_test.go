package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/registry"
	"github.com/ternarybob/docx-mcp/internal/docx/store"
)

const testCsharpXML = `<doc><members>
  <member name="T:Acme.Foo"><summary>The Foo type.</summary></member>
</members></doc>`

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	build := func(tenantID string) (*registry.Handle, error) {
		s, err := store.Open(store.Options{Dir: t.TempDir()}, arbor.NewLogger())
		if err != nil {
			return nil, err
		}
		t.Cleanup(func() { _ = s.Close() })
		return &registry.Handle{Store: s, Control: control.New(s, arbor.NewLogger())}, nil
	}
	return registry.New(registry.Config{Build: build}, arbor.NewLogger())
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestIngestCsharpXMLToolRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	handler := handleIngestCsharpXML(reg, arbor.NewLogger())

	result, err := handler(context.Background(), callRequest(map[string]any{
		"solution": "s1", "project_id": "acme", "xml": testCsharpXML,
	}))
	require.NoError(t, err)

	var report control.CsharpIngestReport
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &report))
	assert.Equal(t, 1, report.SymbolCount)
	assert.Equal(t, "acme", report.AssemblyName)
}

func TestIngestCsharpXMLToolMissingSolutionErrors(t *testing.T) {
	reg := newTestRegistry(t)
	handler := handleIngestCsharpXML(reg, arbor.NewLogger())

	result, err := handler(context.Background(), callRequest(map[string]any{
		"project_id": "acme", "xml": testCsharpXML,
	}))
	require.NoError(t, err)
	assert.Contains(t, textOf(t, result), "Error:")
}

func TestDataToolsAgainstIngestedProject(t *testing.T) {
	reg := newTestRegistry(t)
	handle, err := reg.GetOrInit("s1")
	require.NoError(t, err)
	_, err = handle.Control.IngestCsharpXML(control.CsharpIngestRequest{ProjectID: "acme", XML: testCsharpXML})
	require.NoError(t, err)

	t.Run("list_symbol_types", func(t *testing.T) {
		result, err := handleListSymbolTypes(reg)(context.Background(), callRequest(map[string]any{
			"solution": "s1", "project_id": "acme",
		}))
		require.NoError(t, err)
		var kinds []string
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &kinds))
		assert.NotEmpty(t, kinds)
	})

	t.Run("search_symbols", func(t *testing.T) {
		result, err := handleSearchSymbols(reg)(context.Background(), callRequest(map[string]any{
			"solution": "s1", "project_id": "acme", "name": "Foo",
		}))
		require.NoError(t, err)
		var symbols []map[string]any
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &symbols))
		assert.Len(t, symbols, 1)
	})

	t.Run("get_symbol", func(t *testing.T) {
		result, err := handleGetSymbol(reg)(context.Background(), callRequest(map[string]any{
			"solution": "s1", "project_id": "acme", "symbol_key": "T:Acme.Foo",
		}))
		require.NoError(t, err)
		assert.Contains(t, textOf(t, result), "Acme.Foo")
	})

	t.Run("search_symbols_advanced_requires_a_filter", func(t *testing.T) {
		result, err := handleSearchSymbolsAdvanced(reg)(context.Background(), callRequest(map[string]any{
			"solution": "s1", "project_id": "acme",
		}))
		require.NoError(t, err)
		assert.Contains(t, textOf(t, result), "Error:")
	})

	t.Run("audit_project_completeness", func(t *testing.T) {
		result, err := handleAuditProjectCompleteness(reg)(context.Background(), callRequest(map[string]any{
			"solution": "s1", "project_id": "acme",
		}))
		require.NoError(t, err)
		var audit control.ProjectCompletenessAudit
		require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &audit))
		assert.Equal(t, 1, audit.SymbolCount)
	})
}

func TestMetadataToolsListAndDeleteSolution(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.GetOrInit("s1")
	require.NoError(t, err)

	result, err := handleListSolutions(reg)(context.Background(), callRequest(nil))
	require.NoError(t, err)
	var solutions []string
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &solutions))
	assert.Contains(t, solutions, "s1")

	delResult, err := handleDeleteSolution(reg, arbor.NewLogger())(context.Background(), callRequest(map[string]any{
		"solution": "s1",
	}))
	require.NoError(t, err)
	assert.Contains(t, textOf(t, delResult), "s1")

	result, err = handleListSolutions(reg)(context.Background(), callRequest(nil))
	require.NoError(t, err)
	solutions = nil
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &solutions))
	assert.NotContains(t, solutions, "s1")
}

func TestHelpAndVersionTools(t *testing.T) {
	result, err := handleHelp()(context.Background(), callRequest(nil))
	require.NoError(t, err)
	var commands helpCommands
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &commands))
	assert.NotEmpty(t, commands.Commands)

	versionResult, err := handleVersion("1.2.3")(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", textOf(t, versionResult))
}

func TestBuildRegistersAllTools(t *testing.T) {
	reg := newTestRegistry(t)
	srv := Build(reg, arbor.NewLogger(), "test-version")
	assert.NotNil(t, srv)
}
