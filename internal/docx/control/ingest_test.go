package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/store"
)

func newTestPlane(t *testing.T) *Plane {
	t.Helper()
	s, err := store.Open(store.Options{Dir: t.TempDir()}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, arbor.NewLogger())
}

const csharpRoundtripXML = `<?xml version="1.0"?>
<doc>
  <assembly><name>Acme</name></assembly>
  <members>
    <member name="T:Acme.Foo">
      <summary>The Foo type.</summary>
    </member>
    <member name="M:Acme.Foo.Bar(System.String)">
      <summary>Does a thing.</summary>
      <param name="value">the input</param>
      <returns>Nothing.</returns>
      <exception cref="T:Acme.Foo">never actually thrown</exception>
      <seealso cref="T:Acme.Foo"/>
    </member>
  </members>
</doc>`

func TestIngestCsharpXMLRoundtrip(t *testing.T) {
	p := newTestPlane(t)

	report, err := p.IngestCsharpXML(CsharpIngestRequest{
		ProjectID:  "acme",
		XML:        csharpRoundtripXML,
		SourcePath: "Acme.xml",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", report.AssemblyName)
	assert.Equal(t, 2, report.SymbolCount)
	assert.Equal(t, 2, report.DocBlockCount)
	assert.Equal(t, 2, report.DocumentsEdgeCount)
	require.NotEmpty(t, report.DocSourceID)

	project, err := p.GetProject("acme")
	require.NoError(t, err)
	assert.Contains(t, project.Aliases, "Acme")

	fooKey := "csharp|acme|T:Acme.Foo"
	sym, err := p.GetSymbol("acme", fooKey)
	require.NoError(t, err)
	assert.Equal(t, "Foo", sym.Name)

	barKey := "csharp|acme|M:Acme.Foo.Bar(System.String)"
	adj, err := p.GetSymbolAdjacency("acme", barKey, 50)
	require.NoError(t, err)
	require.NotNil(t, adj.Symbol)
	assert.Empty(t, adj.MemberOf)
	require.Len(t, adj.SeeAlso, 1)
	assert.Equal(t, symbolRef(fooKey), adj.SeeAlso[0].OutID)
	require.Len(t, adj.References, 1)
	require.Len(t, adj.ObservedIn, 1)
	assert.Len(t, adj.DocSources, 1)
}

func TestIngestCsharpXMLRequiresPayload(t *testing.T) {
	p := newTestPlane(t)
	_, err := p.IngestCsharpXML(CsharpIngestRequest{ProjectID: "acme"})
	require.Error(t, err)
	assert.Equal(t, docxerr.InvalidInput, docxerr.KindOf(err))
}

const rustdocAdjacencyJSON = `{
  "root": "0",
  "index": {
    "0": {"id": "0", "crate_id": 0, "name": "mycrate", "docs": "", "inner": {"module": {"items": ["1", "2"]}}},
    "1": {
      "id": "1", "crate_id": 0, "name": "Foo", "docs": "A foo struct.",
      "inner": {"struct": {"kind": {"plain": {"fields": []}}, "generics": {"params": []}, "impls": []}}
    },
    "2": {
      "id": "2", "crate_id": 0, "name": "bar", "docs": "Returns a Foo.",
      "inner": {"function": {
        "sig": {"inputs": [], "output": {"resolved_path": {"name": "Foo", "id": "1", "args": {"angle_bracketed": {"args": []}}}}},
        "generics": {"params": []},
        "header": {"is_async": false, "is_const": false}
      }}
    }
  },
  "paths": {
    "0": {"crate_id": 0, "path": ["mycrate"]},
    "1": {"crate_id": 0, "path": ["mycrate", "Foo"]},
    "2": {"crate_id": 0, "path": ["mycrate", "bar"]}
  }
}`

func TestIngestRustdocJSONAdjacency(t *testing.T) {
	p := newTestPlane(t)

	report, err := p.IngestRustdocJSON(RustdocIngestRequest{
		ProjectID: "mycrate",
		JSON:      rustdocAdjacencyJSON,
	})
	require.NoError(t, err)
	assert.Equal(t, "mycrate", report.CrateName)
	assert.Equal(t, 2, report.SymbolCount)
	assert.Equal(t, 2, report.DocBlockCount)
	assert.Empty(t, report.DocSourceID)

	barKey := "rust|mycrate|mycrate::bar"
	adj, err := p.GetSymbolAdjacency("mycrate", barKey, 50)
	require.NoError(t, err)
	require.Len(t, adj.Returns, 1)
	assert.Equal(t, symbolRef("rust|mycrate|mycrate::Foo"), adj.Returns[0].OutID)
	require.Len(t, adj.RelatedSymbols, 2)
	assert.Equal(t, "rust|mycrate|mycrate::Foo", adj.RelatedSymbols[0].SymbolKey)
}

func TestIngestDanglingSeeAlsoDropped(t *testing.T) {
	p := newTestPlane(t)

	xml := `<doc><members>
    <member name="T:Acme.Foo">
      <summary>S</summary>
      <seealso cref="T:Acme.NeverIngested"/>
    </member>
  </members></doc>`

	_, err := p.IngestCsharpXML(CsharpIngestRequest{ProjectID: "acme", XML: xml})
	require.NoError(t, err)

	adj, err := p.GetSymbolAdjacency("acme", "csharp|acme|T:Acme.Foo", 50)
	require.NoError(t, err)
	assert.Empty(t, adj.SeeAlso)
}

func TestGetSymbolAdjacencyMissingSymbolReturnsEmpty(t *testing.T) {
	p := newTestPlane(t)
	adj, err := p.GetSymbolAdjacency("acme", "csharp|acme|T:Nope", 10)
	require.NoError(t, err)
	assert.Nil(t, adj.Symbol)
}
