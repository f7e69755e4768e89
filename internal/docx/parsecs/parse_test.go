package parsecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0"?>
<doc>
  <assembly><name>Acme</name></assembly>
  <members>
    <member name="T:Acme.Foo">
      <summary>S</summary>
    </member>
    <member name="M:Acme.Foo.Bar(System.String)">
      <summary>Does a thing with <paramref name="value"/>.</summary>
      <param name="value">the input</param>
      <returns>Nothing.</returns>
      <exception cref="T:System.ArgumentException">when value is bad</exception>
      <seealso cref="T:Acme.Foo"/>
    </member>
  </members>
</doc>`

func TestParseRoundtrip(t *testing.T) {
	out, err := Parse([]byte(sampleXML), "p1", Options{})
	require.NoError(t, err)

	assert.Equal(t, "Acme", out.AssemblyName)
	require.Len(t, out.Symbols, 2)
	require.Len(t, out.DocBlocks, 2)

	foo := out.Symbols[0]
	assert.Equal(t, "csharp|p1|T:Acme.Foo", foo.SymbolKey)
	assert.Equal(t, "type", foo.Kind)
	assert.Equal(t, "Acme.Foo", foo.QualifiedName)
	assert.Equal(t, "Foo", foo.Name)
	assert.Equal(t, "S", out.DocBlocks[0].Summary)
	assert.Equal(t, "S", foo.DocSummary)

	bar := out.Symbols[1]
	assert.Equal(t, "method", bar.Kind)
	assert.Equal(t, "Acme.Foo.Bar", bar.QualifiedName)
	assert.Equal(t, "(System.String)", bar.Signature)

	block := out.DocBlocks[1]
	assert.Contains(t, block.Summary, "`value`")
	require.Len(t, block.Params, 1)
	assert.Equal(t, "value", block.Params[0].Name)
	require.Len(t, block.Exceptions, 1)
	assert.Equal(t, "T:System.ArgumentException", block.Exceptions[0].TypeRef.Canonical)
	require.Len(t, block.SeeAlso, 1)
	assert.Equal(t, "T:Acme.Foo", block.SeeAlso[0].Target)
}

func TestParseDocBlockRawIsVerbatimSlice(t *testing.T) {
	xml := `<doc><members><member name="T:Acme.Foo"><summary>S</summary></member></members></doc>`

	out, err := Parse([]byte(xml), "p1", Options{})
	require.NoError(t, err)
	require.Len(t, out.DocBlocks, 1)
	assert.Equal(t, `<member name="T:Acme.Foo"><summary>S</summary></member>`, out.DocBlocks[0].Raw)
}

func TestParseDocBlockRawPreservesEachMemberIndependently(t *testing.T) {
	out, err := Parse([]byte(sampleXML), "p1", Options{})
	require.NoError(t, err)
	require.Len(t, out.DocBlocks, 2)

	assert.Equal(t, "<member name=\"T:Acme.Foo\">\n      <summary>S</summary>\n    </member>", out.DocBlocks[0].Raw)
	assert.Contains(t, out.DocBlocks[1].Raw, `name="M:Acme.Foo.Bar(System.String)"`)
	assert.Contains(t, out.DocBlocks[1].Raw, "<seealso")
	assert.NotContains(t, out.DocBlocks[0].Raw, "Bar")
}

func TestParseCodeBlockPreserved(t *testing.T) {
	xml := `<doc><members><member name="M:A.B">
		<summary>Example:
<code>
line1
   line2
</code>
done.</summary>
	</member></members></doc>`

	out, err := Parse([]byte(xml), "p1", Options{})
	require.NoError(t, err)
	require.Len(t, out.DocBlocks, 1)
	assert.Contains(t, out.DocBlocks[0].Summary, "line1\n   line2")
}

func TestExtractSimpleName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme.Foo", "Foo"},
		{"Acme.Foo+Inner", "Inner"},
		{"Acme.Foo#System.IDisposable.Dispose", "Dispose"},
		{"Foo", "Foo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractSimpleName(tt.in))
	}
}

func TestParseDocID(t *testing.T) {
	parts := parseDocID("M:Acme.Foo.Bar(System.String,System.Int32)")
	assert.Equal(t, "method", parts.Kind)
	assert.Equal(t, "Acme.Foo.Bar", parts.QualifiedName)
	assert.Equal(t, "(System.String,System.Int32)", parts.Signature)

	parts = parseDocID("N:Acme")
	assert.Equal(t, "namespace", parts.Kind)
	assert.Equal(t, "Acme", parts.QualifiedName)
}
