package parserust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleCrateJSON mirrors the minimal shape rustdoc emits for a crate with
// a public struct and a function returning it.
const sampleCrateJSON = `{
  "root": "0",
  "index": {
    "0": {
      "id": "0",
      "crate_id": 0,
      "name": "mycrate",
      "docs": "",
      "inner": {"module": {"items": ["1", "2"]}}
    },
    "1": {
      "id": "1",
      "crate_id": 0,
      "name": "Foo",
      "docs": "A foo struct.",
      "inner": {"struct": {"kind": {"plain": {"fields": []}}, "generics": {"params": []}, "impls": []}}
    },
    "2": {
      "id": "2",
      "crate_id": 0,
      "name": "bar",
      "docs": "Returns a Foo.\n\n# Returns\n\nA new Foo.",
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

func TestParseStructAndFunction(t *testing.T) {
	out, err := Parse([]byte(sampleCrateJSON), "p1", Options{})
	require.NoError(t, err)
	assert.Equal(t, "mycrate", out.CrateName)
	require.Len(t, out.Symbols, 2)
	require.Len(t, out.DocBlocks, 2)

	foo := out.Symbols[0]
	assert.Equal(t, "struct", foo.Kind)
	assert.Equal(t, "mycrate::Foo", foo.QualifiedName)
	assert.Equal(t, "rust|p1|mycrate::Foo", foo.SymbolKey)
	assert.Equal(t, "A foo struct.", foo.DocSummary)

	bar := out.Symbols[1]
	assert.Equal(t, "function", bar.Kind)
	assert.Equal(t, "mycrate::bar", bar.QualifiedName)
	assert.Equal(t, "Returns a Foo.", bar.DocSummary)
	assert.Equal(t, "fn bar() -> Foo", bar.Signature)

	require.NotNil(t, bar.ReturnType)
	assert.Equal(t, "Foo", bar.ReturnType.Display)
	assert.Equal(t, foo.SymbolKey, bar.ReturnType.SymbolKey)

	assert.Equal(t, "A new Foo.", out.DocBlocks[1].Returns)
}

// sampleImplJSON adds a trait impl on the struct so the method-nesting and
// TraitImpls bookkeeping both get exercised.
const sampleImplJSON = `{
  "root": "0",
  "index": {
    "0": {"id": "0", "crate_id": 0, "name": "mycrate", "docs": "", "inner": {"module": {"items": ["1"]}}},
    "1": {
      "id": "1", "crate_id": 0, "name": "Foo", "docs": "",
      "inner": {"struct": {"kind": {"plain": {"fields": []}}, "generics": {"params": []}, "impls": ["2"]}}
    },
    "2": {
      "id": "2", "crate_id": 0, "name": "", "docs": "",
      "inner": {"impl": {
        "trait": {"name": "Display", "id": "99"},
        "for": {"resolved_path": {"name": "Foo", "id": "1", "args": {"angle_bracketed": {"args": []}}}},
        "items": ["4"]
      }}
    },
    "4": {
      "id": "4", "crate_id": 0, "name": "fmt", "docs": "",
      "inner": {"function": {
        "sig": {"inputs": [], "output": null},
        "generics": {"params": []},
        "header": {"is_async": false, "is_const": false}
      }}
    }
  },
  "paths": {
    "0": {"crate_id": 0, "path": ["mycrate"]},
    "1": {"crate_id": 0, "path": ["mycrate", "Foo"]}
  }
}`

func TestParseTraitImplAndNestedMethod(t *testing.T) {
	out, err := Parse([]byte(sampleImplJSON), "p1", Options{})
	require.NoError(t, err)

	require.Len(t, out.Symbols, 2)
	method := out.Symbols[1]
	assert.Equal(t, "method", method.Kind)
	assert.Equal(t, "mycrate::Foo::fmt", method.QualifiedName)
	assert.Equal(t, "fn fmt()", method.Signature)

	require.Contains(t, out.TraitImpls, "mycrate::Foo")
	assert.Contains(t, out.TraitImpls["mycrate::Foo"], "Display")
}

func TestParseMarkdownDocsExtractsSeeAlso(t *testing.T) {
	docs := "Does something.\n\n# See Also\n\n- [`other::Thing`](other::Thing)\n- other::Other\n"
	parsed := parseMarkdownDocs(docs)

	assert.Equal(t, "Does something.", parsed.Summary)
	require.Len(t, parsed.SeeAlso, 2)
	assert.Equal(t, "`other::Thing`", parsed.SeeAlso[0].Label)
	assert.Equal(t, "other::Thing", parsed.SeeAlso[0].Target)
	assert.Equal(t, "", parsed.SeeAlso[1].Label)
	assert.Equal(t, "other::Other", parsed.SeeAlso[1].Target)
}

func TestParseMarkdownDocsExtractsExamplesAndNotes(t *testing.T) {
	docs := "Summary line.\n\n# Examples\n\n```rust\nlet x = 1;\n```\n\n# Notes\n\n- careful with overflow\n"
	parsed := parseMarkdownDocs(docs)

	require.Len(t, parsed.Examples, 1)
	assert.Equal(t, "rust", parsed.Examples[0].Lang)
	assert.Equal(t, "let x = 1;", parsed.Examples[0].Code)

	require.Len(t, parsed.Notes, 1)
	assert.Equal(t, "careful with overflow", parsed.Notes[0])
}

func TestTypeToStringRendersCompositeKinds(t *testing.T) {
	ref := &typeNode{Kind: "borrowed_ref", Mutable: true, Pointee: &typeNode{Kind: "generic", GenericName: "T"}}
	assert.Equal(t, "&mut T", typeToString(ref))

	arr := &typeNode{Kind: "array", Len: "4", Pointee: &typeNode{Kind: "primitive", Primitive: "u8"}}
	assert.Equal(t, "[u8; 4]", typeToString(arr))

	tuple := &typeNode{Kind: "tuple", Elems: []typeNode{
		{Kind: "primitive", Primitive: "u8"},
		{Kind: "primitive", Primitive: "bool"},
	}}
	assert.Equal(t, "(u8, bool)", typeToString(tuple))
}
