package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

func buildTestSymbol(projectID, key string) model.Symbol {
	return model.Symbol{ProjectID: projectID, SymbolKey: key, Language: "csharp"}
}

func buildTestDocBlock(projectID, symbolKey string) model.DocBlock {
	return model.DocBlock{
		ID: "block-1", ProjectID: projectID, SymbolKey: symbolKey,
		Language: "csharp", SourceKind: model.SourceKindCsharpXML,
	}
}

func TestDedupeSymbolsKeepsFirstPerKey(t *testing.T) {
	first := buildTestSymbol("docx", "csharp|docx|T:Foo")
	first.Name = "first"
	duplicate := buildTestSymbol("docx", "csharp|docx|T:Foo")
	duplicate.Name = "second"
	other := buildTestSymbol("docx", "csharp|docx|T:Bar")

	deduped := dedupeSymbols([]model.Symbol{first, duplicate, other})

	require.Len(t, deduped, 2)
	assert.Equal(t, first.SymbolKey, deduped[0].SymbolKey)
	assert.Equal(t, "first", deduped[0].Name)
	assert.Equal(t, other.SymbolKey, deduped[1].SymbolKey)
}

func TestBuildObservedInEdgesLinksSymbolsToDocSource(t *testing.T) {
	symbols := []model.Symbol{
		buildTestSymbol("docx", "csharp|docx|T:Foo"),
		buildTestSymbol("docx", "csharp|docx|T:Bar"),
	}

	edges := buildObservedInEdges(symbols, "docx", "ing-1", "source-1")

	require.Len(t, edges, 2)
	assert.Equal(t, symbolRef("csharp|docx|T:Foo"), edges[0].InID)
	assert.Equal(t, model.RecordRef(model.TableDocSource, "source-1"), edges[0].OutID)
	assert.Equal(t, "ing-1", edges[0].IngestID)
	assert.Equal(t, "doc_source", edges[0].Kind)
}

func TestBuildDocBlockRelationsExtractsCsharpReferences(t *testing.T) {
	projectID := "docx"
	fooKey := model.MakeCsharpSymbolKey(projectID, "T:Foo")
	barKey := model.MakeCsharpSymbolKey(projectID, "T:Bar")

	symbols := []model.Symbol{
		buildTestSymbol(projectID, fooKey),
		buildTestSymbol(projectID, barKey),
	}

	block := buildTestDocBlock(projectID, fooKey)
	block.SeeAlso = append(block.SeeAlso, model.SeeAlso{Label: "Bar", Target: "T:Bar", TargetKind: "cref"})
	block.InheritDoc = &model.DocInherit{Cref: "T:Bar"}
	block.Exceptions = append(block.Exceptions, model.DocException{
		TypeRef: &model.TypeRef{Display: "Bar", Canonical: "Bar", Language: "csharp", SymbolKey: barKey},
	})

	rel := buildDocBlockRelations(symbols, []model.DocBlock{block}, projectID, "")

	require.Len(t, rel.seeAlso, 1)
	require.Len(t, rel.inherits, 1)
	require.Len(t, rel.references, 1)

	targetRef := symbolRef(barKey)
	assert.Equal(t, targetRef, rel.seeAlso[0].OutID)
	assert.Equal(t, "cref", rel.seeAlso[0].Kind)
	assert.Equal(t, "inheritdoc", rel.inherits[0].Kind)
	assert.Equal(t, "exception", rel.references[0].Kind)
}

func TestBuildDocBlockRelationsDropsDanglingSeeAlso(t *testing.T) {
	projectID := "docx"
	fooKey := model.MakeCsharpSymbolKey(projectID, "T:Foo")
	symbols := []model.Symbol{buildTestSymbol(projectID, fooKey)}

	block := buildTestDocBlock(projectID, fooKey)
	block.SeeAlso = append(block.SeeAlso, model.SeeAlso{Target: "T:NeverIngested", TargetKind: "cref"})

	rel := buildDocBlockRelations(symbols, []model.DocBlock{block}, projectID, "")

	assert.Empty(t, rel.seeAlso)
}

func TestBuildSymbolRelationsDerivesMembershipReturnsAndParamTypes(t *testing.T) {
	projectID := "p1"
	parent := model.Symbol{ProjectID: projectID, SymbolKey: "k:Acme.Foo", QualifiedName: "Acme::Foo"}
	ret := model.Symbol{ProjectID: projectID, SymbolKey: "k:Acme.Bar", QualifiedName: "Acme::Bar"}
	child := model.Symbol{
		ProjectID: projectID, SymbolKey: "k:Acme.Foo.Method", QualifiedName: "Acme::Foo::Method",
		ReturnType: &model.TypeRef{SymbolKey: "k:Acme.Bar"},
		Params:     []model.Param{{Name: "value", TypeRef: &model.TypeRef{SymbolKey: "k:Acme.Bar"}}},
	}

	rel := buildSymbolRelations([]model.Symbol{parent, ret, child}, projectID, "", nil)

	require.Len(t, rel.memberOf, 1)
	assert.Equal(t, symbolRef(child.SymbolKey), rel.memberOf[0].InID)
	assert.Equal(t, symbolRef(parent.SymbolKey), rel.memberOf[0].OutID)

	require.Len(t, rel.contains, 1)
	assert.Equal(t, symbolRef(parent.SymbolKey), rel.contains[0].InID)
	assert.Equal(t, symbolRef(child.SymbolKey), rel.contains[0].OutID)

	require.Len(t, rel.returns, 1)
	assert.Equal(t, symbolRef(ret.SymbolKey), rel.returns[0].OutID)

	require.Len(t, rel.paramTypes, 1)
	assert.Equal(t, "value", rel.paramTypes[0].Kind)
}

func TestBuildSymbolRelationsDerivesImplementsFromTraitImpls(t *testing.T) {
	projectID := "p1"
	impl := model.Symbol{ProjectID: projectID, SymbolKey: model.MakeRustSymbolKey(projectID, "mycrate::Foo"), QualifiedName: "mycrate::Foo"}
	trait := model.Symbol{ProjectID: projectID, SymbolKey: model.MakeRustSymbolKey(projectID, "mycrate::Display"), QualifiedName: "mycrate::Display"}
	traitImpls := map[string][]string{"mycrate::Foo": {"mycrate::Display"}}

	rel := buildSymbolRelations([]model.Symbol{impl, trait}, projectID, "", traitImpls)

	require.Len(t, rel.implements, 1)
	assert.Equal(t, symbolRef(trait.SymbolKey), rel.implements[0].OutID)
	assert.Equal(t, "trait_impl", rel.implements[0].Kind)
}
