package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{Dir: t.TempDir()}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertAndGetSymbolScopedToProject(t *testing.T) {
	s := openTestStore(t)

	sym := model.Symbol{ProjectID: "p1", Language: "csharp", SymbolKey: "csharp|p1|T:Acme.Foo", Kind: "type", Name: "Foo"}
	_, err := s.UpsertSymbol(sym)
	require.NoError(t, err)

	got, err := s.GetSymbol("p1", "csharp|p1|T:Acme.Foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo", got.Name)

	_, err = s.GetSymbol("p2", "csharp|p1|T:Acme.Foo")
	assert.Error(t, err)
	assert.Equal(t, docxerr.NotFound, docxerr.KindOf(err))
}

func TestUpsertSymbolRequiresKey(t *testing.T) {
	s := openTestStore(t)
	_, err := s.UpsertSymbol(model.Symbol{ProjectID: "p1"})
	require.Error(t, err)
	assert.Equal(t, docxerr.InvalidInput, docxerr.KindOf(err))
}

func TestCreateIngestScopesID(t *testing.T) {
	s := openTestStore(t)

	in, err := s.CreateIngest(model.Ingest{ProjectID: "p1"}, "r")
	require.NoError(t, err)
	assert.Equal(t, "p1::r", in.ID)
	assert.Equal(t, "r", in.Extra["requested_ingest_id"])
}

func TestGetIngestAmbiguousBareID(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateIngest(model.Ingest{ProjectID: "p1"}, "r")
	require.NoError(t, err)
	_, err = s.CreateIngest(model.Ingest{ProjectID: "p2"}, "r")
	require.NoError(t, err)

	_, err = s.GetIngest("r")
	require.Error(t, err)
	assert.Equal(t, docxerr.InvalidInput, docxerr.KindOf(err))

	got, err := s.GetIngest("p1::r")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ProjectID)
}

func TestCreateRelationValidatesTableAndRefs(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateRelation(NewRelation{
		Table: "not_a_table", InID: "symbol:a", OutID: "symbol:b", ProjectID: "p1",
	})
	require.Error(t, err)
	assert.Equal(t, docxerr.InvalidInput, docxerr.KindOf(err))

	_, err = s.CreateRelation(NewRelation{
		Table: model.RelContains, InID: "bad-ref", OutID: "symbol:b", ProjectID: "p1",
	})
	require.Error(t, err)

	rec, err := s.CreateRelation(NewRelation{
		Table: model.RelContains, InID: "symbol:a", OutID: "symbol:b", ProjectID: "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RelContains, rec.Kind)
}

func TestFetchSymbolAdjacencyMergesDirectionsAndDedupes(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateRelation(NewRelation{
		Table: model.RelReturns, InID: "symbol:a", OutID: "symbol:b", ProjectID: "p1",
	})
	require.NoError(t, err)
	_, err = s.CreateRelation(NewRelation{
		Table: model.RelReturns, InID: "symbol:c", OutID: "symbol:a", ProjectID: "p1",
	})
	require.NoError(t, err)
	_, err = s.CreateRelation(NewRelation{
		Table: model.RelObservedIn, InID: "symbol:a", OutID: "doc_source:d1", ProjectID: "p1", Kind: "doc_source",
	})
	require.NoError(t, err)
	_, err = s.CreateRelation(NewRelation{
		Table: model.RelObservedIn, InID: "symbol:z", OutID: "symbol:a", ProjectID: "p1", Kind: "doc_source",
	})
	require.NoError(t, err)

	adj, err := s.FetchSymbolAdjacency("p1", "a", 50)
	require.NoError(t, err)

	require.Len(t, adj[model.RelReturns], 2)
	require.Len(t, adj[model.RelObservedIn], 1)
	assert.Equal(t, "symbol:a", adj[model.RelObservedIn][0].InID)
}

func TestListMembersByScopeGlobAndPrefix(t *testing.T) {
	s := openTestStore(t)

	for _, qn := range []string{"Acme.Foo", "Acme.Foo.Bar", "Acme.Baz"} {
		_, err := s.UpsertSymbol(model.Symbol{ProjectID: "p1", SymbolKey: "csharp|p1|" + qn, QualifiedName: qn, Name: qn})
		require.NoError(t, err)
	}

	byPrefix, err := s.ListMembersByScope("p1", "acme.foo", 0)
	require.NoError(t, err)
	assert.Len(t, byPrefix, 2)

	byGlob, err := s.ListMembersByScope("p1", "Acme.*.Bar", 0)
	require.NoError(t, err)
	require.Len(t, byGlob, 1)
	assert.Equal(t, "Acme.Foo.Bar", byGlob[0].QualifiedName)
}

func TestSearchSymbolsAdvancedRejectsZeroFilters(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SearchSymbolsAdvanced("p1", SymbolFilter{}, 10)
	require.Error(t, err)
	assert.Equal(t, docxerr.InvalidInput, docxerr.KindOf(err))
}

func TestCountSymbolsMissingField(t *testing.T) {
	s := openTestStore(t)
	line := 10
	_, err := s.UpsertSymbol(model.Symbol{ProjectID: "p1", SymbolKey: "k1", Line: &line, SourcePath: "a.rs"})
	require.NoError(t, err)
	_, err = s.UpsertSymbol(model.Symbol{ProjectID: "p1", SymbolKey: "k2"})
	require.NoError(t, err)

	missing, err := s.CountSymbolsMissingField("p1", "source_path")
	require.NoError(t, err)
	assert.Equal(t, 1, missing)
}

func TestOpenInMemoryIgnoresDirAndPersistsForHandleLifetime(t *testing.T) {
	s, err := Open(Options{InMemory: true, Dir: ""}, arbor.NewLogger())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	sym := model.Symbol{ProjectID: "p1", SymbolKey: "k1", Name: "Foo"}
	_, err = s.UpsertSymbol(sym)
	require.NoError(t, err)

	got, err := s.GetSymbol("p1", "k1")
	require.NoError(t, err)
	assert.Equal(t, "Foo", got.Name)
}
