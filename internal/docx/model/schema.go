package model

import "fmt"

// Entity table names.
const (
	TableProject   = "project"
	TableIngest    = "ingest"
	TableDocSource = "doc_source"
	TableSymbol    = "symbol"
	TableDocBlock  = "doc_block"
	TableDocChunk  = "doc_chunk"
)

// Relation table names, in the order edge families are derived during
// ingest.
const (
	RelDocuments  = "documents"
	RelMemberOf   = "member_of"
	RelContains   = "contains"
	RelReturns    = "returns"
	RelParamType  = "param_type"
	RelImplements = "implements"
	RelSeeAlso    = "see_also"
	RelInherits   = "inherits"
	RelReferences = "references"
	RelObservedIn = "observed_in"
	RelOverloadOf = "overload_of"
	RelTypeOf     = "type_of"
)

// RelationTables lists every relation table the store bootstraps and the
// adjacency fetch queries.
var RelationTables = []string{
	RelContains, RelMemberOf, RelDocuments, RelReferences, RelSeeAlso,
	RelInherits, RelImplements, RelOverloadOf, RelTypeOf, RelReturns,
	RelParamType, RelObservedIn,
}

// AdjacencyRelationTables lists the eight relation kinds fetched for
// symbol adjacency (observed_in is outgoing-only, per spec Open Question b).
var AdjacencyRelationTables = []string{
	RelMemberOf, RelContains, RelReturns, RelParamType, RelSeeAlso,
	RelInherits, RelReferences, RelObservedIn,
}

// IsRelationTable reports whether name is one of the twelve relation tables.
func IsRelationTable(name string) bool {
	for _, t := range RelationTables {
		if t == name {
			return true
		}
	}
	return false
}

// Source-kind discriminators.
const (
	SourceKindCsharpXML    = "csharp_xml"
	SourceKindRustdocJSON  = "rustdoc_json"
)

// MakeSymbolKey constructs the stable, external symbol identity:
// "{language}|{project_id}|{local_id}".
func MakeSymbolKey(language, projectID, localID string) string {
	return fmt.Sprintf("%s|%s|%s", language, projectID, localID)
}

// MakeCsharpSymbolKey is the C# shorthand: local_id is the XML doc_id.
func MakeCsharpSymbolKey(projectID, docID string) string {
	return MakeSymbolKey("csharp", projectID, docID)
}

// MakeRustSymbolKey is the rust shorthand: local_id is the "::"-joined
// qualified path.
func MakeRustSymbolKey(projectID, qualifiedPath string) string {
	return MakeSymbolKey("rust", projectID, qualifiedPath)
}

// RecordRef formats an entity reference as "table:key", the external edge
// endpoint encoding.
func RecordRef(table, key string) string {
	return table + ":" + key
}

// MakeIngestID scopes a caller-supplied ingest id to its project:
// "{project_id}::{caller_id}".
func MakeIngestID(projectID, callerID string) string {
	return projectID + "::" + callerID
}
