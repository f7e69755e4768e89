// Package model defines the canonical symbol/doc/relation entities the
// ingestion and query engine persists, and the key-construction helpers
// that give every record its stable, external identity.
package model

// Project is a per-tenant documentation scope (an assembly or a crate).
// Identity is ProjectID; Aliases are merged case-insensitively on upsert.
type Project struct {
	ID          string   `json:"id,omitempty"`
	ProjectID   string   `json:"project_id" badgerholdIndex:"ProjectID"`
	Name        string   `json:"name,omitempty"`
	Language    string   `json:"language,omitempty"`
	RootPath    string   `json:"root_path,omitempty"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	SearchText  string   `json:"search_text,omitempty"`
	Extra       Extra    `json:"extra,omitempty"`
}

// Ingest is a single provenance-tagged upload. Its stored id is scoped as
// "{project_id}::{caller_id}"; the caller-supplied id, if different, is
// preserved under Extra["requested_ingest_id"].
type Ingest struct {
	ID                string `json:"id,omitempty"`
	ProjectID         string `json:"project_id" badgerholdIndex:"ProjectID"`
	GitCommit         string `json:"git_commit,omitempty"`
	GitBranch         string `json:"git_branch,omitempty"`
	GitTag            string `json:"git_tag,omitempty"`
	ProjectVersion    string `json:"project_version,omitempty"`
	SourceModifiedAt  string `json:"source_modified_at,omitempty"`
	IngestedAt        string `json:"ingested_at,omitempty"`
	Extra             Extra  `json:"extra,omitempty"`
}

// DocSource records provenance for a single ingested document file.
type DocSource struct {
	ID               string `json:"id,omitempty"`
	ProjectID        string `json:"project_id" badgerholdIndex:"ProjectID"`
	IngestID         string `json:"ingest_id,omitempty" badgerholdIndex:"IngestID"`
	Language         string `json:"language"`
	SourceKind       string `json:"source_kind"`
	Path             string `json:"path,omitempty"`
	ToolVersion      string `json:"tool_version,omitempty"`
	Hash             string `json:"hash,omitempty"`
	SourceModifiedAt string `json:"source_modified_at,omitempty"`
	Extra            Extra  `json:"extra,omitempty"`
}

// TypeRef describes a referenced type, resolved or not.
type TypeRef struct {
	Display    string    `json:"display,omitempty"`
	Canonical  string    `json:"canonical,omitempty"`
	Language   string    `json:"language,omitempty"`
	SymbolKey  string    `json:"symbol_key,omitempty"`
	Generics   []TypeRef `json:"generics,omitempty"`
	Modifiers  []string  `json:"modifiers,omitempty"`
}

// Param is one function/method parameter.
type Param struct {
	Name         string   `json:"name"`
	TypeRef      *TypeRef `json:"type_ref,omitempty"`
	DefaultValue string   `json:"default_value,omitempty"`
	IsOptional   bool     `json:"is_optional,omitempty"`
}

// TypeParam is a generic type parameter.
type TypeParam struct {
	Name        string   `json:"name"`
	Constraints []string `json:"constraints,omitempty"`
}

// AttributeRef is a language attribute/annotation applied to a symbol.
type AttributeRef struct {
	Name   string   `json:"name"`
	Args   []string `json:"args,omitempty"`
	Target string   `json:"target,omitempty"`
}

// SourceID is one tagged identifier a symbol was observed under
// (e.g. a doc_id, a DefId).
type SourceID struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Symbol is the canonical per-identifier record. Identity is SymbolKey.
type Symbol struct {
	ID             string         `json:"id,omitempty"`
	ProjectID      string         `json:"project_id" badgerholdIndex:"ProjectID"`
	Language       string         `json:"language"`
	SymbolKey      string         `json:"symbol_key" badgerholdIndex:"SymbolKey"`
	Kind           string         `json:"kind" badgerholdIndex:"Kind"`
	Name           string         `json:"name,omitempty" badgerholdIndex:"Name"`
	QualifiedName  string         `json:"qualified_name,omitempty" badgerholdIndex:"QualifiedName"`
	DisplayName    string         `json:"display_name,omitempty"`
	Signature      string         `json:"signature,omitempty"`
	SignatureHash  string         `json:"signature_hash,omitempty"`
	Visibility     string         `json:"visibility,omitempty"`
	IsStatic       bool           `json:"is_static,omitempty"`
	IsAsync        bool           `json:"is_async,omitempty"`
	IsConst        bool           `json:"is_const,omitempty"`
	IsDeprecated   bool           `json:"is_deprecated,omitempty"`
	Since          string         `json:"since,omitempty"`
	Stability      string         `json:"stability,omitempty"`
	SourcePath     string         `json:"source_path,omitempty"`
	Line           *int           `json:"line,omitempty"`
	Col            *int           `json:"col,omitempty"`
	ReturnType     *TypeRef       `json:"return_type,omitempty"`
	Params         []Param        `json:"params,omitempty"`
	TypeParams     []TypeParam    `json:"type_params,omitempty"`
	Attributes     []AttributeRef `json:"attributes,omitempty"`
	SourceIDs      []SourceID     `json:"source_ids,omitempty"`
	DocSummary     string         `json:"doc_summary,omitempty"`
	Extra          Extra          `json:"extra,omitempty"`
}

// DocParam documents one parameter.
type DocParam struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TypeRef     *TypeRef `json:"type_ref,omitempty"`
}

// DocTypeParam documents one generic type parameter.
type DocTypeParam struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DocException documents one thrown/raised exception.
type DocException struct {
	TypeRef     *TypeRef `json:"type_ref,omitempty"`
	Description string   `json:"description,omitempty"`
}

// DocExample is one worked example, optionally language-tagged.
type DocExample struct {
	Lang    string `json:"lang,omitempty"`
	Code    string `json:"code,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// SeeAlso is one cross-reference, resolved against a symbol key where
// possible.
type SeeAlso struct {
	Label      string `json:"label,omitempty"`
	Target     string `json:"target"`
	TargetKind string `json:"target_kind,omitempty"`
}

// DocInherit captures an inheritdoc reference (prefer Cref, else Path).
type DocInherit struct {
	Cref string `json:"cref,omitempty"`
	Path string `json:"path,omitempty"`
}

// DocSection is a freeform named section that did not match a known
// heading.
type DocSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// DocBlock is the documentation payload attached to a symbol.
type DocBlock struct {
	ID         string         `json:"id,omitempty"`
	ProjectID  string         `json:"project_id" badgerholdIndex:"ProjectID"`
	IngestID   string         `json:"ingest_id,omitempty" badgerholdIndex:"IngestID"`
	SymbolKey  string         `json:"symbol_key,omitempty" badgerholdIndex:"SymbolKey"`
	Language   string         `json:"language,omitempty"`
	SourceKind string         `json:"source_kind,omitempty"`
	DocHash    string         `json:"doc_hash,omitempty"`
	Summary    string         `json:"summary,omitempty"`
	Remarks    string         `json:"remarks,omitempty"`
	Returns    string         `json:"returns,omitempty"`
	Value      string         `json:"value,omitempty"`
	Params     []DocParam     `json:"params,omitempty"`
	TypeParams []DocTypeParam `json:"type_params,omitempty"`
	Exceptions []DocException `json:"exceptions,omitempty"`
	Examples   []DocExample   `json:"examples,omitempty"`
	Notes      []string       `json:"notes,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Safety     string         `json:"safety,omitempty"`
	Panics     string         `json:"panics,omitempty"`
	Errors     string         `json:"errors,omitempty"`
	SeeAlso    []SeeAlso      `json:"see_also,omitempty"`
	Deprecated string         `json:"deprecated,omitempty"`
	InheritDoc *DocInherit    `json:"inherit_doc,omitempty"`
	Sections   []DocSection   `json:"sections,omitempty"`
	Raw        string         `json:"raw,omitempty"`
	Extra      Extra          `json:"extra,omitempty"`
}

// DocChunk is reserved for future embedding-backed search; the core only
// creates and lists these, never reads their contents.
type DocChunk struct {
	ID         string    `json:"id,omitempty"`
	ProjectID  string    `json:"project_id" badgerholdIndex:"ProjectID"`
	IngestID   string    `json:"ingest_id,omitempty"`
	SymbolKey  string    `json:"symbol_key,omitempty" badgerholdIndex:"SymbolKey"`
	DocBlockID string    `json:"doc_block_id,omitempty"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	TokenCount *int      `json:"token_count,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Extra      Extra     `json:"extra,omitempty"`
}

// RelationRecord is a directed edge in one of the twelve relation tables.
// InID/OutID are always fully qualified as "table:key".
//
// Table names one of the twelve relation tables (what the original graph
// backend would use as the edge's own collection); Kind is the edge's
// displayed label, which defaults to Table but can be overridden per-edge
// (param_type sets Kind to the parameter name).
type RelationRecord struct {
	ID        string `json:"id,omitempty"`
	Table     string `json:"table" badgerholdIndex:"Table"`
	InID      string `json:"in" badgerholdIndex:"InID"`
	OutID     string `json:"out" badgerholdIndex:"OutID"`
	ProjectID string `json:"project_id" badgerholdIndex:"ProjectID"`
	IngestID  string `json:"ingest_id,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Extra     Extra  `json:"extra,omitempty"`
}

// Extra is an open bag of caller-supplied metadata, carried verbatim.
type Extra map[string]any
