package control

import (
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
	"github.com/ternarybob/docx-mcp/internal/docx/store"
)

const advancedSearchMinFilters = 1

// GetSymbol fetches a symbol scoped to a project.
func (p *Plane) GetSymbol(projectID, symbolKey string) (*model.Symbol, error) {
	return p.store.GetSymbol(projectID, symbolKey)
}

// ListDocBlocks lists a symbol's doc blocks, optionally narrowed to one
// ingest.
func (p *Plane) ListDocBlocks(projectID, symbolKey, ingestID string) ([]model.DocBlock, error) {
	blocks, err := p.store.ListDocBlocks(projectID, symbolKey, 0)
	if err != nil {
		return nil, err
	}
	if ingestID == "" {
		return blocks, nil
	}
	var filtered []model.DocBlock
	for _, b := range blocks {
		if b.IngestID == ingestID {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// SearchSymbols matches a substring against symbol names.
func (p *Plane) SearchSymbols(projectID, name string, limit int) ([]model.Symbol, error) {
	return p.store.SearchSymbols(projectID, name, limit)
}

// SearchSymbolsAdvancedRequest is the search_symbols_advanced filter set.
// SymbolKey is an exact match; the rest are substrings.
type SearchSymbolsAdvancedRequest struct {
	Name          string
	QualifiedName string
	SymbolKey     string
	Signature     string
}

func (r SearchSymbolsAdvancedRequest) normalized() SearchSymbolsAdvancedRequest {
	return SearchSymbolsAdvancedRequest{
		Name:          strings.TrimSpace(r.Name),
		QualifiedName: strings.TrimSpace(r.QualifiedName),
		SymbolKey:     strings.TrimSpace(r.SymbolKey),
		Signature:     strings.TrimSpace(r.Signature),
	}
}

func (r SearchSymbolsAdvancedRequest) activeFilterCount() int {
	count := 0
	for _, v := range []string{r.Name, r.QualifiedName, r.SymbolKey, r.Signature} {
		if v != "" {
			count++
		}
	}
	return count
}

// SearchSymbolsAdvancedResult is the search_symbols_advanced response.
type SearchSymbolsAdvancedResult struct {
	Symbols        []model.Symbol
	TotalReturned  int
	AppliedFilters SearchSymbolsAdvancedRequest
}

// SearchSymbolsAdvanced rejects an all-empty filter set, then delegates.
func (p *Plane) SearchSymbolsAdvanced(projectID string, req SearchSymbolsAdvancedRequest, limit int) (SearchSymbolsAdvancedResult, error) {
	normalized := req.normalized()
	if normalized.activeFilterCount() < advancedSearchMinFilters {
		return SearchSymbolsAdvancedResult{}, docxerr.Invalid("at least one search filter is required")
	}

	symbols, err := p.store.SearchSymbolsAdvanced(projectID, store.SymbolFilter{
		Name:          normalized.Name,
		QualifiedName: normalized.QualifiedName,
		SymbolKey:     normalized.SymbolKey,
		Signature:     normalized.Signature,
	}, limit)
	if err != nil {
		return SearchSymbolsAdvancedResult{}, err
	}

	return SearchSymbolsAdvancedResult{
		Symbols:        symbols,
		TotalReturned:  len(symbols),
		AppliedFilters: normalized,
	}, nil
}

// SearchDocBlocks matches a substring across doc block text fields.
func (p *Plane) SearchDocBlocks(projectID, text string, limit int) ([]model.DocBlock, error) {
	return p.store.SearchDocBlocks(projectID, text, limit)
}

// ListSymbolKinds lists distinct symbol kinds for a project.
func (p *Plane) ListSymbolKinds(projectID string) ([]string, error) {
	return p.store.ListSymbolKinds(projectID)
}

// ListMembersByScope matches qualified_name against a prefix or glob.
func (p *Plane) ListMembersByScope(projectID, scope string, limit int) ([]model.Symbol, error) {
	return p.store.ListMembersByScope(projectID, scope, limit)
}

// RelationEdgeCount is one row of the project completeness audit's
// relation-edge breakdown.
type RelationEdgeCount struct {
	Relation string
	Count    int
}

// ProjectCompletenessAudit is the audit_project_completeness report.
type ProjectCompletenessAudit struct {
	ProjectID                     string
	SymbolCount                   int
	DocBlockCount                 int
	DocSourceCount                int
	SymbolsMissingSourcePathCount int
	SymbolsMissingLineCount       int
	SymbolsMissingColCount        int
	SymbolsWithDocBlocksCount     int
	SymbolsWithObservedInCount    int
	RelationCounts                map[string]int
	RelationEdgeCounts            []RelationEdgeCount
}

// auditedRelations lists the relation kinds the completeness audit
// reports a count for.
var auditedRelations = []string{
	model.RelMemberOf, model.RelContains, model.RelReturns, model.RelParamType,
	model.RelSeeAlso, model.RelInherits, model.RelReferences, model.RelObservedIn,
}

// AuditProjectCompleteness reports entity counts, missing-field counts,
// and per-relation edge counts for a project.
func (p *Plane) AuditProjectCompleteness(projectID string) (ProjectCompletenessAudit, error) {
	symbolCount, err := p.store.CountRowsForProject(model.TableSymbol, projectID)
	if err != nil {
		return ProjectCompletenessAudit{}, err
	}
	docBlockCount, err := p.store.CountRowsForProject(model.TableDocBlock, projectID)
	if err != nil {
		return ProjectCompletenessAudit{}, err
	}
	docSourceCount, err := p.store.CountRowsForProject(model.TableDocSource, projectID)
	if err != nil {
		return ProjectCompletenessAudit{}, err
	}

	missingSourcePath, err := p.store.CountSymbolsMissingField(projectID, "source_path")
	if err != nil {
		return ProjectCompletenessAudit{}, err
	}
	missingLine, err := p.store.CountSymbolsMissingField(projectID, "line")
	if err != nil {
		return ProjectCompletenessAudit{}, err
	}
	missingCol, err := p.store.CountSymbolsMissingField(projectID, "col")
	if err != nil {
		return ProjectCompletenessAudit{}, err
	}

	docBlockSymbolKeys, err := p.store.ListDocBlockSymbolKeys(projectID)
	if err != nil {
		return ProjectCompletenessAudit{}, err
	}
	observedInSymbolKeys, err := p.store.ListObservedInSymbolKeys(projectID)
	if err != nil {
		return ProjectCompletenessAudit{}, err
	}

	relationCounts := make(map[string]int, len(auditedRelations))
	edgeCounts := make([]RelationEdgeCount, 0, len(auditedRelations))
	for _, relation := range auditedRelations {
		count, err := p.store.CountRelationsByTable(projectID, relation)
		if err != nil {
			return ProjectCompletenessAudit{}, err
		}
		relationCounts[relation] = count
		edgeCounts = append(edgeCounts, RelationEdgeCount{Relation: relation, Count: count})
	}
	sort.Slice(edgeCounts, func(i, j int) bool { return edgeCounts[i].Relation < edgeCounts[j].Relation })

	return ProjectCompletenessAudit{
		ProjectID:                     projectID,
		SymbolCount:                   symbolCount,
		DocBlockCount:                 docBlockCount,
		DocSourceCount:                docSourceCount,
		SymbolsMissingSourcePathCount: missingSourcePath,
		SymbolsMissingLineCount:       missingLine,
		SymbolsMissingColCount:        missingCol,
		SymbolsWithDocBlocksCount:     distinctCount(docBlockSymbolKeys),
		SymbolsWithObservedInCount:    distinctCount(observedInSymbolKeys),
		RelationCounts:                relationCounts,
		RelationEdgeCounts:            edgeCounts,
	}, nil
}

func distinctCount(values []string) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	return len(seen)
}

// DocSourceHydrationSummary reports where get_symbol_adjacency's
// doc_sources were hydrated from, for observability.
type DocSourceHydrationSummary struct {
	FromDocBlocks  int
	FromObservedIn int
	DedupedTotal   int
}

// SymbolAdjacency is the get_symbol_adjacency response: a symbol, its doc
// blocks and doc sources, every outgoing/incoming relation edge by kind,
// and every symbol those edges reference.
type SymbolAdjacency struct {
	Symbol           *model.Symbol
	DocBlocks        []model.DocBlock
	DocSources       []model.DocSource
	HydrationSummary DocSourceHydrationSummary
	MemberOf         []model.RelationRecord
	Contains         []model.RelationRecord
	Returns          []model.RelationRecord
	ParamTypes       []model.RelationRecord
	SeeAlso          []model.RelationRecord
	Inherits         []model.RelationRecord
	References       []model.RelationRecord
	ObservedIn       []model.RelationRecord
	RelatedSymbols   []model.Symbol
}

// GetSymbolAdjacency fetches a symbol's full relation neighborhood: the
// doc blocks and doc sources attached to it, every adjacency edge, and
// every symbol those edges reference, hydrated concurrently.
func (p *Plane) GetSymbolAdjacency(projectID, symbolKey string, limit int) (SymbolAdjacency, error) {
	if limit < 1 {
		limit = 1
	}

	symbol, err := p.GetSymbol(projectID, symbolKey)
	if err != nil {
		if docxerr.KindOf(err) == docxerr.NotFound {
			return SymbolAdjacency{}, nil
		}
		return SymbolAdjacency{}, err
	}

	docBlocks, err := p.ListDocBlocks(projectID, symbolKey, "")
	if err != nil {
		return SymbolAdjacency{}, err
	}
	ingestIDs := distinctSorted(collectIngestIDs(docBlocks))

	adj, err := p.store.FetchSymbolAdjacency(projectID, symbolKey, limit)
	if err != nil {
		return SymbolAdjacency{}, err
	}

	docSourcesFromBlocks, err := p.store.ListDocSourcesByIngestIDs(projectID, ingestIDs)
	if err != nil {
		return SymbolAdjacency{}, err
	}
	observedDocSourceIDs := distinctSorted(collectDocSourceIDs(adj[model.RelObservedIn]))
	docSourcesFromObservedIn, err := p.store.GetDocSourcesByIDs(observedDocSourceIDs)
	if err != nil {
		return SymbolAdjacency{}, err
	}
	docSources, hydrationSummary := mergeDocSources(docSourcesFromBlocks, docSourcesFromObservedIn)

	relatedKeys := collectRelatedSymbolKeys(adj)
	relatedSymbols, err := p.hydrateSymbols(projectID, relatedKeys)
	if err != nil {
		return SymbolAdjacency{}, err
	}

	return SymbolAdjacency{
		Symbol:           symbol,
		DocBlocks:        docBlocks,
		DocSources:       docSources,
		HydrationSummary: hydrationSummary,
		MemberOf:         adj[model.RelMemberOf],
		Contains:         adj[model.RelContains],
		Returns:          adj[model.RelReturns],
		ParamTypes:       adj[model.RelParamType],
		SeeAlso:          adj[model.RelSeeAlso],
		Inherits:         adj[model.RelInherits],
		References:       adj[model.RelReferences],
		ObservedIn:       adj[model.RelObservedIn],
		RelatedSymbols:   relatedSymbols,
	}, nil
}

// hydrateSymbols fetches each key's symbol concurrently, dropping misses,
// and returns the survivors sorted and deduped by symbol_key.
func (p *Plane) hydrateSymbols(projectID string, keys []string) ([]model.Symbol, error) {
	type result struct {
		sym *model.Symbol
		err error
	}
	results := make([]result, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			sym, err := p.GetSymbol(projectID, key)
			if err != nil && docxerr.KindOf(err) == docxerr.NotFound {
				err = nil
			}
			results[i] = result{sym: sym, err: err}
		}(i, key)
	}
	wg.Wait()

	var symbols []model.Symbol
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if r.sym != nil {
			symbols = append(symbols, *r.sym)
		}
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].SymbolKey < symbols[j].SymbolKey })

	deduped := symbols[:0]
	var lastKey string
	for i, sym := range symbols {
		if i > 0 && sym.SymbolKey == lastKey {
			continue
		}
		deduped = append(deduped, sym)
		lastKey = sym.SymbolKey
	}
	return deduped, nil
}

func collectIngestIDs(blocks []model.DocBlock) []string {
	var ids []string
	for _, b := range blocks {
		if b.IngestID != "" {
			ids = append(ids, b.IngestID)
		}
	}
	return ids
}

func collectDocSourceIDs(observedIn []model.RelationRecord) []string {
	prefix := model.TableDocSource + ":"
	var ids []string
	for _, e := range observedIn {
		if strings.HasPrefix(e.OutID, prefix) {
			ids = append(ids, strings.TrimPrefix(e.OutID, prefix))
		}
	}
	return ids
}

// collectRelatedSymbolKeys gathers every symbol-table endpoint referenced
// by the adjacency edges (both directions, across every relation kind).
func collectRelatedSymbolKeys(adj map[string][]model.RelationRecord) []string {
	prefix := model.TableSymbol + ":"
	seen := make(map[string]bool)
	var keys []string
	add := func(ref string) {
		if !strings.HasPrefix(ref, prefix) {
			return
		}
		key := strings.TrimPrefix(ref, prefix)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for _, edges := range adj {
		for _, e := range edges {
			add(e.InID)
			add(e.OutID)
		}
	}
	return keys
}

func distinctSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// mergeDocSources concatenates both doc-source lists, drops duplicate ids,
// sorts by id, and reports how many entries each input list supplied
// before duplicates were dropped.
func mergeDocSources(fromDocBlocks, fromObservedIn []model.DocSource) ([]model.DocSource, DocSourceHydrationSummary) {
	summary := DocSourceHydrationSummary{
		FromDocBlocks:  len(fromDocBlocks),
		FromObservedIn: len(fromObservedIn),
	}

	all := make([]model.DocSource, 0, len(fromDocBlocks)+len(fromObservedIn))
	all = append(all, fromDocBlocks...)
	all = append(all, fromObservedIn...)

	seen := make(map[string]bool, len(all))
	deduped := all[:0]
	for _, ds := range all {
		key := ds.ID
		if key == "" {
			key = "missing:" + ds.ProjectID
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, ds)
	}
	sort.Slice(deduped, func(i, j int) bool { return deduped[i].ID < deduped[j].ID })

	summary.DedupedTotal = len(deduped)
	return deduped, summary
}
