package store

import (
	"strings"

	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

// UpsertProject inserts or replaces a project by its natural key, ProjectID.
func (s *Store) UpsertProject(p model.Project) (model.Project, error) {
	if p.ProjectID == "" {
		return model.Project{}, docxerr.Invalid("project_id is required")
	}
	p.ID = p.ProjectID
	if err := s.db.Upsert(p.ProjectID, &p); err != nil {
		return model.Project{}, docxerr.Wrap(docxerr.StorageFailure, "upsert project", err)
	}
	return p, nil
}

// GetProject fetches a project by id.
func (s *Store) GetProject(projectID string) (*model.Project, error) {
	var p model.Project
	if err := s.db.Get(projectID, &p); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, docxerr.NotFoundf("project %q not found", projectID)
		}
		return nil, docxerr.Wrap(docxerr.StorageFailure, "get project", err)
	}
	return &p, nil
}

// ListProjects returns every project, sorted by ProjectID.
func (s *Store) ListProjects(limit int) ([]model.Project, error) {
	var out []model.Project
	q := badgerhold.Where("ProjectID").Ne("").SortBy("ProjectID")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := s.db.Find(&out, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list projects", err)
	}
	return out, nil
}

// SearchProjects matches a case-insensitive substring against name, project
// id, or any alias.
func (s *Store) SearchProjects(query string, limit int) ([]model.Project, error) {
	all, err := s.ListProjects(0)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var matched []model.Project
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.ProjectID), needle) {
			matched = append(matched, p)
			continue
		}
		for _, alias := range p.Aliases {
			if strings.Contains(strings.ToLower(alias), needle) {
				matched = append(matched, p)
				break
			}
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// UpsertSymbol inserts or replaces a symbol by its natural key, SymbolKey.
func (s *Store) UpsertSymbol(sym model.Symbol) (model.Symbol, error) {
	if sym.SymbolKey == "" {
		return model.Symbol{}, docxerr.Invalid("symbol_key is required")
	}
	sym.ID = sym.SymbolKey
	if err := s.db.Upsert(sym.SymbolKey, &sym); err != nil {
		return model.Symbol{}, docxerr.Wrap(docxerr.StorageFailure, "upsert symbol", err)
	}
	return sym, nil
}

// GetSymbol fetches a symbol, scoped to projectID. It never falls back to a
// cross-project lookup even if another project happens to share the key.
func (s *Store) GetSymbol(projectID, symbolKey string) (*model.Symbol, error) {
	var sym model.Symbol
	if err := s.db.Get(symbolKey, &sym); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, docxerr.NotFoundf("symbol %q not found", symbolKey)
		}
		return nil, docxerr.Wrap(docxerr.StorageFailure, "get symbol", err)
	}
	if sym.ProjectID != projectID {
		return nil, docxerr.NotFoundf("symbol %q not found in project %q", symbolKey, projectID)
	}
	return &sym, nil
}

// CreateIngest allocates the project-scoped ingest id "{project_id}::{caller_id}"
// and persists the record. callerID defaults to a fresh uuid when empty; the
// caller-supplied value, when non-empty, is preserved under
// Extra["requested_ingest_id"].
func (s *Store) CreateIngest(in model.Ingest, callerID string) (model.Ingest, error) {
	if in.ProjectID == "" {
		return model.Ingest{}, docxerr.Invalid("project_id is required")
	}
	if callerID == "" {
		callerID = newID()
	} else {
		if in.Extra == nil {
			in.Extra = model.Extra{}
		}
		in.Extra["requested_ingest_id"] = callerID
	}
	in.ID = model.MakeIngestID(in.ProjectID, callerID)
	if err := s.db.Upsert(in.ID, &in); err != nil {
		return model.Ingest{}, docxerr.Wrap(docxerr.StorageFailure, "create ingest", err)
	}
	return in, nil
}

// GetIngest resolves either a fully-scoped id ("project::caller") or a bare
// caller id. A bare id that matches more than one project's ingest is
// ambiguous and rejected as InvalidInput.
func (s *Store) GetIngest(id string) (*model.Ingest, error) {
	if strings.Contains(id, "::") {
		var in model.Ingest
		if err := s.db.Get(id, &in); err != nil {
			if err == badgerhold.ErrNotFound {
				return nil, docxerr.NotFoundf("ingest %q not found", id)
			}
			return nil, docxerr.Wrap(docxerr.StorageFailure, "get ingest", err)
		}
		return &in, nil
	}

	var all []model.Ingest
	if err := s.db.Find(&all, badgerhold.Where("ProjectID").Ne("")); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "get ingest", err)
	}
	var matches []model.Ingest
	for _, in := range all {
		if strings.HasSuffix(in.ID, "::"+id) {
			matches = append(matches, in)
		}
	}
	switch len(matches) {
	case 0:
		return nil, docxerr.NotFoundf("ingest %q not found", id)
	case 1:
		return &matches[0], nil
	default:
		return nil, docxerr.Invalid("ingest id %q is ambiguous across %d projects", id, len(matches))
	}
}

// ListIngests lists every ingest for a project.
func (s *Store) ListIngests(projectID string, limit int) ([]model.Ingest, error) {
	var out []model.Ingest
	q := badgerhold.Where("ProjectID").Eq(projectID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := s.db.Find(&out, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list ingests", err)
	}
	return out, nil
}

// CreateDocSource allocates an id if absent and persists the record.
func (s *Store) CreateDocSource(ds model.DocSource) (model.DocSource, error) {
	if ds.ID == "" {
		ds.ID = newID()
	}
	if err := s.db.Upsert(ds.ID, &ds); err != nil {
		return model.DocSource{}, docxerr.Wrap(docxerr.StorageFailure, "create doc source", err)
	}
	return ds, nil
}

// GetDocSource fetches a doc source by id.
func (s *Store) GetDocSource(id string) (*model.DocSource, error) {
	var ds model.DocSource
	if err := s.db.Get(id, &ds); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, docxerr.NotFoundf("doc source %q not found", id)
		}
		return nil, docxerr.Wrap(docxerr.StorageFailure, "get doc source", err)
	}
	return &ds, nil
}

// ListDocSources lists every doc source for a project, optionally filtered
// to a single ingest.
func (s *Store) ListDocSources(projectID, ingestID string, limit int) ([]model.DocSource, error) {
	q := badgerhold.Where("ProjectID").Eq(projectID)
	if ingestID != "" {
		q = q.And("IngestID").Eq(ingestID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.DocSource
	if err := s.db.Find(&out, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list doc sources", err)
	}
	return out, nil
}

// ListDocSourcesByIngestIDs lists doc sources for a project whose
// IngestID appears in ingestIDs.
func (s *Store) ListDocSourcesByIngestIDs(projectID string, ingestIDs []string) ([]model.DocSource, error) {
	if len(ingestIDs) == 0 {
		return nil, nil
	}
	wanted := make(map[string]bool, len(ingestIDs))
	for _, id := range ingestIDs {
		wanted[id] = true
	}
	all, err := s.ListDocSources(projectID, "", 0)
	if err != nil {
		return nil, err
	}
	var out []model.DocSource
	for _, ds := range all {
		if wanted[ds.IngestID] {
			out = append(out, ds)
		}
	}
	return out, nil
}

// GetDocSourcesByIDs fetches doc sources by id, skipping ids that do not
// resolve instead of failing the whole batch.
func (s *Store) GetDocSourcesByIDs(ids []string) ([]model.DocSource, error) {
	var out []model.DocSource
	for _, id := range ids {
		var ds model.DocSource
		if err := s.db.Get(id, &ds); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return nil, docxerr.Wrap(docxerr.StorageFailure, "get doc sources by id", err)
		}
		out = append(out, ds)
	}
	return out, nil
}

// CreateDocBlock allocates an id if absent and persists the record.
func (s *Store) CreateDocBlock(block model.DocBlock) (model.DocBlock, error) {
	if block.ID == "" {
		block.ID = newID()
	}
	if err := s.db.Upsert(block.ID, &block); err != nil {
		return model.DocBlock{}, docxerr.Wrap(docxerr.StorageFailure, "create doc block", err)
	}
	return block, nil
}

// CreateDocBlocks fans the writes out concurrently; final order is not
// significant, per the store contract.
func (s *Store) CreateDocBlocks(blocks []model.DocBlock) ([]model.DocBlock, error) {
	type result struct {
		block model.DocBlock
		err   error
	}
	results := make(chan result, len(blocks))
	for _, b := range blocks {
		b := b
		go func() {
			created, err := s.CreateDocBlock(b)
			results <- result{block: created, err: err}
		}()
	}
	out := make([]model.DocBlock, 0, len(blocks))
	var firstErr error
	for range blocks {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		out = append(out, r.block)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// ListDocBlocks lists doc blocks for a project, optionally restricted to one
// symbol.
func (s *Store) ListDocBlocks(projectID, symbolKey string, limit int) ([]model.DocBlock, error) {
	q := badgerhold.Where("ProjectID").Eq(projectID)
	if symbolKey != "" {
		q = q.And("SymbolKey").Eq(symbolKey)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.DocBlock
	if err := s.db.Find(&out, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list doc blocks", err)
	}
	return out, nil
}

// CreateDocChunk allocates an id if absent and persists the record. The
// core only creates and lists chunks; nothing reads their contents today.
func (s *Store) CreateDocChunk(c model.DocChunk) (model.DocChunk, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	if err := s.db.Upsert(c.ID, &c); err != nil {
		return model.DocChunk{}, docxerr.Wrap(docxerr.StorageFailure, "create doc chunk", err)
	}
	return c, nil
}

// ListDocChunks lists chunks for a symbol, ordered by ChunkIndex.
func (s *Store) ListDocChunks(projectID, symbolKey string, limit int) ([]model.DocChunk, error) {
	q := badgerhold.Where("ProjectID").Eq(projectID).And("SymbolKey").Eq(symbolKey).SortBy("ChunkIndex")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.DocChunk
	if err := s.db.Find(&out, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list doc chunks", err)
	}
	return out, nil
}
