package store

import (
	"strings"

	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

// NewRelation is the create_relation request shape: table names the bucket
// (one of the twelve relation tables); kind defaults to table when empty
// but may diverge (param_type sets kind to the parameter name).
type NewRelation struct {
	Table     string
	InID      string
	OutID     string
	ProjectID string
	IngestID  string
	Kind      string
	Extra     model.Extra
}

func isEdgeRef(ref string) bool {
	idx := strings.Index(ref, ":")
	return idx > 0 && idx < len(ref)-1
}

// CreateRelation validates table as a bare identifier from the known
// relation-table set and in_id/out_id as "table:key" strings, then persists
// the edge.
func (s *Store) CreateRelation(r NewRelation) (model.RelationRecord, error) {
	if !identifierPattern.MatchString(r.Table) || !model.IsRelationTable(r.Table) {
		return model.RelationRecord{}, docxerr.Invalid("invalid relation table %q", r.Table)
	}
	if !isEdgeRef(r.InID) || !isEdgeRef(r.OutID) {
		return model.RelationRecord{}, docxerr.Invalid("in_id/out_id must be \"table:key\" strings")
	}
	if r.ProjectID == "" {
		return model.RelationRecord{}, docxerr.Invalid("project_id is required")
	}
	kind := r.Kind
	if kind == "" {
		kind = r.Table
	}
	rec := model.RelationRecord{
		ID:        newID(),
		Table:     r.Table,
		InID:      r.InID,
		OutID:     r.OutID,
		ProjectID: r.ProjectID,
		IngestID:  r.IngestID,
		Kind:      kind,
		Extra:     r.Extra,
	}
	if err := s.db.Insert(rec.ID, &rec); err != nil {
		return model.RelationRecord{}, docxerr.Wrap(docxerr.StorageFailure, "create relation", err)
	}
	return rec, nil
}

// CreateRelations fans the writes out concurrently. Final order is not
// significant.
func (s *Store) CreateRelations(relations []NewRelation) ([]model.RelationRecord, error) {
	type result struct {
		rec model.RelationRecord
		err error
	}
	results := make(chan result, len(relations))
	for _, r := range relations {
		r := r
		go func() {
			rec, err := s.CreateRelation(r)
			results <- result{rec: rec, err: err}
		}()
	}
	out := make([]model.RelationRecord, 0, len(relations))
	var firstErr error
	for range relations {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		out = append(out, r.rec)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

type edgeKey struct {
	in, out, kind string
}

// FetchSymbolAdjacency is the store's single adjacency fetch: one exported
// call that issues an outgoing and an incoming query per relation kind
// (only the outgoing one for observed_in) and returns the merged result as if it were one
// multi-statement query. For each of the eight adjacency relation kinds it
// returns both outgoing and incoming edges (observed_in is outgoing-only),
// merged and deduped on (in_id, out_id, kind) preserving first-seen order.
func (s *Store) FetchSymbolAdjacency(projectID, symbolKey string, limit int) (map[string][]model.RelationRecord, error) {
	symbolRef := model.RecordRef(model.TableSymbol, symbolKey)
	out := make(map[string][]model.RelationRecord, len(model.AdjacencyRelationTables))

	for _, table := range model.AdjacencyRelationTables {
		seen := make(map[edgeKey]bool)
		var merged []model.RelationRecord

		outgoingQ := badgerhold.Where("ProjectID").Eq(projectID).And("Table").Eq(table).And("InID").Eq(symbolRef)
		if limit > 0 {
			outgoingQ = outgoingQ.Limit(limit)
		}
		var outgoing []model.RelationRecord
		if err := s.db.Find(&outgoing, outgoingQ); err != nil {
			return nil, docxerr.Wrap(docxerr.StorageFailure, "fetch symbol adjacency", err)
		}
		for _, e := range outgoing {
			k := edgeKey{e.InID, e.OutID, e.Kind}
			if !seen[k] {
				seen[k] = true
				merged = append(merged, e)
			}
		}

		if table != model.RelObservedIn {
			incomingQ := badgerhold.Where("ProjectID").Eq(projectID).And("Table").Eq(table).And("OutID").Eq(symbolRef)
			if limit > 0 {
				incomingQ = incomingQ.Limit(limit)
			}
			var incoming []model.RelationRecord
			if err := s.db.Find(&incoming, incomingQ); err != nil {
				return nil, docxerr.Wrap(docxerr.StorageFailure, "fetch symbol adjacency", err)
			}
			for _, e := range incoming {
				k := edgeKey{e.InID, e.OutID, e.Kind}
				if !seen[k] {
					seen[k] = true
					merged = append(merged, e)
				}
			}
		}

		out[table] = merged
	}
	return out, nil
}

// CountRelationsByTable counts edges for a project within one relation
// table, used by AuditProjectCompleteness.
func (s *Store) CountRelationsByTable(projectID, table string) (int, error) {
	count, err := s.db.Count(&model.RelationRecord{}, badgerhold.Where("ProjectID").Eq(projectID).And("Table").Eq(table))
	if err != nil {
		return 0, docxerr.Wrap(docxerr.StorageFailure, "count relations", err)
	}
	return int(count), nil
}
