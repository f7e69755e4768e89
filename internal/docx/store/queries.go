package store

import (
	"regexp"
	"sort"
	"strings"

	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

// SearchSymbols performs a case-insensitive substring match on Name, scoped
// to a project.
func (s *Store) SearchSymbols(projectID, query string, limit int) ([]model.Symbol, error) {
	regex, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, docxerr.Invalid("invalid search query: %v", err)
	}
	q := badgerhold.Where("ProjectID").Eq(projectID).And("Name").RegExp(regex)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.Symbol
	if err := s.db.Find(&out, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "search symbols", err)
	}
	return out, nil
}

// SymbolFilter is the filter set for SearchSymbolsAdvanced. SymbolKey is an
// exact match; the rest are case-insensitive substring matches, all
// combined with AND.
type SymbolFilter struct {
	Name          string
	QualifiedName string
	SymbolKey     string
	Signature     string
}

func (f SymbolFilter) empty() bool {
	return f.Name == "" && f.QualifiedName == "" && f.SymbolKey == "" && f.Signature == ""
}

// SearchSymbolsAdvanced rejects calls with zero filters.
func (s *Store) SearchSymbolsAdvanced(projectID string, f SymbolFilter, limit int) ([]model.Symbol, error) {
	if f.empty() {
		return nil, docxerr.Invalid("search_symbols_advanced requires at least one filter")
	}
	q := badgerhold.Where("ProjectID").Eq(projectID)
	if f.SymbolKey != "" {
		q = q.And("SymbolKey").Eq(f.SymbolKey)
	}
	if f.Name != "" {
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(f.Name))
		if err != nil {
			return nil, docxerr.Invalid("invalid name filter: %v", err)
		}
		q = q.And("Name").RegExp(re)
	}
	if f.QualifiedName != "" {
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(f.QualifiedName))
		if err != nil {
			return nil, docxerr.Invalid("invalid qualified_name filter: %v", err)
		}
		q = q.And("QualifiedName").RegExp(re)
	}
	if f.Signature != "" {
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(f.Signature))
		if err != nil {
			return nil, docxerr.Invalid("invalid signature filter: %v", err)
		}
		q = q.And("Signature").RegExp(re)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.Symbol
	if err := s.db.Find(&out, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "search symbols advanced", err)
	}
	return out, nil
}

// SearchDocBlocks matches a case-insensitive substring across
// summary/remarks/returns/errors/panics/safety.
func (s *Store) SearchDocBlocks(projectID, query string, limit int) ([]model.DocBlock, error) {
	regex, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, docxerr.Invalid("invalid search query: %v", err)
	}
	q := badgerhold.Where("ProjectID").Eq(projectID).And("Summary").RegExp(regex).Or(
		badgerhold.Where("ProjectID").Eq(projectID).And("Remarks").RegExp(regex)).Or(
		badgerhold.Where("ProjectID").Eq(projectID).And("Returns").RegExp(regex)).Or(
		badgerhold.Where("ProjectID").Eq(projectID).And("Errors").RegExp(regex)).Or(
		badgerhold.Where("ProjectID").Eq(projectID).And("Panics").RegExp(regex)).Or(
		badgerhold.Where("ProjectID").Eq(projectID).And("Safety").RegExp(regex))
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.DocBlock
	if err := s.db.Find(&out, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "search doc blocks", err)
	}
	return out, nil
}

// ListSymbolKinds returns the distinct Kind values present for a project's
// symbols, sorted.
func (s *Store) ListSymbolKinds(projectID string) ([]string, error) {
	var symbols []model.Symbol
	if err := s.db.Find(&symbols, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list symbol kinds", err)
	}
	seen := make(map[string]bool)
	var kinds []string
	for _, sym := range symbols {
		if !seen[sym.Kind] {
			seen[sym.Kind] = true
			kinds = append(kinds, sym.Kind)
		}
	}
	sort.Strings(kinds)
	return kinds, nil
}

var globMetaEscaper = strings.NewReplacer(
	".", `\.`, "+", `\+`, "(", `\(`, ")", `\)`, "[", `\[`, "]", `\]`,
	"{", `\{`, "}", `\}`, "^", `\^`, "$", `\$`, "|", `\|`, "?", `\?`, "\\", `\\`,
)

// compileScopePattern turns a "*"-glob into an anchored, case-insensitive
// regex, escaping every other metacharacter.
func compileScopePattern(pattern string) *regexp.Regexp {
	escaped := globMetaEscaper.Replace(pattern)
	escaped = strings.ReplaceAll(escaped, "*", ".*")
	return regexp.MustCompile("(?i)^" + escaped + "$")
}

// ListMembersByScope matches qualified_name against pattern: a "*"-glob
// compiles to an anchored regex; otherwise a lowercase prefix match applies.
func (s *Store) ListMembersByScope(projectID, pattern string, limit int) ([]model.Symbol, error) {
	var symbols []model.Symbol
	if err := s.db.Find(&symbols, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list members by scope", err)
	}

	var matched []model.Symbol
	if strings.Contains(pattern, "*") {
		re := compileScopePattern(pattern)
		for _, sym := range symbols {
			if re.MatchString(sym.QualifiedName) {
				matched = append(matched, sym)
			}
		}
	} else {
		prefix := strings.ToLower(pattern)
		for _, sym := range symbols {
			if strings.HasPrefix(strings.ToLower(sym.QualifiedName), prefix) {
				matched = append(matched, sym)
			}
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// countEntity maps an entity table name to a Count call.
func (s *Store) countEntity(table, projectID string) (int64, error) {
	switch table {
	case model.TableProject:
		return s.db.Count(&model.Project{}, badgerhold.Where("ProjectID").Eq(projectID))
	case model.TableIngest:
		return s.db.Count(&model.Ingest{}, badgerhold.Where("ProjectID").Eq(projectID))
	case model.TableDocSource:
		return s.db.Count(&model.DocSource{}, badgerhold.Where("ProjectID").Eq(projectID))
	case model.TableSymbol:
		return s.db.Count(&model.Symbol{}, badgerhold.Where("ProjectID").Eq(projectID))
	case model.TableDocBlock:
		return s.db.Count(&model.DocBlock{}, badgerhold.Where("ProjectID").Eq(projectID))
	case model.TableDocChunk:
		return s.db.Count(&model.DocChunk{}, badgerhold.Where("ProjectID").Eq(projectID))
	default:
		if model.IsRelationTable(table) {
			return s.db.Count(&model.RelationRecord{}, badgerhold.Where("ProjectID").Eq(projectID).And("Table").Eq(table))
		}
		return 0, docxerr.Invalid("unknown table %q", table)
	}
}

// CountRowsForProject validates table against the known entity/relation
// tables and counts its rows for projectID.
func (s *Store) CountRowsForProject(table, projectID string) (int, error) {
	if !identifierPattern.MatchString(table) {
		return 0, docxerr.Invalid("invalid table %q", table)
	}
	count, err := s.countEntity(table, projectID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListDocBlockSymbolKeys returns every non-empty SymbolKey referenced by a
// project's doc blocks. Not deduped; callers that need distinct symbols
// dedupe themselves.
func (s *Store) ListDocBlockSymbolKeys(projectID string) ([]string, error) {
	var blocks []model.DocBlock
	if err := s.db.Find(&blocks, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list doc block symbol keys", err)
	}
	var keys []string
	for _, b := range blocks {
		if b.SymbolKey != "" {
			keys = append(keys, b.SymbolKey)
		}
	}
	return keys, nil
}

// ListObservedInSymbolKeys returns the symbol-key side (InID) of every
// observed_in edge for a project.
func (s *Store) ListObservedInSymbolKeys(projectID string) ([]string, error) {
	var edges []model.RelationRecord
	q := badgerhold.Where("ProjectID").Eq(projectID).And("Table").Eq(model.RelObservedIn)
	if err := s.db.Find(&edges, q); err != nil {
		return nil, docxerr.Wrap(docxerr.StorageFailure, "list observed_in symbol keys", err)
	}
	prefix := model.TableSymbol + ":"
	var keys []string
	for _, e := range edges {
		if strings.HasPrefix(e.InID, prefix) {
			keys = append(keys, strings.TrimPrefix(e.InID, prefix))
		}
	}
	return keys, nil
}

// CountSymbolsMissingField counts symbols in a project missing one of
// source_path, line, col.
func (s *Store) CountSymbolsMissingField(projectID, field string) (int, error) {
	var symbols []model.Symbol
	if err := s.db.Find(&symbols, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return 0, docxerr.Wrap(docxerr.StorageFailure, "count symbols missing field", err)
	}
	count := 0
	for _, sym := range symbols {
		switch field {
		case "source_path":
			if sym.SourcePath == "" {
				count++
			}
		case "line":
			if sym.Line == nil {
				count++
			}
		case "col":
			if sym.Col == nil {
				count++
			}
		default:
			return 0, docxerr.Invalid("unknown field %q", field)
		}
	}
	return count, nil
}
