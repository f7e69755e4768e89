package control

import (
	"strings"

	"github.com/ternarybob/docx-mcp/internal/docx/model"
	"github.com/ternarybob/docx-mcp/internal/docx/store"
)

// symbolRef is a shorthand for the record_ref("symbol", key) entity ref
// used throughout the relation builders below.
func symbolRef(key string) string {
	return model.RecordRef(model.TableSymbol, key)
}

// buildDocumentsEdges links each doc block to the symbol it documents.
// Blocks whose symbol did not survive dedup/upsert in this ingest are
// silently dropped, per the dangling-reference policy.
func buildDocumentsEdges(blocks []model.DocBlock, symbolKeys map[string]bool, projectID, ingestID string) []store.NewRelation {
	var relations []store.NewRelation
	for _, block := range blocks {
		if block.ID == "" || block.SymbolKey == "" || !symbolKeys[block.SymbolKey] {
			continue
		}
		relations = append(relations, store.NewRelation{
			Table:     model.RelDocuments,
			InID:      model.RecordRef(model.TableDocBlock, block.ID),
			OutID:     symbolRef(block.SymbolKey),
			ProjectID: projectID,
			IngestID:  ingestID,
		})
	}
	return relations
}

// buildObservedInEdges links every stored symbol to the doc source it was
// observed in.
func buildObservedInEdges(symbols []model.Symbol, projectID, ingestID, docSourceID string) []store.NewRelation {
	var relations []store.NewRelation
	for _, sym := range symbols {
		relations = append(relations, store.NewRelation{
			Table:     model.RelObservedIn,
			InID:      symbolRef(sym.SymbolKey),
			OutID:     model.RecordRef(model.TableDocSource, docSourceID),
			ProjectID: projectID,
			IngestID:  ingestID,
			Kind:      "doc_source",
		})
	}
	return relations
}

// symbolRelations bundles the edge families derived from symbol metadata
// alone (membership, containment, type references, trait impls).
type symbolRelations struct {
	memberOf   []store.NewRelation
	contains   []store.NewRelation
	returns    []store.NewRelation
	paramTypes []store.NewRelation
	implements []store.NewRelation
}

// buildSymbolRelations derives member_of/contains from qualified-name
// nesting, returns/param_type from resolved TypeRef.SymbolKey values, and
// implements from the rustdoc trait-impl map. Any reference whose target
// key did not survive dedup/upsert in this ingest is dropped.
func buildSymbolRelations(symbols []model.Symbol, projectID, ingestID string, traitImpls map[string][]string) symbolRelations {
	var rel symbolRelations

	symbolByQualified := make(map[string]string, len(symbols))
	symbolKeys := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if sym.QualifiedName != "" {
			symbolByQualified[sym.QualifiedName] = sym.SymbolKey
		}
		symbolKeys[sym.SymbolKey] = true
	}

	for _, sym := range symbols {
		selfRef := symbolRef(sym.SymbolKey)

		if parentQualified, ok := splitParentQualified(sym.QualifiedName); ok {
			if parentKey, ok := symbolByQualified[parentQualified]; ok {
				parentRef := symbolRef(parentKey)
				rel.memberOf = append(rel.memberOf, store.NewRelation{
					Table: model.RelMemberOf, InID: selfRef, OutID: parentRef,
					ProjectID: projectID, IngestID: ingestID,
				})
				rel.contains = append(rel.contains, store.NewRelation{
					Table: model.RelContains, InID: parentRef, OutID: selfRef,
					ProjectID: projectID, IngestID: ingestID,
				})
			}
		}

		if sym.ReturnType != nil && sym.ReturnType.SymbolKey != "" && symbolKeys[sym.ReturnType.SymbolKey] {
			rel.returns = append(rel.returns, store.NewRelation{
				Table: model.RelReturns, InID: selfRef, OutID: symbolRef(sym.ReturnType.SymbolKey),
				ProjectID: projectID, IngestID: ingestID,
			})
		}

		for _, param := range sym.Params {
			if param.TypeRef == nil || param.TypeRef.SymbolKey == "" || !symbolKeys[param.TypeRef.SymbolKey] {
				continue
			}
			rel.paramTypes = append(rel.paramTypes, store.NewRelation{
				Table: model.RelParamType, InID: selfRef, OutID: symbolRef(param.TypeRef.SymbolKey),
				ProjectID: projectID, IngestID: ingestID, Kind: param.Name,
			})
		}

		if sym.QualifiedName == "" {
			continue
		}
		for _, traitPath := range traitImpls[sym.QualifiedName] {
			traitKey := model.MakeRustSymbolKey(projectID, traitPath)
			if !symbolKeys[traitKey] {
				continue
			}
			rel.implements = append(rel.implements, store.NewRelation{
				Table: model.RelImplements, InID: selfRef, OutID: symbolRef(traitKey),
				ProjectID: projectID, IngestID: ingestID, Kind: "trait_impl",
			})
		}
	}

	return rel
}

// splitParentQualified returns the qualified name of the enclosing scope
// (everything before the last "::"), reporting false when there is none.
func splitParentQualified(qualifiedName string) (string, bool) {
	idx := strings.LastIndex(qualifiedName, "::")
	if idx <= 0 {
		return "", false
	}
	return qualifiedName[:idx], true
}

// docBlockRelations bundles the edge families derived from documentation
// metadata (cross-references, inheritdoc, thrown exceptions).
type docBlockRelations struct {
	seeAlso    []store.NewRelation
	inherits   []store.NewRelation
	references []store.NewRelation
}

// buildDocBlockRelations derives see_also/inherits/references edges from
// each doc block's cross-reference metadata, resolving bare targets
// against the symbol key first, then against the block's own language's
// key scheme.
func buildDocBlockRelations(symbols []model.Symbol, blocks []model.DocBlock, projectID, ingestID string) docBlockRelations {
	var rel docBlockRelations

	symbolKeys := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		symbolKeys[sym.SymbolKey] = true
	}

	for _, block := range blocks {
		if block.SymbolKey == "" || !symbolKeys[block.SymbolKey] {
			continue
		}
		selfRef := symbolRef(block.SymbolKey)
		language := block.Language

		for _, link := range block.SeeAlso {
			targetKey, ok := resolveSymbolReference(link.Target, language, projectID, symbolKeys)
			if !ok {
				continue
			}
			rel.seeAlso = append(rel.seeAlso, store.NewRelation{
				Table: model.RelSeeAlso, InID: selfRef, OutID: symbolRef(targetKey),
				ProjectID: projectID, IngestID: ingestID, Kind: link.TargetKind,
			})
		}

		if block.InheritDoc != nil {
			target := block.InheritDoc.Cref
			if target == "" {
				target = block.InheritDoc.Path
			}
			if target != "" {
				if targetKey, ok := resolveSymbolReference(target, language, projectID, symbolKeys); ok {
					rel.inherits = append(rel.inherits, store.NewRelation{
						Table: model.RelInherits, InID: selfRef, OutID: symbolRef(targetKey),
						ProjectID: projectID, IngestID: ingestID, Kind: "inheritdoc",
					})
				}
			}
		}

		for _, exception := range block.Exceptions {
			if exception.TypeRef == nil || exception.TypeRef.SymbolKey == "" || !symbolKeys[exception.TypeRef.SymbolKey] {
				continue
			}
			rel.references = append(rel.references, store.NewRelation{
				Table: model.RelReferences, InID: selfRef, OutID: symbolRef(exception.TypeRef.SymbolKey),
				ProjectID: projectID, IngestID: ingestID, Kind: "exception",
			})
		}
	}

	return rel
}

// resolveSymbolReference resolves a raw cref/path/see_also target against
// the stored symbol set: first as a bare symbol key, then by building the
// language-appropriate key from it.
func resolveSymbolReference(target, language, projectID string, symbolKeys map[string]bool) (string, bool) {
	if symbolKeys[target] {
		return target, true
	}
	var key string
	switch language {
	case "csharp":
		key = model.MakeCsharpSymbolKey(projectID, target)
	case "rust":
		key = model.MakeRustSymbolKey(projectID, target)
	default:
		return "", false
	}
	if symbolKeys[key] {
		return key, true
	}
	return "", false
}

// persistRelations derives and creates every edge family in the order the
// ingest contract specifies, returning the documents-edge count the
// ingest report surfaces.
func (p *Plane) persistRelations(storedSymbols []model.Symbol, storedBlocks []model.DocBlock, projectID, ingestID, docSourceID string, traitImpls map[string][]string) (int, error) {
	symbolKeys := make(map[string]bool, len(storedSymbols))
	for _, sym := range storedSymbols {
		symbolKeys[sym.SymbolKey] = true
	}

	documents := buildDocumentsEdges(storedBlocks, symbolKeys, projectID, ingestID)
	if len(documents) > 0 {
		if _, err := p.store.CreateRelations(documents); err != nil {
			return 0, err
		}
	}

	sym := buildSymbolRelations(storedSymbols, projectID, ingestID, traitImpls)
	for _, batch := range [][]store.NewRelation{sym.memberOf, sym.contains, sym.returns, sym.paramTypes} {
		if len(batch) == 0 {
			continue
		}
		if _, err := p.store.CreateRelations(batch); err != nil {
			return 0, err
		}
	}
	if len(sym.implements) > 0 {
		if _, err := p.store.CreateRelations(sym.implements); err != nil {
			return 0, err
		}
	}

	doc := buildDocBlockRelations(storedSymbols, storedBlocks, projectID, ingestID)
	for _, batch := range [][]store.NewRelation{doc.seeAlso, doc.inherits, doc.references} {
		if len(batch) == 0 {
			continue
		}
		if _, err := p.store.CreateRelations(batch); err != nil {
			return 0, err
		}
	}

	if docSourceID != "" {
		observedIn := buildObservedInEdges(storedSymbols, projectID, ingestID, docSourceID)
		if len(observedIn) > 0 {
			if _, err := p.store.CreateRelations(observedIn); err != nil {
				return 0, err
			}
		}
	}

	return len(documents), nil
}
