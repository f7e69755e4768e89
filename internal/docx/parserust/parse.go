package parserust

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

// Options configures a parse run. Reserved for future knobs.
type Options struct{}

// Output is everything one parse run produces. TraitImpls maps a rust-only
// qualified name to the trait paths it implements, consumed by the control
// plane when deriving "implements" edges.
type Output struct {
	CrateName  string
	Symbols    []model.Symbol
	DocBlocks  []model.DocBlock
	TraitImpls map[string][]string
}

// Error wraps a parse failure: JSON decode errors, a missing root item.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rustdoc json parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rustdoc json parse error: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

type parserState struct {
	crate      *Crate
	rootCrate  int
	projectID  string
	seen       map[string]bool
	idToPath   map[string]string
	out        Output
}

// Parse decodes a rustdoc JSON crate index into symbols and doc blocks
// scoped to projectID.
func Parse(jsonBytes []byte, projectID string, _ Options) (Output, error) {
	var crate Crate
	if err := json.Unmarshal(jsonBytes, &crate); err != nil {
		return Output{}, &Error{Message: "malformed json", Cause: err}
	}
	rootItem, ok := crate.Index[crate.Root]
	if !ok {
		return Output{}, &Error{Message: "missing root item"}
	}

	st := &parserState{
		crate:     &crate,
		rootCrate: rootItem.CrateID,
		projectID: projectID,
		seen:      map[string]bool{},
		idToPath:  map[string]string{},
		out:       Output{TraitImpls: map[string][]string{}},
	}
	for id, p := range crate.Paths {
		if p.CrateID == st.rootCrate {
			st.idToPath[id] = strings.Join(p.Path, "::")
		}
	}
	if rootItem.Name != "" {
		st.out.CrateName = rootItem.Name
	}

	st.visitModule(crate.Root)
	return st.out, nil
}

func (st *parserState) itemCrateID(it *Item) int {
	return it.CrateID
}

func (st *parserState) qualifiedNameFor(id string, fallback string) string {
	if p, ok := st.idToPath[id]; ok && p != "" {
		return p
	}
	return fallback
}

func (st *parserState) spanLocation(span *Span) (path string, line, col *int) {
	if span == nil {
		return "", nil, nil
	}
	l, c := span.Begin[0], span.Begin[1]
	return span.Filename, &l, &c
}

func (st *parserState) visitModule(id string) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true

	item, ok := st.crate.Index[id]
	if !ok || st.itemCrateID(&item) != st.rootCrate {
		return
	}
	raw, ok := item.Inner["module"]
	if !ok {
		st.visitItem(id, "")
		return
	}
	var mod moduleInner
	_ = json.Unmarshal(raw, &mod)
	for _, child := range mod.Items {
		st.visitItem(child, "")
	}
}

// visitItem dispatches on an item's inner kind, emitting zero or more
// symbols. parentQualified is non-empty when the item is owned by a
// struct/enum/trait/impl (a field, variant, or method).
func (st *parserState) visitItem(id string, parentQualified string) {
	item, ok := st.crate.Index[id]
	if !ok || st.itemCrateID(&item) != st.rootCrate {
		return
	}

	for kind := range item.Inner {
		switch kind {
		case "module":
			st.visitModule(id)
			return
		case "struct":
			st.visitStruct(id, &item, item.Inner[kind])
			return
		case "enum":
			st.visitEnum(id, &item, item.Inner[kind])
			return
		case "trait":
			st.visitTrait(id, &item, item.Inner[kind])
			return
		case "function":
			st.addFunctionSymbol(id, &item, item.Inner[kind], parentQualified, "method")
			return
		case "type_alias":
			var ta typeAliasInner
			_ = json.Unmarshal(item.Inner[kind], &ta)
			st.addTypedSymbol(id, &item, "type_alias", parentQualified, ta.Type)
			return
		case "constant":
			var c constantInner
			_ = json.Unmarshal(item.Inner[kind], &c)
			st.addTypedSymbol(id, &item, "constant", parentQualified, c.Type)
			return
		case "static":
			var s staticInner
			_ = json.Unmarshal(item.Inner[kind], &s)
			sym := st.addTypedSymbol(id, &item, "static", parentQualified, s.Type)
			if sym != nil && s.IsMutable {
				sym.IsStatic = true
			}
			return
		case "union":
			st.visitStruct(id, &item, item.Inner[kind])
			return
		case "macro":
			st.addSimpleSymbol(id, &item, "macro", parentQualified)
			return
		}
	}
}

func (st *parserState) baseQualified(id string, item *Item, parentQualified string) string {
	if parentQualified != "" {
		return parentQualified + "::" + item.Name
	}
	return st.qualifiedNameFor(id, item.Name)
}

func (st *parserState) newSymbol(id string, item *Item, kind, qualifiedName string) model.Symbol {
	path, line, col := st.spanLocation(item.Span)
	sym := model.Symbol{
		ProjectID:     st.projectID,
		Language:      "rust",
		SymbolKey:     model.MakeRustSymbolKey(st.projectID, qualifiedName),
		Kind:          kind,
		Name:          item.Name,
		QualifiedName: qualifiedName,
		DisplayName:   qualifiedName,
		SourcePath:    path,
		Line:          line,
		Col:           col,
		SourceIDs:     []model.SourceID{{Kind: "def_id", Value: id}},
	}
	if item.Deprecation != nil {
		sym.IsDeprecated = true
		sym.Since = item.Deprecation.Since
	}
	docs := parseMarkdownDocs(item.Docs)
	sym.DocSummary = docs.Summary

	block := model.DocBlock{
		ProjectID:  st.projectID,
		SymbolKey:  sym.SymbolKey,
		Language:   "rust",
		SourceKind: model.SourceKindRustdocJSON,
		Summary:    docs.Summary,
		Remarks:    docs.Remarks,
		Returns:    docs.Returns,
		Value:      docs.Value,
		Safety:     docs.Safety,
		Panics:     docs.Panics,
		Errors:     docs.Errors,
		Deprecated: docs.Deprecated,
		Examples:   docs.Examples,
		Notes:      docs.Notes,
		Warnings:   docs.Warnings,
		SeeAlso:    docs.SeeAlso,
		Params:     docs.Params,
		TypeParams: docs.TypeParams,
		Sections:   docs.Sections,
		Raw:        item.Docs,
	}
	st.out.Symbols = append(st.out.Symbols, sym)
	st.out.DocBlocks = append(st.out.DocBlocks, block)
	return sym
}

func (st *parserState) addSimpleSymbol(id string, item *Item, kind, parentQualified string) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true
	qualified := st.baseQualified(id, item, parentQualified)
	st.newSymbol(id, item, kind, qualified)
}

// addTypedSymbol handles type_alias/constant/static items, each of which
// carries a single value/target type rendered onto Symbol.ReturnType.
func (st *parserState) addTypedSymbol(id string, item *Item, kind, parentQualified string, typeRaw json.RawMessage) *model.Symbol {
	if st.seen[id] {
		return nil
	}
	st.seen[id] = true
	qualified := st.baseQualified(id, item, parentQualified)
	sym := st.newSymbol(id, item, kind, qualified)
	if t := decodeType(typeRaw); t != nil {
		ref := st.typeToRef(t)
		for i := range st.out.Symbols {
			if st.out.Symbols[i].SymbolKey == sym.SymbolKey {
				st.out.Symbols[i].ReturnType = ref
				return &st.out.Symbols[i]
			}
		}
	}
	return nil
}

func (st *parserState) visitStruct(id string, item *Item, raw json.RawMessage) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true
	qualified := st.baseQualified(id, item, "")
	kind := "struct"
	if _, ok := item.Inner["union"]; ok {
		kind = "union"
	}
	st.newSymbol(id, item, kind, qualified)

	var fieldIDs, implIDs []string
	if kind == "union" {
		var u unionInner
		_ = json.Unmarshal(raw, &u)
		fieldIDs, implIDs = u.Fields, u.Impls
	} else {
		var s structInner
		_ = json.Unmarshal(raw, &s)
		if s.Kind.Plain != nil {
			fieldIDs = s.Kind.Plain.Fields
		} else {
			fieldIDs = s.Kind.Tuple
		}
		implIDs = s.Impls
	}
	for _, fid := range fieldIDs {
		st.visitStructField(fid, qualified)
	}
	for _, implID := range implIDs {
		st.visitImpl(implID, qualified)
	}
}

func (st *parserState) visitStructField(id, parentQualified string) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true
	item, ok := st.crate.Index[id]
	if !ok {
		return
	}
	raw, ok := item.Inner["struct_field"]
	if !ok {
		return
	}
	var f structFieldInner
	_ = json.Unmarshal(raw, &f)
	qualified := parentQualified + "::" + item.Name
	sym := st.newSymbol(id, &item, "field", qualified)
	if t := decodeType(f.Type); t != nil {
		typeRef := st.typeToRef(t)
		for i := range st.out.Symbols {
			if st.out.Symbols[i].SymbolKey == sym.SymbolKey {
				st.out.Symbols[i].ReturnType = typeRef
				break
			}
		}
	}
}

func (st *parserState) visitEnum(id string, item *Item, raw json.RawMessage) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true
	qualified := st.baseQualified(id, item, "")
	st.newSymbol(id, item, "enum", qualified)

	var e enumInner
	_ = json.Unmarshal(raw, &e)
	for _, vid := range e.Variants {
		st.visitVariant(vid, qualified)
	}
	for _, implID := range e.Impls {
		st.visitImpl(implID, qualified)
	}
}

func (st *parserState) visitVariant(id, parentQualified string) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true
	item, ok := st.crate.Index[id]
	if !ok {
		return
	}
	qualified := parentQualified + "::" + item.Name
	st.newSymbol(id, &item, "variant", qualified)
}

func (st *parserState) visitTrait(id string, item *Item, raw json.RawMessage) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true
	qualified := st.baseQualified(id, item, "")
	st.newSymbol(id, item, "trait", qualified)

	var tr traitInner
	_ = json.Unmarshal(raw, &tr)
	for _, childID := range tr.Items {
		st.visitItem(childID, qualified)
	}
}

func (st *parserState) visitImpl(id, parentQualified string) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true
	item, ok := st.crate.Index[id]
	if !ok {
		return
	}
	raw, ok := item.Inner["impl"]
	if !ok {
		return
	}
	var impl implInner
	_ = json.Unmarshal(raw, &impl)
	if impl.Trait != nil {
		st.out.TraitImpls[parentQualified] = append(st.out.TraitImpls[parentQualified], impl.Trait.Name)
	}
	for _, methodID := range impl.Items {
		st.visitItem(methodID, parentQualified)
	}
}

func (st *parserState) addFunctionSymbol(id string, item *Item, raw json.RawMessage, parentQualified, fallbackKind string) {
	if st.seen[id] {
		return
	}
	st.seen[id] = true
	kind := fallbackKind
	if parentQualified == "" {
		kind = "function"
	}
	qualified := st.baseQualified(id, item, parentQualified)

	var fn functionInner
	_ = json.Unmarshal(raw, &fn)

	sym := st.newSymbol(id, item, kind, qualified)
	sym.IsAsync = fn.Header.IsAsync
	sym.IsConst = fn.Header.IsConst

	var params []model.Param
	for _, in := range fn.Sig.Inputs {
		var name string
		_ = json.Unmarshal(in[0], &name)
		t := decodeType(in[1])
		params = append(params, model.Param{Name: name, TypeRef: st.typeToRef(t)})
	}
	sym.Params = params

	var returnRef *model.TypeRef
	if len(fn.Sig.Output) > 0 && string(fn.Sig.Output) != "null" {
		returnRef = st.typeToRef(decodeType(fn.Sig.Output))
		sym.ReturnType = returnRef
	}

	for _, p := range fn.Generics.Params {
		sym.TypeParams = append(sym.TypeParams, model.TypeParam{Name: p.Name})
	}

	sym.Signature = formatFunctionSignature(item.Name, params, returnRef)

	for i := range st.out.Symbols {
		if st.out.Symbols[i].SymbolKey == sym.SymbolKey {
			st.out.Symbols[i] = sym
			break
		}
	}
}

// typeToRef renders a decoded type node into a model.TypeRef, attempting
// to back-resolve resolved_path ids into a symbol_key via the id-to-path
// table built at parse start.
func (st *parserState) typeToRef(n *typeNode) *model.TypeRef {
	if n == nil {
		return nil
	}
	ref := &model.TypeRef{Display: typeToString(n), Canonical: typeToString(n), Language: "rust"}
	if id := resolvedPathID(n); id != "" {
		if qualified, ok := st.idToPath[id]; ok {
			ref.SymbolKey = model.MakeRustSymbolKey(st.projectID, qualified)
		}
	}
	return ref
}

// formatFunctionSignature renders "fn NAME(p: T, …) -> R", omitting a
// "-> ()" unit return.
func formatFunctionSignature(name string, params []model.Param, ret *model.TypeRef) string {
	parts := make([]string, len(params))
	for i, p := range params {
		t := ""
		if p.TypeRef != nil {
			t = p.TypeRef.Display
		}
		parts[i] = fmt.Sprintf("%s: %s", p.Name, t)
	}
	sig := fmt.Sprintf("fn %s(%s)", name, strings.Join(parts, ", "))
	if ret != nil && ret.Display != "" && ret.Display != "()" {
		sig += " -> " + ret.Display
	}
	return sig
}
