// Package parsecs maps compiler-emitted C# XML documentation comments onto
// the canonical symbol/doc-block model.
package parsecs

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

// Options configures a parse run. Empty for now; reserved for future
// knobs (e.g. a max-member cap) the way the original carried options
// structs through its parser entrypoints.
type Options struct{}

// Output is everything one parse run produces.
type Output struct {
	AssemblyName string
	Symbols      []model.Symbol
	DocBlocks    []model.DocBlock
}

// Error wraps a parse failure: XML well-formedness, unexpected structure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("csharp xml parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("csharp xml parse error: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Parse decodes an XML documentation file (the <doc> root element with
// <assembly> and <members> children) into symbols and doc blocks scoped to
// projectID.
func Parse(xmlBytes []byte, projectID string, _ Options) (Output, error) {
	dec := xml.NewDecoder(strings.NewReader(string(xmlBytes)))
	var out Output

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Output{}, &Error{Message: "malformed xml", Cause: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "assembly":
			assembly, err := parseElement(dec, start)
			if err != nil {
				return Output{}, &Error{Message: "malformed assembly element", Cause: err}
			}
			if name := assembly.firstChildElement("name"); name != nil {
				out.AssemblyName = strings.TrimSpace(rawText(name))
			}
		case "members":
			syms, blocks, err := collectMembers(dec, xmlBytes, projectID)
			if err != nil {
				return Output{}, &Error{Message: "malformed members element", Cause: err}
			}
			out.Symbols = append(out.Symbols, syms...)
			out.DocBlocks = append(out.DocBlocks, blocks...)
		}
	}

	return out, nil
}

// collectMembers scans the content of a <members> element, building a
// Symbol/DocBlock pair per <member> child. It tracks each member's start and
// end byte offset in xmlBytes via dec.InputOffset() so DocBlock.Raw can hold
// the verbatim original slice, matching the original Rust parser's
// `xml[member.range()]` semantics rather than a re-rendered approximation.
func collectMembers(dec *xml.Decoder, xmlBytes []byte, projectID string) ([]model.Symbol, []model.DocBlock, error) {
	var symbols []model.Symbol
	var blocks []model.DocBlock
	for {
		offsetBefore := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return symbols, blocks, nil
		case xml.StartElement:
			el, err := parseElement(dec, t)
			if err != nil {
				return nil, nil, err
			}
			if t.Name.Local != "member" {
				continue
			}
			raw := string(xmlBytes[offsetBefore:dec.InputOffset()])
			sym, block, ok := convertMember(el, projectID, raw)
			if !ok {
				continue
			}
			symbols = append(symbols, sym)
			blocks = append(blocks, block)
		}
	}
}

func convertMember(member *node, projectID, raw string) (model.Symbol, model.DocBlock, bool) {
	docID := member.attr("name")
	if docID == "" {
		return model.Symbol{}, model.DocBlock{}, false
	}
	parts := parseDocID(docID)
	symbolKey := model.MakeCsharpSymbolKey(projectID, docID)

	sym := model.Symbol{
		ProjectID:     projectID,
		Language:      "csharp",
		SymbolKey:     symbolKey,
		Kind:          parts.Kind,
		Name:          extractSimpleName(parts.QualifiedName),
		QualifiedName: parts.QualifiedName,
		DisplayName:   parts.QualifiedName + parts.Signature,
		Signature:     parts.Signature,
		SourceIDs:     []model.SourceID{{Kind: "doc_id", Value: docID}},
	}

	block := model.DocBlock{
		ProjectID:  projectID,
		SymbolKey:  symbolKey,
		Language:   "csharp",
		SourceKind: model.SourceKindCsharpXML,
		Raw:        raw,
	}

	if summary := member.firstChildElement("summary"); summary != nil {
		block.Summary = strings.TrimSpace(renderDocText(summary))
		sym.DocSummary = block.Summary
	}
	if remarks := member.firstChildElement("remarks"); remarks != nil {
		block.Remarks = strings.TrimSpace(renderDocText(remarks))
	}
	if returns := member.firstChildElement("returns"); returns != nil {
		block.Returns = strings.TrimSpace(renderDocText(returns))
	}
	if value := member.firstChildElement("value"); value != nil {
		block.Value = strings.TrimSpace(renderDocText(value))
	}
	if dep := member.firstChildElement("deprecated"); dep != nil {
		block.Deprecated = strings.TrimSpace(renderDocText(dep))
		sym.IsDeprecated = true
	}
	if inherit := member.firstChildElement("inheritdoc"); inherit != nil {
		block.InheritDoc = &model.DocInherit{
			Cref: inherit.attr("cref"),
			Path: inherit.attr("path"),
		}
	}

	for _, p := range member.childElements("param") {
		block.Params = append(block.Params, model.DocParam{
			Name:        p.attr("name"),
			Description: strings.TrimSpace(renderDocText(p)),
		})
	}
	for _, tp := range member.childElements("typeparam") {
		block.TypeParams = append(block.TypeParams, model.DocTypeParam{
			Name:        tp.attr("name"),
			Description: strings.TrimSpace(renderDocText(tp)),
		})
	}
	for _, ex := range member.childElements("exception") {
		cref := ex.attr("cref")
		var typeRef *model.TypeRef
		if cref != "" {
			typeRef = &model.TypeRef{
				Display: cref, Canonical: cref, Language: "csharp",
				SymbolKey: model.MakeCsharpSymbolKey(projectID, cref),
			}
		}
		block.Exceptions = append(block.Exceptions, model.DocException{
			TypeRef:     typeRef,
			Description: strings.TrimSpace(renderDocText(ex)),
		})
	}
	for _, ex := range member.childElements("example") {
		block.Examples = append(block.Examples, model.DocExample{
			Code: strings.TrimSpace(renderDocText(ex)),
		})
	}
	for _, sa := range member.childElements("seealso") {
		label, target, kind := parseSeeAlsoAttrs(sa)
		if target == "" {
			continue
		}
		block.SeeAlso = append(block.SeeAlso, model.SeeAlso{
			Label: label, Target: target, TargetKind: kind,
		})
	}
	for _, note := range member.childElements("note") {
		if text := strings.TrimSpace(renderDocText(note)); text != "" {
			block.Notes = append(block.Notes, text)
		}
	}
	for _, warn := range member.childElements("warning") {
		if text := strings.TrimSpace(renderDocText(warn)); text != "" {
			block.Warnings = append(block.Warnings, text)
		}
	}

	return sym, block, true
}
