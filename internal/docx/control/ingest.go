package control

import (
	"strings"
	"time"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
	"github.com/ternarybob/docx-mcp/internal/docx/parsecs"
	"github.com/ternarybob/docx-mcp/internal/docx/parserust"
)

// CsharpIngestRequest is the ingest_csharp_xml request shape. At least one
// of XML/XMLPath must resolve to non-empty content; XML wins when both do.
type CsharpIngestRequest struct {
	ProjectID        string
	XML              string
	XMLPath          string
	IngestID         string
	SourcePath       string
	SourceModifiedAt string
	ToolVersion      string
	SourceHash       string
}

// CsharpIngestReport summarizes one C# XML ingest.
type CsharpIngestReport struct {
	AssemblyName       string
	SymbolCount        int
	DocBlockCount      int
	DocumentsEdgeCount int
	DocSourceID        string
}

// RustdocIngestRequest is the ingest_rustdoc_json request shape. At least
// one of JSON/JSONPath must resolve to non-empty content; JSON wins when
// both do.
type RustdocIngestRequest struct {
	ProjectID        string
	JSON             string
	JSONPath         string
	IngestID         string
	SourcePath       string
	SourceModifiedAt string
	ToolVersion      string
	SourceHash       string
}

// RustdocIngestReport summarizes one rustdoc JSON ingest.
type RustdocIngestReport struct {
	CrateName          string
	SymbolCount        int
	DocBlockCount      int
	DocumentsEdgeCount int
	DocSourceID        string
}

// IngestCsharpXML parses, dedupes, persists, and links a C# XML
// documentation payload.
func (p *Plane) IngestCsharpXML(req CsharpIngestRequest) (CsharpIngestReport, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return CsharpIngestReport{}, docxerr.Invalid("project_id is required")
	}

	xml, err := resolveIngestPayload(req.XML, req.XMLPath, "xml")
	if err != nil {
		return CsharpIngestReport{}, err
	}

	parsed, err := parsecs.Parse([]byte(xml), req.ProjectID, parsecs.Options{})
	if err != nil {
		return CsharpIngestReport{}, docxerr.Wrap(docxerr.Parse, "parse csharp xml", err)
	}

	if parsed.AssemblyName != "" {
		if _, err := p.UpsertProject(ProjectUpsertRequest{
			ProjectID: req.ProjectID,
			Language:  "csharp",
			Aliases:   []string{parsed.AssemblyName},
		}); err != nil {
			return CsharpIngestReport{}, err
		}
	}

	storedSymbols, err := p.storeSymbols(parsed.Symbols)
	if err != nil {
		return CsharpIngestReport{}, err
	}
	storedBlocks, err := p.store.CreateDocBlocks(parsed.DocBlocks)
	if err != nil {
		return CsharpIngestReport{}, err
	}

	docSourceID, err := p.createDocSourceIfNeeded(docSourceInput{
		projectID:        req.ProjectID,
		ingestID:         req.IngestID,
		language:         "csharp",
		sourceKind:       model.SourceKindCsharpXML,
		sourcePath:       req.SourcePath,
		toolVersion:      req.ToolVersion,
		sourceHash:       req.SourceHash,
		sourceModifiedAt: req.SourceModifiedAt,
	})
	if err != nil {
		return CsharpIngestReport{}, err
	}

	documentsEdgeCount, err := p.persistRelations(storedSymbols, storedBlocks, req.ProjectID, req.IngestID, docSourceID, nil)
	if err != nil {
		return CsharpIngestReport{}, err
	}

	if _, err := p.createIngestRecord(req.ProjectID, req.IngestID, req.SourceModifiedAt, ""); err != nil {
		return CsharpIngestReport{}, err
	}

	return CsharpIngestReport{
		AssemblyName:       parsed.AssemblyName,
		SymbolCount:        len(storedSymbols),
		DocBlockCount:      len(storedBlocks),
		DocumentsEdgeCount: documentsEdgeCount,
		DocSourceID:        docSourceID,
	}, nil
}

// IngestRustdocJSON parses, dedupes, persists, and links a rustdoc JSON
// crate index.
func (p *Plane) IngestRustdocJSON(req RustdocIngestRequest) (RustdocIngestReport, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return RustdocIngestReport{}, docxerr.Invalid("project_id is required")
	}

	json, err := resolveIngestPayload(req.JSON, req.JSONPath, "json")
	if err != nil {
		return RustdocIngestReport{}, err
	}

	parsed, err := parserust.Parse([]byte(json), req.ProjectID, parserust.Options{})
	if err != nil {
		return RustdocIngestReport{}, docxerr.Wrap(docxerr.Parse, "parse rustdoc json", err)
	}

	if parsed.CrateName != "" {
		if _, err := p.UpsertProject(ProjectUpsertRequest{
			ProjectID: req.ProjectID,
			Language:  "rust",
			Aliases:   []string{parsed.CrateName},
		}); err != nil {
			return RustdocIngestReport{}, err
		}
	}

	storedSymbols, err := p.storeSymbols(parsed.Symbols)
	if err != nil {
		return RustdocIngestReport{}, err
	}
	storedBlocks, err := p.store.CreateDocBlocks(parsed.DocBlocks)
	if err != nil {
		return RustdocIngestReport{}, err
	}

	docSourceID, err := p.createDocSourceIfNeeded(docSourceInput{
		projectID:        req.ProjectID,
		ingestID:         req.IngestID,
		language:         "rust",
		sourceKind:       model.SourceKindRustdocJSON,
		sourcePath:       req.SourcePath,
		toolVersion:      req.ToolVersion,
		sourceHash:       req.SourceHash,
		sourceModifiedAt: req.SourceModifiedAt,
	})
	if err != nil {
		return RustdocIngestReport{}, err
	}

	documentsEdgeCount, err := p.persistRelations(storedSymbols, storedBlocks, req.ProjectID, req.IngestID, docSourceID, parsed.TraitImpls)
	if err != nil {
		return RustdocIngestReport{}, err
	}

	if _, err := p.createIngestRecord(req.ProjectID, req.IngestID, req.SourceModifiedAt, ""); err != nil {
		return RustdocIngestReport{}, err
	}

	return RustdocIngestReport{
		CrateName:          parsed.CrateName,
		SymbolCount:        len(storedSymbols),
		DocBlockCount:      len(storedBlocks),
		DocumentsEdgeCount: documentsEdgeCount,
		DocSourceID:        docSourceID,
	}, nil
}

// storeSymbols dedupes by symbol_key (first occurrence wins) and upserts
// the survivors in order.
func (p *Plane) storeSymbols(symbols []model.Symbol) ([]model.Symbol, error) {
	deduped := dedupeSymbols(symbols)
	stored := make([]model.Symbol, 0, len(deduped))
	for _, sym := range deduped {
		saved, err := p.store.UpsertSymbol(sym)
		if err != nil {
			return nil, err
		}
		stored = append(stored, saved)
	}
	return stored, nil
}

type docSourceInput struct {
	projectID        string
	ingestID         string
	language         string
	sourceKind       string
	sourcePath       string
	toolVersion      string
	sourceHash       string
	sourceModifiedAt string
}

// createDocSourceIfNeeded only persists a DocSource row when at least one
// provenance field was supplied; a bare in-memory parse with nothing else
// attached does not get one.
func (p *Plane) createDocSourceIfNeeded(in docSourceInput) (string, error) {
	hasSource := in.sourcePath != "" || in.toolVersion != "" || in.sourceHash != "" || in.sourceModifiedAt != ""
	if !hasSource {
		return "", nil
	}
	created, err := p.store.CreateDocSource(model.DocSource{
		ProjectID:        in.projectID,
		IngestID:         in.ingestID,
		Language:         in.language,
		SourceKind:       in.sourceKind,
		Path:             in.sourcePath,
		ToolVersion:      in.toolVersion,
		Hash:             in.sourceHash,
		SourceModifiedAt: in.sourceModifiedAt,
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// createIngestRecord writes the provenance row for this ingest run,
// returning the final scoped ingest id.
func (p *Plane) createIngestRecord(projectID, callerID, sourceModifiedAt, projectVersion string) (string, error) {
	created, err := p.store.CreateIngest(model.Ingest{
		ProjectID:        projectID,
		ProjectVersion:   projectVersion,
		SourceModifiedAt: sourceModifiedAt,
		IngestedAt:       time.Now().UTC().Format(time.RFC3339),
	}, callerID)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}
