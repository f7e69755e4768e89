package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
)

// genericIngestRequest is POST /ingest's body: a kind discriminator picks
// which typed ingest the contents are parsed as, matching the MCP
// ingestion_help tool's documented shape for callers that want one route
// regardless of payload language.
type genericIngestRequest struct {
	Solution         string `json:"solution" validate:"required"`
	ProjectID        string `json:"project_id" validate:"required"`
	Kind             string `json:"kind" validate:"required,oneof=csharp_xml rustdoc_json"`
	Contents         string `json:"contents"`
	ContentsPath     string `json:"contents_path"`
	IngestID         string `json:"ingest_id"`
	SourcePath       string `json:"source_path"`
	SourceModifiedAt string `json:"source_modified_at"`
	ToolVersion      string `json:"tool_version"`
	SourceHash       string `json:"source_hash"`
}

type csharpIngestRequest struct {
	Solution         string `json:"solution" validate:"required"`
	ProjectID        string `json:"project_id" validate:"required"`
	XML              string `json:"xml"`
	XMLPath          string `json:"xml_path"`
	IngestID         string `json:"ingest_id"`
	SourcePath       string `json:"source_path"`
	SourceModifiedAt string `json:"source_modified_at"`
	ToolVersion      string `json:"tool_version"`
	SourceHash       string `json:"source_hash"`
}

type rustdocIngestRequest struct {
	Solution         string `json:"solution" validate:"required"`
	ProjectID        string `json:"project_id" validate:"required"`
	JSON             string `json:"json"`
	JSONPath         string `json:"json_path"`
	IngestID         string `json:"ingest_id"`
	SourcePath       string `json:"source_path"`
	SourceModifiedAt string `json:"source_modified_at"`
	ToolVersion      string `json:"tool_version"`
	SourceHash       string `json:"source_hash"`
}

func (s *Server) handleGenericIngest(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	r, cancel := s.boundBody(w, r)
	defer cancel()

	var req genericIngestRequest
	if !s.decode(w, r, &req) {
		return
	}

	plane, ok := s.planeFor(w, req.Solution)
	if !ok {
		return
	}

	switch req.Kind {
	case "csharp_xml":
		report, err := plane.IngestCsharpXML(control.CsharpIngestRequest{
			ProjectID: req.ProjectID, XML: req.Contents, XMLPath: req.ContentsPath,
			IngestID: req.IngestID, SourcePath: req.SourcePath,
			SourceModifiedAt: req.SourceModifiedAt, ToolVersion: req.ToolVersion, SourceHash: req.SourceHash,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	case "rustdoc_json":
		report, err := plane.IngestRustdocJSON(control.RustdocIngestRequest{
			ProjectID: req.ProjectID, JSON: req.Contents, JSONPath: req.ContentsPath,
			IngestID: req.IngestID, SourcePath: req.SourcePath,
			SourceModifiedAt: req.SourceModifiedAt, ToolVersion: req.ToolVersion, SourceHash: req.SourceHash,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	default:
		writeError(w, http.StatusBadRequest, "kind must be csharp_xml or rustdoc_json")
	}
}

func (s *Server) handleCsharpIngest(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	r, cancel := s.boundBody(w, r)
	defer cancel()

	var req csharpIngestRequest
	if !s.decode(w, r, &req) {
		return
	}
	plane, ok := s.planeFor(w, req.Solution)
	if !ok {
		return
	}
	report, err := plane.IngestCsharpXML(control.CsharpIngestRequest{
		ProjectID: req.ProjectID, XML: req.XML, XMLPath: req.XMLPath,
		IngestID: req.IngestID, SourcePath: req.SourcePath,
		SourceModifiedAt: req.SourceModifiedAt, ToolVersion: req.ToolVersion, SourceHash: req.SourceHash,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRustdocIngest(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	r, cancel := s.boundBody(w, r)
	defer cancel()

	var req rustdocIngestRequest
	if !s.decode(w, r, &req) {
		return
	}
	plane, ok := s.planeFor(w, req.Solution)
	if !ok {
		return
	}
	report, err := plane.IngestRustdocJSON(control.RustdocIngestRequest{
		ProjectID: req.ProjectID, JSON: req.JSON, JSONPath: req.JSONPath,
		IngestID: req.IngestID, SourcePath: req.SourcePath,
		SourceModifiedAt: req.SourceModifiedAt, ToolVersion: req.ToolVersion, SourceHash: req.SourceHash,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// decode reads and validates the JSON body, writing the appropriate error
// response (413 for an oversized body, 400 for malformed JSON or a failed
// validation tag) and returning false when it could not produce a usable
// request.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "malformed json body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// planeFor resolves solution to a tenant's control plane, writing the
// mapped error response and returning ok=false on failure.
func (s *Server) planeFor(w http.ResponseWriter, solution string) (*control.Plane, bool) {
	handle, err := s.resolve(solution)
	if err != nil {
		writeErr(w, err)
		return nil, false
	}
	if handle.Control == nil {
		writeErr(w, docxerr.New(docxerr.StorageFailure, "tenant handle missing control plane"))
		return nil, false
	}
	return handle.Control, true
}
