// Package httpapi exposes the ingest pipeline over plain net/http, grounded
// on internal/server's handler/middleware shape, restyled for a JSON API
// whose one HTML route is the doc-block preview page.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
)

// errorResponse is the {"error": "..."} body returned on every non-2xx
// response, per spec.
type errorResponse struct {
	Error string `json:"error"`
}

// statusForKind maps a docxerr.Kind onto the HTTP status spec.md §6
// assigns it, grounded on the original's From<RegistryError>/From<ControlError>
// for ApiError impls (UnknownSolution->404, CapacityReached/BuildFailed->500,
// Store::InvalidInput->400, Parse->400, Store::Surreal->500).
func statusForKind(kind docxerr.Kind) int {
	switch kind {
	case docxerr.InvalidInput, docxerr.Parse:
		return http.StatusBadRequest
	case docxerr.NotFound:
		return http.StatusNotFound
	case docxerr.Timeout:
		return http.StatusRequestTimeout
	case docxerr.CapacityReached, docxerr.BuildFailed, docxerr.StorageFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeErr maps err through docxerr and writes the mapped status. A plain
// (non-docxerr) error maps to StorageFailure's 500, same as KindOf's default.
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusForKind(docxerr.KindOf(err)), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
