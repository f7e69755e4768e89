package httpapi

import (
	"net/http"
	"strings"

	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
)

// handlePreviewDocBlock renders one symbol's doc blocks as a readable HTML
// page, for an operator to eyeball ingested documentation rather than read
// raw JSON. Query params: solution, project_id, symbol_key (all required),
// ingest_id (optional, narrows to one ingest).
func (s *Server) handlePreviewDocBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	solution := q.Get("solution")
	projectID := q.Get("project_id")
	symbolKey := q.Get("symbol_key")
	if solution == "" || projectID == "" || symbolKey == "" {
		writeError(w, http.StatusBadRequest, "solution, project_id, and symbol_key are required")
		return
	}

	plane, ok := s.planeFor(w, solution)
	if !ok {
		return
	}

	blocks, err := plane.ListDocBlocks(projectID, symbolKey, q.Get("ingest_id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if len(blocks) == 0 {
		writeErr(w, docxerr.NotFoundf("no doc blocks for symbol %q", symbolKey))
		return
	}

	var body strings.Builder
	for _, block := range blocks {
		html, err := control.RenderDocBlockHTML(block)
		if err != nil {
			writeErr(w, err)
			return
		}
		body.WriteString(html)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" + symbolKey + "</title></head><body>\n"))
	_, _ = w.Write([]byte(body.String()))
	_, _ = w.Write([]byte("</body></html>"))
}
