package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/registry"
	"github.com/ternarybob/docx-mcp/internal/docx/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	build := func(tenantID string) (*registry.Handle, error) {
		s, err := store.Open(store.Options{Dir: t.TempDir()}, arbor.NewLogger())
		if err != nil {
			return nil, err
		}
		t.Cleanup(func() { _ = s.Close() })
		return &registry.Handle{Store: s, Control: control.New(s, arbor.NewLogger())}, nil
	}
	reg := registry.New(registry.Config{Build: build}, arbor.NewLogger())
	return New(DefaultConfig(), reg, arbor.NewLogger())
}

const testCsharpXML = `<doc><members>
  <member name="T:Acme.Foo"><summary>The Foo type.</summary></member>
</members></doc>`

func TestHealthReturnsOK(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTypedCsharpIngestSucceeds(t *testing.T) {
	srv := newTestServer(t)
	body, err := json.Marshal(csharpIngestRequest{Solution: "s1", ProjectID: "acme", XML: testCsharpXML})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ingest/csharp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.EqualValues(t, 1, report["SymbolCount"])
}

func TestGenericIngestDispatchesByKind(t *testing.T) {
	srv := newTestServer(t)
	body, err := json.Marshal(genericIngestRequest{
		Solution: "s1", ProjectID: "acme", Kind: "csharp_xml", Contents: testCsharpXML,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGenericIngestRejectsUnknownKind(t *testing.T) {
	srv := newTestServer(t)
	body, err := json.Marshal(genericIngestRequest{
		Solution: "s1", ProjectID: "acme", Kind: "yaml", Contents: "x",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestMissingSolutionIsValidationError(t *testing.T) {
	srv := newTestServer(t)
	body, err := json.Marshal(csharpIngestRequest{ProjectID: "acme", XML: testCsharpXML})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ingest/csharp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestEmptyPayloadMapsToBadRequest(t *testing.T) {
	srv := newTestServer(t)
	body, err := json.Marshal(csharpIngestRequest{Solution: "s1", ProjectID: "acme"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ingest/csharp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errBody errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.NotEmpty(t, errBody.Error)
}

func TestIngestRejectsNonPost(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ingest/csharp", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIngestOversizedBodyReturns413(t *testing.T) {
	srv := newTestServer(t)
	srv.config.MaxBodyBytes = 10

	body, err := json.Marshal(csharpIngestRequest{Solution: "s1", ProjectID: "acme", XML: testCsharpXML})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ingest/csharp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPreviewDocBlockRendersHTML(t *testing.T) {
	srv := newTestServer(t)
	body, err := json.Marshal(csharpIngestRequest{Solution: "s1", ProjectID: "acme", XML: testCsharpXML})
	require.NoError(t, err)
	ingestReq := httptest.NewRequest(http.MethodPost, "/ingest/csharp", bytes.NewReader(body))
	ingestRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(ingestRec, ingestReq)
	require.Equal(t, http.StatusOK, ingestRec.Code)

	req := httptest.NewRequest(http.MethodGet, "/preview/doc-block?solution=s1&project_id=acme&symbol_key=csharp%7Cacme%7CT:Acme.Foo", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "The Foo type.")
}

func TestPreviewDocBlockMissingParamsReturns400(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/preview/doc-block?solution=s1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewDocBlockUnknownSymbolReturns404(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/preview/doc-block?solution=s1&project_id=acme&symbol_key=T:Nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
