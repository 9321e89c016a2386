package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/markconv/markconv/internal/exporter"
	"github.com/markconv/markconv/internal/importer"
)

func testHandlers() *Handlers {
	return &Handlers{
		Importer:       importer.New(importer.Options{}),
		Exporter:       exporter.New(exporter.Options{}),
		MaxUploadBytes: 1 << 20,
		StartedAt:      time.Now(),
		Version:        "test",
		BuildSHA:       "abc123",
		BuildDate:      "2026-01-01T00:00:00Z",
	}
}

func testRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", HealthHandler())
	r.Post("/api/import", h.ImportHandler())
	r.Post("/api/export/{format}", h.ExportHandler())
	r.Get("/api/formats", h.FormatsHandler())
	r.Get("/api/status", h.StatusHandler())
	r.Get("/api/openapi.json", OpenAPIHandler())
	return r
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImportHandler(t *testing.T) {
	h := testHandlers()
	body, ctype := multipartUpload(t, "file", "notes.txt", []byte("hello **markdown**"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Markdown != "hello **markdown**" {
		t.Fatalf("unexpected markdown %q", resp.Markdown)
	}
	if resp.Message != "Converted notes.txt" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestImportHandlerMissingFile(t *testing.T) {
	h := testHandlers()
	body, ctype := multipartUpload(t, "other", "notes.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400 got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error == "" {
		t.Fatalf("missing error message")
	}
}

func TestImportHandlerUnsupportedFormat(t *testing.T) {
	h := testHandlers()
	body, ctype := multipartUpload(t, "file", "blob.bin", []byte{0x00, 0x01, 0x02})
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("want 415 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestImportHandlerEncryptedPDF(t *testing.T) {
	h := testHandlers()
	body, ctype := multipartUpload(t, "file", "locked.pdf", []byte("%PDF-1.7\n<< /Encrypt 2 0 R >>"))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestImportHandlerTooLarge(t *testing.T) {
	h := testHandlers()
	h.MaxUploadBytes = 64
	body, ctype := multipartUpload(t, "file", "big.txt", bytes.Repeat([]byte("a"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413 got %d", rec.Code)
	}
}

func TestExportHandler(t *testing.T) {
	h := testHandlers()
	payload, _ := json.Marshal(ExportRequest{Markdown: "# Title\n\nBody text.\n"})
	req := httptest.NewRequest(http.MethodPost, "/api/export/rtf", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/rtf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, `filename="document.rtf"`) {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), `{\rtf1\ansi`) {
		t.Fatalf("body is not rtf: %q", rec.Body.String()[:40])
	}
}

func TestExportHandlerEmptyMarkdown(t *testing.T) {
	h := testHandlers()
	payload, _ := json.Marshal(ExportRequest{Markdown: "  \n"})
	req := httptest.NewRequest(http.MethodPost, "/api/export/docx", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400 got %d", rec.Code)
	}
}

func TestExportHandlerUnknownTarget(t *testing.T) {
	h := testHandlers()
	payload, _ := json.Marshal(ExportRequest{Markdown: "# x"})
	req := httptest.NewRequest(http.MethodPost, "/api/export/odt", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestFormatsHandler(t *testing.T) {
	h := testHandlers()
	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", rec.Code)
	}
	var resp FormatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !contains(resp.Import, "pdf") || !contains(resp.Import, "docx") {
		t.Fatalf("missing import formats: %v", resp.Import)
	}
	if !contains(resp.Export, "rtf") || !contains(resp.Export, "pdf") {
		t.Fatalf("missing export formats: %v", resp.Export)
	}
}

func TestStatusHandler(t *testing.T) {
	h := testHandlers()
	h.VisionBackend = "ollama"
	h.VisionModel = "qwen2.5vl:32b"
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", rec.Code)
	}
	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Version != "test" || resp.Goroutines == 0 {
		t.Fatalf("unexpected status %+v", resp)
	}
	if !resp.Vision.Enabled || resp.Vision.Backend != "ollama" {
		t.Fatalf("unexpected vision status %+v", resp.Vision)
	}
}

func TestOpenAPIHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil)
	rec := httptest.NewRecorder()
	testRouter(testHandlers()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MarkConvert API") {
		t.Fatalf("missing api title in schema")
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := APIKeyMiddleware("secret")(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 got %d", rec.Code)
	}
	if rec.Body.String() != `{"error":"unauthorized"}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", rec.Code)
	}

	open := APIKeyMiddleware("")(inner)
	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty key must disable auth, got %d", rec.Code)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
