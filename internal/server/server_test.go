package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markconv/markconv/internal/config"
)

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.SetDefaults()
	return cfg
}

func TestServerRoutes(t *testing.T) {
	cfg := testConfig()
	srv := httptest.NewServer(New(cfg, nil, BuildInfo{Version: "test", SHA: "abc", Date: "2026-01-01"}))
	defer srv.Close()

	for _, tc := range []struct {
		path     string
		contains string
	}{
		{"/healthz", `"status":"ok"`},
		{"/", "MarkConvert"},
		{"/docs", "swagger-ui"},
		{"/api/openapi.json", "MarkConvert API"},
		{"/api/formats", `"export"`},
		{"/metrics", "markconv_build_info"},
	} {
		res, err := http.Get(srv.URL + tc.path)
		if err != nil {
			t.Fatalf("get %s: %v", tc.path, err)
		}
		body, _ := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("%s: want 200 got %d", tc.path, res.StatusCode)
		}
		if !strings.Contains(string(body), tc.contains) {
			t.Fatalf("%s: missing %q in response", tc.path, tc.contains)
		}
	}
}

func TestServerMetricsOnSeparatePort(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsAddr = ":9999"
	srv := httptest.NewServer(New(cfg, nil, BuildInfo{}))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get /metrics: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("metrics must not mount on the main port, got %d", res.StatusCode)
	}
}

func TestServerAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "secret"
	srv := httptest.NewServer(New(cfg, nil, BuildInfo{}))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 without key got %d", res.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get status with key: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("want 200 with key got %d", res.StatusCode)
	}

	res, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz must stay open, got %d", res.StatusCode)
	}
}

func TestServerImportExportFlow(t *testing.T) {
	cfg := testConfig()
	srv := httptest.NewServer(New(cfg, nil, BuildInfo{}))
	defer srv.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.md")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("# Round Trip\n\nBody.\n")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	res, err := http.Post(srv.URL+"/api/import", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var imported struct {
		Markdown string `json:"markdown"`
	}
	if err := json.NewDecoder(res.Body).Decode(&imported); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	_ = res.Body.Close()
	if imported.Markdown != "# Round Trip\n\nBody.\n" {
		t.Fatalf("unexpected markdown %q", imported.Markdown)
	}

	payload, _ := json.Marshal(map[string]string{"markdown": imported.Markdown})
	res, err = http.Post(srv.URL+"/api/export/docx", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("want 200 got %d: %s", res.StatusCode, data)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("export is not a docx archive")
	}
}
