package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaAnalyze(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "# Page"})
	}))
	defer ts.Close()

	c := NewOllama(ts.URL, "qwen2.5vl:32b")
	out, err := c.Analyze(context.Background(), AnalyzeRequest{
		System:      "sys",
		Prompt:      "transcribe",
		Image:       []byte{1, 2, 3},
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out != "# Page" {
		t.Fatalf("unexpected output %q", out)
	}
	if got["model"] != "qwen2.5vl:32b" {
		t.Fatalf("unexpected model %v", got["model"])
	}
	if got["stream"] != false {
		t.Fatalf("expected stream false, got %v", got["stream"])
	}
	if got["system"] != "sys" {
		t.Fatalf("unexpected system %v", got["system"])
	}
	images, ok := got["images"].([]any)
	if !ok || len(images) != 1 {
		t.Fatalf("expected one base64 image, got %v", got["images"])
	}
}

func TestOllamaAnalyzeErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewOllama(ts.URL, "missing")
	if _, err := c.Analyze(context.Background(), AnalyzeRequest{Prompt: "p"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestOllamaEnsureModel(t *testing.T) {
	pulled := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["name"] != "qwen2.5vl:32b" {
			t.Fatalf("unexpected model %v", req["name"])
		}
		pulled = true
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}))
	defer ts.Close()

	c := NewOllama(ts.URL, "qwen2.5vl:32b")
	if err := c.EnsureModel(context.Background()); err != nil {
		t.Fatalf("ensure model: %v", err)
	}
	if !pulled {
		t.Fatal("expected a pull request")
	}
}

func TestOpenAIAnalyze(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Fatalf("missing bearer key, got %q", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "described"}},
			},
		})
	}))
	defer ts.Close()

	c := NewOpenAI(ts.URL, "gpt-4o-mini", "secret")
	out, err := c.Analyze(context.Background(), AnalyzeRequest{Prompt: "p", Image: []byte{1}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out != "described" {
		t.Fatalf("unexpected output %q", out)
	}
}
