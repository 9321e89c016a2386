package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ollama is a tiny HTTP client for a local Ollama server.
type Ollama struct {
	BaseURL    string
	Model      string
	httpClient *http.Client
}

// NewOllama returns a client for the Ollama generate API.
func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Backend identifies this client in logs and status reports.
func (c *Ollama) Backend() string { return "ollama" }

// EnsureModel pulls the configured model so the first conversion does not pay
// the download cost.
func (c *Ollama) EnsureModel(ctx context.Context) error {
	body, _ := json.Marshal(map[string]any{"name": c.Model, "stream": false})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pull model %s: %w", c.Model, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pull model %s: status %d: %s", c.Model, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

// Analyze sends the image through the generate endpoint and returns the
// model's response text.
func (c *Ollama) Analyze(ctx context.Context, r AnalyzeRequest) (string, error) {
	payload := map[string]any{
		"model":  c.Model,
		"prompt": r.Prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": r.Temperature,
		},
	}
	if r.System != "" {
		payload["system"] = r.System
	}
	if len(r.Image) > 0 {
		payload["images"] = []string{base64.StdEncoding.EncodeToString(r.Image)}
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama generate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var v struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return "", fmt.Errorf("ollama generate: decode response: %w", err)
	}
	return v.Response, nil
}
