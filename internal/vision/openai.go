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

// OpenAI talks to any OpenAI-compatible chat completions endpoint that
// accepts image parts, such as vLLM or LM Studio.
type OpenAI struct {
	BaseURL    string
	Model      string
	APIKey     string
	httpClient *http.Client
}

// NewOpenAI returns a client for an OpenAI-style /v1/chat/completions API.
func NewOpenAI(baseURL, model, apiKey string) *OpenAI {
	return &OpenAI{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		APIKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Backend identifies this client in logs and status reports.
func (c *OpenAI) Backend() string { return "openai" }

// EnsureModel verifies the configured model is served. OpenAI-style APIs
// have no pull semantics, so this only checks the model list.
func (c *OpenAI) EnsureModel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("list models: status %d", resp.StatusCode)
	}
	var v struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return fmt.Errorf("list models: decode response: %w", err)
	}
	for _, m := range v.Data {
		if m.ID == c.Model {
			return nil
		}
	}
	return fmt.Errorf("model %s not served by %s", c.Model, c.BaseURL)
}

// Analyze sends the image as a data URI part of a single-turn chat.
func (c *OpenAI) Analyze(ctx context.Context, r AnalyzeRequest) (string, error) {
	content := []map[string]any{
		{"type": "text", "text": r.Prompt},
	}
	if len(r.Image) > 0 {
		uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(r.Image)
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": uri},
		})
	}
	messages := []map[string]any{}
	if r.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": r.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": content})
	body, _ := json.Marshal(map[string]any{
		"model":       c.Model,
		"messages":    messages,
		"temperature": r.Temperature,
		"stream":      false,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat completions: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var v struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return "", fmt.Errorf("chat completions: decode response: %w", err)
	}
	if len(v.Choices) == 0 {
		return "", fmt.Errorf("chat completions: empty choices")
	}
	return v.Choices[0].Message.Content, nil
}

func (c *OpenAI) authorize(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}
