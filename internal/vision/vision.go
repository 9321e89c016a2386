// Package vision wraps the optional vision-language backends used for the
// AI-assisted import path. A Client is constructed once at startup and
// injected into the importer; nothing in this package keeps global state.
package vision

import (
	"context"
	"fmt"
)

// AnalyzeRequest carries one page image and its instruction prompts.
type AnalyzeRequest struct {
	System      string
	Prompt      string
	Image       []byte
	Temperature float64
}

// Client analyzes page images with a vision-language model.
type Client interface {
	// Backend returns the backend kind, e.g. "ollama".
	Backend() string
	// EnsureModel checks that the configured model is available, pulling it
	// on backends that support downloads. Called once at startup.
	EnsureModel(ctx context.Context) error
	// Analyze sends one image with an instruction prompt and returns the
	// model's text output.
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)
}

// New constructs a Client for the given backend kind.
func New(kind, baseURL, model, apiKey string) (Client, error) {
	switch kind {
	case "ollama":
		return NewOllama(baseURL, model), nil
	case "openai":
		return NewOpenAI(baseURL, model, apiKey), nil
	default:
		return nil, fmt.Errorf("unknown vision backend %q", kind)
	}
}
