package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	genai "google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers with no candidates.
var ErrEmptyResponse = errors.New("inference: empty response from model")

// DefaultTimeout bounds a single inference round trip. Generation calls for
// long word counts stay comfortably under it.
const DefaultTimeout = 30 * time.Second

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiClient) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGeminiClient builds a client for the given model. The API key comes
// from deployment config; it is never read from a compiled-in fallback.
func NewGeminiClient(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("inference: creating genai client: %w", err)
	}

	g := &GeminiClient{cli: cli, model: model, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate performs one model call under the client's timeout. It never
// retries on its own; callers that may retry go through WithRetry.
func (g *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{}
	if req.JSONOutput {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.Prompt}}}},
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("inference: model %s: %w", g.model, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Response{Text: resp.Candidates[0].Content.Parts[0].Text}, nil
}
