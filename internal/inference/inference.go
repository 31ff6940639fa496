// Package inference wraps the hosted inference API behind a small interface
// so the moderation and generation packages can be tested with fakes and the
// provider can be swapped without touching business logic.
package inference

import (
	"context"
	"time"
)

// Request is one text-generation call. When JSONOutput is set the provider
// is asked for an application/json response body.
type Request struct {
	System     string // optional system instruction
	Prompt     string
	JSONOutput bool
}

// Response carries the model's answer.
type Response struct {
	Text string
}

// Client is the minimal surface the pipeline needs from an inference
// provider. Implementations must honour ctx cancellation and deadlines.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// WithRetry performs the call and, on failure, retries exactly once after a
// short backoff. Only idempotent read-style calls (classification, advisory,
// zero-shot labeling) go through here — content generation and anything that
// charges or persists is called directly so a flaky network can never double
// an effect.
func WithRetry(ctx context.Context, c Client, req Request) (*Response, error) {
	resp, err := c.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	select {
	case <-time.After(300 * time.Millisecond):
	case <-ctx.Done():
		return nil, err
	}

	return c.Generate(ctx, req)
}
