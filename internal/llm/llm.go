// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the language model client used by the answer
// pipeline. The pipeline depends only on the Client interface; the
// OpenAI-compatible backend is the production implementation.
package llm

import "context"

// Request is one structured conversation turn sent to the model: a
// system message, a user message, and sampling parameters.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Client generates text from a structured conversation. Implementations
// wrap transport and quota failures with types.ErrUpstreamUnavailable.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
