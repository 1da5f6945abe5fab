// Package llm is the boundary to the generation service. The core pipeline
// only sees Client; provider clients and cross-cutting behaviour (retries,
// rate limiting, logging, caching) are composed with Middleware.
package llm

import "context"

// Client turns a prompt into free text in a single round trip.
type Client interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
