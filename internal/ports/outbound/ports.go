// Package outbound defines the interfaces the core consumes from the
// outside world: the LLM, the weekly-deal source, ID generation and time.
package outbound

import (
	"context"
	"time"
)

// ChatRequest is a single chat-completion call.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// LLMClient issues chat completions against the model provider. The handle
// is process-scoped and safe for concurrent calls.
type LLMClient interface {
	// ChatCompletion returns the raw assistant text for the request.
	ChatCompletion(ctx context.Context, req ChatRequest) (string, error)
	// ChatCompletionWithImage is the vision variant; imageURL may be a
	// data URL carrying base64 content.
	ChatCompletionWithImage(ctx context.Context, req ChatRequest, imageURL string) (string, error)
}

// Deal is one normalized on-sale item from a weekly flyer.
type Deal struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price,omitempty"`
	OnSale bool    `json:"on_sale"`
}

// DealSource returns the weekly deals for a store and postal code.
// Implementations may return an empty slice on upstream failure; callers
// treat deal lookup as best-effort and never fatal.
type DealSource interface {
	GetWeeklyDeals(ctx context.Context, store, postalCode string) ([]Deal, error)
}

// IDGenerator mints identifiers. Abstracted so tests can assert on
// freshness and uniqueness without parsing real UUIDs.
type IDGenerator interface {
	NewUUID() string
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}
