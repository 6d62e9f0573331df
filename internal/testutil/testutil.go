// Package testutil provides shared fakes for the outbound ports: a
// scripted LLM client, a deterministic ID generator and a fixed clock.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/planea/aiserver/internal/ports/outbound"
)

// ScriptedLLM replays canned replies in order, repeating the last one once
// the script is exhausted. Safe for concurrent calls.
type ScriptedLLM struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	// Fn, when set, overrides Replies entirely.
	Fn func(req outbound.ChatRequest) (string, error)

	Calls     []outbound.ChatRequest
	ImageURLs []string
	next      int
}

func (s *ScriptedLLM) ChatCompletion(ctx context.Context, req outbound.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, req)
	if s.Fn != nil {
		return s.Fn(req)
	}
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Replies) == 0 {
		return "", fmt.Errorf("scripted LLM has no replies")
	}
	reply := s.Replies[min(s.next, len(s.Replies)-1)]
	s.next++
	return reply, nil
}

func (s *ScriptedLLM) ChatCompletionWithImage(ctx context.Context, req outbound.ChatRequest, imageURL string) (string, error) {
	s.mu.Lock()
	s.ImageURLs = append(s.ImageURLs, imageURL)
	s.mu.Unlock()
	return s.ChatCompletion(ctx, req)
}

// CallCount returns how many completions have been requested.
func (s *ScriptedLLM) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// SequenceIDs mints "id-1", "id-2", ... deterministically.
type SequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (s *SequenceIDs) NewUUID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// RecipeJSON builds a minimal valid recipe payload with five steps, the
// floor the generator enforces on model output.
func RecipeJSON(title string, minutes int) string {
	return fmt.Sprintf(`{
		"title": %q,
		"servings": 4,
		"total_minutes": %d,
		"ingredients": [
			{"name": "chicken breasts", "quantity": 600, "unit": "g", "category": "meats"},
			{"name": "carrots", "quantity": 3, "unit": "unit", "category": "vegetables"}
		],
		"steps": [
			"Dice the carrots into 1cm cubes.",
			"Season the chicken.",
			"Heat oil in a large pan.",
			"Cook the chicken until done.",
			"Serve with the carrots."
		],
		"equipment": ["pan"],
		"tags": ["easy"]
	}`, title, minutes)
}
