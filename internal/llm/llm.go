// Package llm talks to hosted language-model providers. It owns the static
// model capability table, the provider transports, and the classification of
// transport failures into user-actionable errors.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider identifies a hosted model vendor.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

// Request is a provider-agnostic single-turn completion request.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSONOutput asks the provider for its native JSON mode, when it has one.
	JSONOutput bool
}

// Response is the untyped reply of a completion call. Content is untrusted and
// must be validated by the caller.
type Response struct {
	Content      string
	Reasoning    string // provider-native reasoning text, if any
	FinishReason string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Transport is the remote capability for one provider. Implementations keep no
// per-caller state: the API key travels with every call.
type Transport interface {
	Provider() Provider
	// Complete sends one completion request.
	Complete(ctx context.Context, apiKey string, req *Request) (*Response, error)
	// Probe performs the cheapest authenticated call the provider offers.
	Probe(ctx context.Context, apiKey string) error
}

// Registry maps providers to their transports.
type Registry map[Provider]Transport

// NewRegistry builds a registry from the given transports.
func NewRegistry(transports ...Transport) Registry {
	r := make(Registry, len(transports))
	for _, t := range transports {
		r[t.Provider()] = t
	}
	return r
}

// Get returns the transport for p.
func (r Registry) Get(p Provider) (Transport, bool) {
	t, ok := r[p]
	return t, ok
}

// StatusError is returned by transports when the provider answers with a
// non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// normalizeBaseURL normalizes a configured endpoint so path joins behave.
func normalizeBaseURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	return strings.TrimRight(raw, "/")
}
