// Package chat implements the message-dispatch core: conversation history,
// provider resolution and the normalized dispatch result.
package chat

import (
	"errors"
	"time"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Dispatch outcome error kinds, carried verbatim on the wire.
const (
	ErrKindNoProvider = "no_api_keys"
	ErrKindCallFailed = "api_call_failed"
)

// ProviderNone is the provider value of a degraded result.
const ProviderNone = "none"

// Disclaimer is appended to every assistant response that does not already
// carry one (case-insensitive check on "disclaimer").
const Disclaimer = "Disclaimer: This information is for general guidance only and does not constitute legal advice."

// ErrEmptyMessage rejects dispatches with no content before any state change.
var ErrEmptyMessage = errors.New("message content is required")

// Turn is a single immutable conversation entry. Provider is set only on
// assistant turns, naming the backend that produced the text.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Provider  string    `json:"provider,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DispatchInput is one inbound chat message.
type DispatchInput struct {
	UserID  string
	Content string
	// Provider pins a specific backend; empty or "auto" delegates to the
	// selector. An unavailable pinned provider also falls back to the
	// selector rather than failing the dispatch.
	Provider string
	// APIKeys are per-request credentials keyed by provider name. They
	// shadow process-wide configuration for this call only.
	APIKeys map[string]string
}

// DispatchResult is the normalized response shape for every outcome.
type DispatchResult struct {
	Message    string   `json:"message"`
	Provider   string   `json:"provider"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
	Error      string   `json:"error,omitempty"`
}

// providerConfidence is the fixed per-provider confidence tier. It reflects a
// static prior, not measured response quality — documented contract.
var providerConfidence = map[string]float64{
	"openai":  0.95,
	"gemini":  0.90,
	"mistral": 0.85,
}

// StoredMessage is a durably recorded conversation turn.
type StoredMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Provider  *string   `json:"provider,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}
