// Package llm defines the model-agnostic chat provider abstraction.
// All types here are shared between the provider interface, the vendor
// adapters, the registry and the selector.
package llm

import "time"

// Known provider names. providerPriority is the deterministic tie-break order
// used by the selector and by availability scans.
const (
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderMistral = "mistral"
)

// providerPriority is the fixed preference order: openai > gemini > mistral.
var providerPriority = []string{ProviderOpenAI, ProviderGemini, ProviderMistral}

// ProviderNames returns all known provider names in priority order.
func ProviderNames() []string {
	out := make([]string, len(providerPriority))
	copy(out, providerPriority)
	return out
}

// Message represents a single turn sent to a provider (role + content).
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the adapter default when non-empty.
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string // The assistant message text.
	StopReason string // "stop" | "length" | "error"
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID        string // e.g. "gpt-3.5-turbo", "mistral-tiny"
	Provider  string // e.g. "openai", "mistral"
	MaxTokens int    // Maximum context window size.
}

// AdapterConfig is the common construction input for vendor adapters.
// BaseURL is overridable for tests (httptest servers) and proxies.
type AdapterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

const defaultAdapterTimeout = 30 * time.Second

// timeoutOrDefault applies the 30s default used by all adapters.
func (c AdapterConfig) timeoutOrDefault() time.Duration {
	if c.Timeout <= 0 {
		return defaultAdapterTimeout
	}
	return c.Timeout
}
