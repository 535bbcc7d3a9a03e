// Package llm — ChatProvider interface.
// Adapters (OpenAI, Gemini, Mistral) implement this interface so the dispatch
// layer is never coupled to a specific LLM vendor. Adding a provider means
// adding an adapter + a registry entry, not touching dispatch logic.
package llm

import "context"

// ChatProvider is the model-agnostic interface for chat completions.
// Streaming is deliberately excluded: dispatch normalizes whole responses.
type ChatProvider interface {
	// ChatCompletion performs a non-streaming chat completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider endpoint is reachable with the
	// configured credential.
	HealthCheck(ctx context.Context) error
}
