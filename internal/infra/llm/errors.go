package llm

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider is returned when a provider name is not one of the
// known set (openai, gemini, mistral).
var ErrUnknownProvider = errors.New("unknown provider")

// ProviderError wraps any transport, auth or quota failure from an underlying
// vendor call, tagging it with the provider that was attempted.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// newProviderError wraps err for the given provider, preserving the chain so
// callers can still match context.DeadlineExceeded etc. via errors.Is.
func newProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}
