// Package llm — provider gateway.
// The Gateway is the single call path from dispatch to a vendor adapter. It
// resolves the client (per-request credential shadows the process-wide one),
// applies the outbound rate limit and the per-call deadline, and normalizes
// every failure into a *ProviderError.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Completion tuning shared by all providers; values match what the service
// has always sent (bounded answers, mildly creative).
const (
	completionMaxTokens   = 500
	completionTemperature = 0.7
)

var errNotConfigured = errors.New("no credential configured")

// Gateway performs uniform chat-completion calls across providers.
type Gateway struct {
	reg     *Registry
	log     *zap.Logger
	timeout time.Duration
}

// NewGateway creates a Gateway. timeout bounds each provider call and falls
// back to 30s when zero.
func NewGateway(reg *Registry, log *zap.Logger, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultAdapterTimeout
	}
	return &Gateway{reg: reg, log: log, timeout: timeout}
}

// Invoke calls the named provider with the prepared message sequence and
// returns the raw response text. A non-blank apiKey builds a one-shot client
// for this call only; it never touches process-wide state. All transport,
// auth and timeout failures come back as *ProviderError.
func (g *Gateway) Invoke(ctx context.Context, provider string, msgs []Message, apiKey string) (string, error) {
	client, err := g.resolveClient(provider, apiKey)
	if err != nil {
		return "", err
	}

	if lim := g.reg.limiter(provider); lim != nil {
		if waitErr := lim.Wait(ctx); waitErr != nil {
			return "", newProviderError(provider, waitErr)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.ChatCompletion(callCtx, ChatRequest{
		Messages:    msgs,
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		g.log.Warn("provider call failed",
			zap.String("provider", provider),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", newProviderError(provider, err)
	}

	g.log.Debug("provider call succeeded",
		zap.String("provider", provider),
		zap.Duration("elapsed", time.Since(start)))
	return resp.Content, nil
}

// resolveClient picks the per-request client when a key is supplied,
// otherwise the process-wide one.
func (g *Gateway) resolveClient(provider, apiKey string) (ChatProvider, error) {
	if _, known := g.reg.entries[provider]; !known {
		return nil, newProviderError(provider, ErrUnknownProvider)
	}
	if key := strings.TrimSpace(apiKey); key != "" {
		return g.reg.newAdapter(provider, key), nil
	}
	client, ok := g.reg.client(provider)
	if !ok {
		return nil, newProviderError(provider, errNotConfigured)
	}
	return client, nil
}
