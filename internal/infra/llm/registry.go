// Package llm — provider registry.
// The Registry is built once at startup from process-wide configuration and
// answers all availability questions afterwards: which providers have a
// credential, which clients passed the capability probe, and which provider
// can serve a call given optional per-request credentials.
package llm

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RegistryConfig holds the process-wide provider configuration captured at
// startup. Keys, Models and BaseURLs are keyed by provider name; missing
// entries fall back to adapter defaults.
type RegistryConfig struct {
	Keys     map[string]string
	Models   map[string]string
	BaseURLs map[string]string
	Timeout  time.Duration

	// RatePerSecond caps outbound calls per provider. Zero disables limiting.
	RatePerSecond float64
}

// ProviderStatus is the health-endpoint view of a single provider.
type ProviderStatus struct {
	Configured  bool `json:"configured"`
	ClientReady bool `json:"client_ready"`
}

type registryEntry struct {
	configured bool
	ready      bool
	client     ChatProvider
	limiter    *rate.Limiter
}

// Registry tracks which providers are configured and usable.
// Read-only after NewRegistry/Probe; safe for concurrent use.
type Registry struct {
	cfg     RegistryConfig
	entries map[string]*registryEntry
	log     *zap.Logger
}

// NewRegistry builds one adapter per configured provider. A provider with a
// blank key gets no client and is never advertised. Probe refines readiness.
func NewRegistry(cfg RegistryConfig, log *zap.Logger) *Registry {
	r := &Registry{cfg: cfg, entries: make(map[string]*registryEntry), log: log}
	for _, name := range providerPriority {
		e := &registryEntry{}
		if key := strings.TrimSpace(cfg.Keys[name]); key != "" {
			e.configured = true
			e.ready = true
			e.client = r.newAdapter(name, key)
			if cfg.RatePerSecond > 0 {
				e.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
			}
			log.Info("llm provider configured", zap.String("provider", name))
		}
		r.entries[name] = e
	}
	if len(r.AvailableProviders()) == 0 {
		log.Warn("no llm provider keys configured; chat will degrade until keys are supplied")
	}
	return r
}

// Probe health-checks every configured provider and drops unreachable clients
// from the advertised set. The key stays reported as configured so operators
// can tell "no key" apart from "key present, client broken".
func (r *Registry) Probe(ctx context.Context) {
	for _, name := range providerPriority {
		e := r.entries[name]
		if !e.configured {
			continue
		}
		if err := e.client.HealthCheck(ctx); err != nil {
			e.ready = false
			r.log.Warn("llm provider failed capability probe",
				zap.String("provider", name), zap.Error(err))
		}
	}
}

// IsAvailable reports whether a call to the named provider can be attempted:
// a non-blank per-request credential always suffices (a fresh client is built
// for that call), otherwise the process-wide client must exist and be ready.
func (r *Registry) IsAvailable(name string, perRequestKeys map[string]string) bool {
	e, ok := r.entries[name]
	if !ok {
		return false
	}
	if strings.TrimSpace(perRequestKeys[name]) != "" {
		return true
	}
	return e.configured && e.ready
}

// AvailableProviders returns, in priority order, every provider with a
// process-wide credential and a ready client. Per-request keys do not count
// here: this is the process-level view used for reporting and health.
func (r *Registry) AvailableProviders() []string {
	out := make([]string, 0, len(providerPriority))
	for _, name := range providerPriority {
		if e := r.entries[name]; e.configured && e.ready {
			out = append(out, name)
		}
	}
	return out
}

// Status returns the per-provider configured/ready snapshot for /health.
func (r *Registry) Status() map[string]ProviderStatus {
	out := make(map[string]ProviderStatus, len(r.entries))
	for name, e := range r.entries {
		out[name] = ProviderStatus{Configured: e.configured, ClientReady: e.configured && e.ready}
	}
	return out
}

// client returns the process-wide client for name, if advertised.
func (r *Registry) client(name string) (ChatProvider, bool) {
	e, ok := r.entries[name]
	if !ok || !e.configured || !e.ready {
		return nil, false
	}
	return e.client, true
}

// limiter returns the outbound rate limiter for name, or nil when disabled.
func (r *Registry) limiter(name string) *rate.Limiter {
	if e, ok := r.entries[name]; ok {
		return e.limiter
	}
	return nil
}

// newAdapter builds a vendor adapter for the given provider and credential.
// Used once per provider at startup, and again for each call that supplies a
// per-request key; per-request adapters are never stored.
func (r *Registry) newAdapter(name, key string) ChatProvider {
	cfg := AdapterConfig{
		APIKey:  key,
		Model:   r.cfg.Models[name],
		BaseURL: r.cfg.BaseURLs[name],
		Timeout: r.cfg.Timeout,
	}
	switch name {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case ProviderGemini:
		return NewGeminiProvider(cfg)
	case ProviderMistral:
		return NewMistralProvider(cfg)
	default:
		return nil
	}
}
