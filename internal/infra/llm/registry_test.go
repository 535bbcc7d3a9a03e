// Unit tests for the provider Registry.
package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func testRegistry(keys map[string]string) *Registry {
	return NewRegistry(RegistryConfig{Keys: keys}, zap.NewNop())
}

func TestRegistry_NoKeys_NothingAvailable(t *testing.T) {
	t.Parallel()

	r := testRegistry(nil)
	if got := r.AvailableProviders(); len(got) != 0 {
		t.Errorf("expected no available providers, got %v", got)
	}
	for _, name := range ProviderNames() {
		if r.IsAvailable(name, nil) {
			t.Errorf("%s should not be available without any key", name)
		}
	}
}

func TestRegistry_BlankKey_NotConfigured(t *testing.T) {
	t.Parallel()

	r := testRegistry(map[string]string{ProviderOpenAI: "   "})
	if r.IsAvailable(ProviderOpenAI, nil) {
		t.Error("blank key should not count as configured")
	}
	if st := r.Status()[ProviderOpenAI]; st.Configured {
		t.Error("blank key should report configured=false")
	}
}

func TestRegistry_PerRequestKey_MakesProviderAvailable(t *testing.T) {
	t.Parallel()

	r := testRegistry(nil)
	keys := map[string]string{ProviderMistral: "m-key"}
	if !r.IsAvailable(ProviderMistral, keys) {
		t.Error("per-request key should make mistral available")
	}
	// Process-level reporting is independent of per-request keys.
	if got := r.AvailableProviders(); len(got) != 0 {
		t.Errorf("per-request key must not affect advertised set, got %v", got)
	}
}

func TestRegistry_AvailableProviders_PriorityOrder(t *testing.T) {
	t.Parallel()

	r := testRegistry(map[string]string{
		ProviderMistral: "m",
		ProviderOpenAI:  "o",
		ProviderGemini:  "g",
	})
	got := r.AvailableProviders()
	want := []string{ProviderOpenAI, ProviderGemini, ProviderMistral}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRegistry_Probe_FailedClientLeavesAdvertisedSet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := NewRegistry(RegistryConfig{
		Keys:     map[string]string{ProviderOpenAI: "bad-key"},
		BaseURLs: map[string]string{ProviderOpenAI: srv.URL},
	}, zap.NewNop())

	r.Probe(context.Background())

	if got := r.AvailableProviders(); len(got) != 0 {
		t.Errorf("probe failure should remove provider from advertised set, got %v", got)
	}
	st := r.Status()[ProviderOpenAI]
	if !st.Configured {
		t.Error("key is present: configured should stay true")
	}
	if st.ClientReady {
		t.Error("client_ready should be false after failed probe")
	}
	// A per-request key still allows an attempt (fresh client per call).
	if !r.IsAvailable(ProviderOpenAI, map[string]string{ProviderOpenAI: "other"}) {
		t.Error("per-request key should still make the provider attemptable")
	}
}

func TestRegistry_UnknownProvider_NeverAvailable(t *testing.T) {
	t.Parallel()

	r := testRegistry(map[string]string{ProviderOpenAI: "o"})
	if r.IsAvailable("claude", map[string]string{"claude": "key"}) {
		t.Error("unknown provider must never be available")
	}
}
