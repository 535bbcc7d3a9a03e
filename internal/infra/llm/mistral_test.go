// Unit tests for MistralProvider.
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMistralProvider_ChatCompletion_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer m-test" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mistralChatResponse{ //nolint:errcheck
			Choices: []struct {
				Message      mistralChatMessage `json:"message"`
				FinishReason string             `json:"finish_reason"`
			}{{Message: mistralChatMessage{Role: "assistant", Content: "Bonjour"}, FinishReason: "stop"}},
		})
	}))
	defer srv.Close()

	p := NewMistralProvider(AdapterConfig{APIKey: "m-test", BaseURL: srv.URL})
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "salut"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if resp.Content != "Bonjour" {
		t.Errorf("unexpected content: %q", resp.Content)
	}
}

func TestMistralProvider_ChatCompletion_AuthFailure_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewMistralProvider(AdapterConfig{APIKey: "wrong", BaseURL: srv.URL})
	_, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "salut"}},
	})
	if err == nil {
		t.Error("expected error for 401 response, got nil")
	}
}

func TestMistralProvider_Defaults(t *testing.T) {
	t.Parallel()

	p := NewMistralProvider(AdapterConfig{APIKey: "m-test"})
	info := p.ModelInfo()
	if info.ID != "mistral-tiny" || info.Provider != ProviderMistral {
		t.Errorf("unexpected model meta: %+v", info)
	}
}
