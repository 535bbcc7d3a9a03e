// Unit tests for GeminiProvider.
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiProvider_ChatCompletion_MapsRolesAndSystemInstruction(t *testing.T) {
	t.Parallel()

	var captured geminiGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-1.5-flash:generateContent" {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("x-goog-api-key"); got != "g-test" {
			http.Error(w, "bad key", http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiGenerateResponse{ //nolint:errcheck
			Candidates: []struct {
				Content      geminiContent `json:"content"`
				FinishReason string        `json:"finishReason"`
			}{{Content: geminiContent{Role: "model", Parts: []geminiPart{{Text: "Hola"}}}, FinishReason: "STOP"}},
		})
	}))
	defer srv.Close()

	p := NewGeminiProvider(AdapterConfig{APIKey: "g-test", BaseURL: srv.URL})
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "persona"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "again"},
		},
	})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if resp.Content != "Hola" {
		t.Errorf("unexpected content: %q", resp.Content)
	}

	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "persona" {
		t.Error("system message was not mapped to system_instruction")
	}
	if len(captured.Contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(captured.Contents))
	}
	if captured.Contents[1].Role != "model" {
		t.Errorf("assistant turn should map to role model, got %q", captured.Contents[1].Role)
	}
}

func TestGeminiProvider_ChatCompletion_EmptyCandidates_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiGenerateResponse{}) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewGeminiProvider(AdapterConfig{APIKey: "g-test", BaseURL: srv.URL})
	_, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Error("expected error for empty candidates, got nil")
	}
}

func TestGeminiProvider_HealthCheck_Unreachable_ReturnsError(t *testing.T) {
	t.Parallel()

	p := NewGeminiProvider(AdapterConfig{APIKey: "g-test", BaseURL: "http://127.0.0.1:1"})
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for unreachable endpoint, got nil")
	}
}
