// Package llm — Mistral HTTP adapter.
// The Mistral chat API is wire-compatible with the OpenAI completions shape,
// but kept as its own adapter: base URL, auth failures and model defaults
// differ, and the registry treats each vendor as a distinct variant.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	mistralDefaultBaseURL = "https://api.mistral.ai"
	mistralDefaultModel   = "mistral-tiny"
)

// MistralProvider implements ChatProvider against the Mistral "La Plateforme" API.
type MistralProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewMistralProvider creates a MistralProvider. Empty BaseURL/Model fall back
// to the production endpoint and mistral-tiny.
func NewMistralProvider(cfg AdapterConfig) *MistralProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = mistralDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = mistralDefaultModel
	}
	return &MistralProvider{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.timeoutOrDefault()},
	}
}

type mistralChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralChatRequest struct {
	Model       string               `json:"model"`
	Messages    []mistralChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Temperature float32              `json:"temperature,omitempty"`
}

type mistralChatResponse struct {
	Choices []struct {
		Message      mistralChatMessage `json:"message"`
		FinishReason string             `json:"finish_reason"`
	} `json:"choices"`
}

// ChatCompletion performs a non-streaming chat via POST /v1/chat/completions.
func (p *MistralProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	msgs := make([]mistralChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = mistralChatMessage(m)
	}

	body, err := json.Marshal(mistralChatRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	respBody, postErr := p.doPost(ctx, "/v1/chat/completions", body)
	if postErr != nil {
		return nil, postErr
	}
	defer respBody.Close()

	var apiResp mistralChatResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&apiResp); decodeErr != nil {
		return nil, fmt.Errorf("decode chat response: %w", decodeErr)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("mistral chat: empty choices")
	}
	return &ChatResponse{
		Content:    apiResp.Choices[0].Message.Content,
		StopReason: apiResp.Choices[0].FinishReason,
	}, nil
}

// ModelInfo returns static metadata for this provider/model.
func (p *MistralProvider) ModelInfo() ModelMeta {
	return ModelMeta{ID: p.model, Provider: ProviderMistral, MaxTokens: 8192}
}

// HealthCheck calls GET /v1/models with the configured key.
func (p *MistralProvider) HealthCheck(ctx context.Context) error {
	url := p.baseURL + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("mistral healthcheck: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mistral healthcheck: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mistral healthcheck: status %d", resp.StatusCode)
	}
	return nil
}

func (p *MistralProvider) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	url := p.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mistral post %s: build request: %w", path, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mistral post %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("mistral post %s: status %d", path, resp.StatusCode)
	}
	return resp.Body, nil
}
