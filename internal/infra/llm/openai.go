// Package llm — OpenAI HTTP adapter.
// OpenAIProvider calls the OpenAI chat completions REST API with stdlib
// net/http. Endpoints used:
//   - POST /v1/chat/completions — non-streaming chat completion
//   - GET  /v1/models           — health check (requires a valid key)
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
	openAIDefaultBaseURL = "https://api.openai.com"
	openAIDefaultModel   = "gpt-3.5-turbo"

	mimeJSON          = "application/json"
	headerContentType = "Content-Type"
)

// OpenAIProvider implements ChatProvider against the OpenAI API.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAIProvider. Empty BaseURL/Model fall back
// to the production endpoint and gpt-3.5-turbo.
func NewOpenAIProvider(cfg AdapterConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openAIDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	return &OpenAIProvider{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.timeoutOrDefault()},
	}
}

// ─── internal OpenAI JSON types ──────────────────────────────────────────────

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float32             `json:"temperature,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message      openAIChatMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
}

// ─── ChatProvider implementation ─────────────────────────────────────────────

// ChatCompletion performs a non-streaming chat via POST /v1/chat/completions.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	msgs := make([]openAIChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openAIChatMessage(m)
	}

	body, err := json.Marshal(openAIChatRequest{
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

	var apiResp openAIChatResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&apiResp); decodeErr != nil {
		return nil, fmt.Errorf("decode chat response: %w", decodeErr)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat: empty choices")
	}
	return &ChatResponse{
		Content:    apiResp.Choices[0].Message.Content,
		StopReason: apiResp.Choices[0].FinishReason,
	}, nil
}

// ModelInfo returns static metadata for this provider/model.
func (p *OpenAIProvider) ModelInfo() ModelMeta {
	return ModelMeta{ID: p.model, Provider: ProviderOpenAI, MaxTokens: 4096}
}

// HealthCheck calls GET /v1/models — a 200 means the endpoint is reachable
// and the key is accepted.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	url := p.baseURL + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("openai healthcheck: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai healthcheck: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai healthcheck: status %d", resp.StatusCode)
	}
	return nil
}

// doPost sends a POST request to baseURL+path and returns the response body.
// Caller is responsible for closing the returned ReadCloser.
func (p *OpenAIProvider) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	url := p.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai post %s: build request: %w", path, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai post %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("openai post %s: status %d", path, resp.StatusCode)
	}
	return resp.Body, nil
}
