// Package llm — Google Gemini HTTP adapter.
// GeminiProvider calls the Generative Language REST API with stdlib net/http.
// Endpoints used:
//   - POST /v1beta/models/{model}:generateContent — non-streaming completion
//   - GET  /v1beta/models                          — health check
//
// The API key travels in the x-goog-api-key header, never in the URL, so it
// cannot leak into request logs.
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
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiDefaultModel   = "gemini-1.5-flash"
)

// GeminiProvider implements ChatProvider against the Gemini API.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGeminiProvider creates a GeminiProvider. Empty BaseURL/Model fall back to
// the production endpoint and gemini-1.5-flash.
func NewGeminiProvider(cfg AdapterConfig) *GeminiProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = geminiDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}
	return &GeminiProvider{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.timeoutOrDefault()},
	}
}

// ─── internal Gemini JSON types ──────────────────────────────────────────────

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" | "model"
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	SystemInstruction *geminiContent        `json:"system_instruction,omitempty"`
	Contents          []geminiContent       `json:"contents"`
	GenerationConfig  *geminiGenerationConf `json:"generationConfig,omitempty"`
}

type geminiGenerationConf struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float32 `json:"temperature,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// ─── ChatProvider implementation ─────────────────────────────────────────────

// ChatCompletion performs a non-streaming completion via generateContent.
// System messages map to system_instruction; assistant turns map to the
// "model" role Gemini expects.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	apiReq := geminiGenerateRequest{}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			apiReq.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
		case RoleAssistant:
			apiReq.Contents = append(apiReq.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			apiReq.Contents = append(apiReq.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	if req.MaxTokens != 0 || req.Temperature != 0 {
		apiReq.GenerationConfig = &geminiGenerationConf{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", model)
	respBody, postErr := p.doPost(ctx, path, body)
	if postErr != nil {
		return nil, postErr
	}
	defer respBody.Close()

	var apiResp geminiGenerateResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&apiResp); decodeErr != nil {
		return nil, fmt.Errorf("decode generate response: %w", decodeErr)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini generate: empty candidates")
	}
	return &ChatResponse{
		Content:    apiResp.Candidates[0].Content.Parts[0].Text,
		StopReason: apiResp.Candidates[0].FinishReason,
	}, nil
}

// ModelInfo returns static metadata for this provider/model.
func (p *GeminiProvider) ModelInfo() ModelMeta {
	return ModelMeta{ID: p.model, Provider: ProviderGemini, MaxTokens: 8192}
}

// HealthCheck calls GET /v1beta/models with the configured key.
func (p *GeminiProvider) HealthCheck(ctx context.Context) error {
	url := p.baseURL + "/v1beta/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("gemini healthcheck: build request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini healthcheck: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini healthcheck: status %d", resp.StatusCode)
	}
	return nil
}

func (p *GeminiProvider) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	url := p.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini post %s: build request: %w", path, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini post %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("gemini post %s: status %d", path, resp.StatusCode)
	}
	return resp.Body, nil
}
