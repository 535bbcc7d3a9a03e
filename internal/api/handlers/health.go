package handlers

import (
	"net/http"

	"github.com/lexabot/lexa/internal/infra/llm"
	"github.com/lexabot/lexa/internal/version"
)

// providerStatusSource is the slice of llm.Registry the health handler needs.
type providerStatusSource interface {
	AvailableProviders() []string
	Status() map[string]llm.ProviderStatus
}

// HealthHandler reports service and provider health. Public — used by load
// balancers and the frontend setup flow.
type HealthHandler struct {
	providers providerStatusSource
}

func NewHealthHandler(providers providerStatusSource) *HealthHandler {
	return &HealthHandler{providers: providers}
}

// healthResponse mirrors what the frontend setup page consumes: which
// providers are usable, which one a bare request would get, and per-provider
// configuration state.
type healthResponse struct {
	Status            string                        `json:"status"`
	Message           string                        `json:"message"`
	Version           string                        `json:"version"`
	Providers         []string                      `json:"providers"`
	DefaultProvider   string                        `json:"default_provider"`
	APIStatus         map[string]llm.ProviderStatus `json:"api_status"`
	SetupInstructions *setupInstructions            `json:"setup_instructions,omitempty"`
}

type setupInstructions struct {
	Message string `json:"message"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	available := h.providers.AvailableProviders()

	resp := healthResponse{
		Status:          "ok",
		Message:         "Lexa legal assistant API is running",
		Version:         version.Version,
		Providers:       available,
		DefaultProvider: "none",
		APIStatus:       h.providers.Status(),
	}
	if len(available) > 0 {
		resp.DefaultProvider = available[0]
	} else {
		resp.SetupInstructions = &setupInstructions{
			Message: "To use AI responses, configure OPENAI_API_KEY, GEMINI_API_KEY or MISTRAL_API_KEY",
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
