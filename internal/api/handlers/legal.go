package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lexabot/lexa/internal/domain/legal"
)

// LegalHandler handles legal research requests.
type LegalHandler struct {
	legal *legal.Service
}

func NewLegalHandler(svc *legal.Service) *LegalHandler {
	return &LegalHandler{legal: svc}
}

// LegalQueryRequest is the request body for POST /api/v1/legal/query.
type LegalQueryRequest struct {
	Question     string `json:"question"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

// CaseLawRequest is the request body for POST /api/v1/legal/case-law.
type CaseLawRequest struct {
	Keywords     []string `json:"keywords"`
	Jurisdiction string   `json:"jurisdiction"`
	YearRange    []int    `json:"year_range,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// Query handles POST /api/v1/legal/query.
func (h *LegalHandler) Query(w http.ResponseWriter, r *http.Request) {
	if _, err := getUserID(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req LegalQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.legal.Query(r.Context(), legal.QueryInput{
		Question:     req.Question,
		Jurisdiction: req.Jurisdiction,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SearchCaseLaw handles POST /api/v1/legal/case-law.
func (h *LegalHandler) SearchCaseLaw(w http.ResponseWriter, r *http.Request) {
	if _, err := getUserID(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CaseLawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.legal.SearchCaseLaw(r.Context(), legal.CaseSearchInput{
		Keywords:     req.Keywords,
		Jurisdiction: req.Jurisdiction,
		YearRange:    req.YearRange,
		Limit:        req.Limit,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, results)
}
