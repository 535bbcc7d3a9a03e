package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexabot/lexa/internal/domain/document"
)

// DocumentHandler handles document upload, retrieval and analysis.
type DocumentHandler struct {
	documents *document.Service
}

func NewDocumentHandler(svc *document.Service) *DocumentHandler {
	return &DocumentHandler{documents: svc}
}

// UploadRequest is the request body for POST /api/v1/documents/upload.
// ContentBase64 carries the document bytes inline, base64-encoded.
type UploadRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Filename      string `json:"filename,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	ContentBase64 string `json:"content_base64,omitempty"`
}

// Upload handles POST /api/v1/documents/upload.
//
// Response codes:
//   - 201 Created: document stored
//   - 400 Bad Request: invalid JSON or missing title
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var content []byte
	if req.ContentBase64 != "" {
		content, err = base64.StdEncoding.DecodeString(req.ContentBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "content_base64 is not valid base64")
			return
		}
	}

	doc, err := h.documents.Upload(r.Context(), document.UploadInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Content:     string(content),
	})
	if err != nil {
		if errors.Is(err, document.ErrMissingTitle) {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/v1/documents/list.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := h.documents.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// Get handles GET /api/v1/documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	doc, err := h.documents.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Analyze handles POST /api/v1/documents/{id}/analyze.
func (h *DocumentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	analysis, err := h.documents.Analyze(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}
