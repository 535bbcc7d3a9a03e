package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lexabot/lexa/internal/domain/chat"
)

// dispatcher is the slice of chat.Dispatcher the handler needs.
type dispatcher interface {
	Dispatch(ctx context.Context, in chat.DispatchInput) (*chat.DispatchResult, error)
}

// historyReader exposes durable conversation history reads.
type historyReader interface {
	History(ctx context.Context, userID string, limit int) ([]chat.StoredMessage, error)
}

// ChatHandler handles message dispatch and history retrieval.
type ChatHandler struct {
	dispatcher dispatcher
	history    historyReader
}

func NewChatHandler(d dispatcher, h historyReader) *ChatHandler {
	return &ChatHandler{dispatcher: d, history: h}
}

// SendRequest is the request body for POST /api/v1/chat/send.
// APIKeys optionally carries per-request provider credentials that shadow
// the server configuration for this call only.
type SendRequest struct {
	Content  string            `json:"content"`
	Provider string            `json:"provider,omitempty"`
	APIKeys  map[string]string `json:"api_keys,omitempty"`
}

// Send handles POST /api/v1/chat/send.
//
// Response codes:
//   - 200 OK: dispatch completed (including degraded and failed outcomes,
//     which are reported in the body's error field)
//   - 400 Bad Request: invalid JSON or empty content
//   - 500 Internal Server Error: unexpected failure
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), chat.DispatchInput{
		UserID:   userID,
		Content:  req.Content,
		Provider: req.Provider,
		APIKeys:  req.APIKeys,
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message content is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "dispatch failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// History handles GET /api/v1/chat/history?limit=50.
// Returns the caller's archived messages, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}

	messages, err := h.history.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if messages == nil {
		messages = []chat.StoredMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": messages})
}
