// Handler helper functions shared across the package.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lexabot/lexa/internal/api/ctxkeys"
)

// getUserID retrieves the authenticated user from context.
// Uses ctxkeys.UserID — same type+value as the AuthMiddleware injection.
func getUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(ctxkeys.UserID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id not found in context")
	}
	return userID, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError writes an error response in consistent JSON format.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
