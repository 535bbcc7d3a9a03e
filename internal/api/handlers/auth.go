// HTTP handlers for register + login (public endpoints — no AuthMiddleware).
// Translates HTTP requests into domain/auth.Service calls and maps domain
// errors to HTTP codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/lexabot/lexa/internal/domain/auth"
)

// AuthHandler handles authentication HTTP requests (register and login).
type AuthHandler struct {
	authService domainauth.Service
}

// NewAuthHandler creates a new AuthHandler backed by the provided Service.
func NewAuthHandler(authService domainauth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the response body returned after successful register or login.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Register handles POST /auth/register.
//
// Response codes:
//   - 201 Created: registration successful
//   - 400 Bad Request: invalid JSON or missing required fields
//   - 409 Conflict: email already registered
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Register(r.Context(), domainauth.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainauth.ErrMissingFields):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domainauth.ErrEmailAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Token:  result.Token,
		UserID: result.UserID,
		Email:  result.Email,
	})
}

// Login handles POST /auth/login.
//
// Response codes:
//   - 200 OK: login successful
//   - 400 Bad Request: invalid JSON or missing required fields
//   - 401 Unauthorized: invalid credentials (generic — doesn't reveal if email exists)
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), domainauth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Token:  result.Token,
		UserID: result.UserID,
		Email:  result.Email,
	})
}
