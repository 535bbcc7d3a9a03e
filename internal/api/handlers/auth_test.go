package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainauth "github.com/lexabot/lexa/internal/domain/auth"
)

// stubAuthService returns canned results without touching a database.
type stubAuthService struct {
	registerResult *domainauth.Result
	registerErr    error
	loginResult    *domainauth.Result
	loginErr       error

	lastRegister domainauth.RegisterInput
	lastLogin    domainauth.LoginInput
}

func (s *stubAuthService) Register(_ context.Context, in domainauth.RegisterInput) (*domainauth.Result, error) {
	s.lastRegister = in
	return s.registerResult, s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, in domainauth.LoginInput) (*domainauth.Result, error) {
	s.lastLogin = in
	return s.loginResult, s.loginErr
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	stub := &stubAuthService{
		registerResult: &domainauth.Result{Token: "tok", UserID: "u1", Email: "a@b.com"},
	}
	h := NewAuthHandler(stub)

	req := jsonRequest(t, http.MethodPost, "/auth/register", RegisterRequest{
		Email: "a@b.com", Password: "secret123", DisplayName: "Ada",
	})
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	decodeBody(t, rec, &resp)
	if resp.Token != "tok" || resp.UserID != "u1" || resp.Email != "a@b.com" {
		t.Errorf("response = %+v", resp)
	}
	if stub.lastRegister.DisplayName != "Ada" {
		t.Errorf("DisplayName not forwarded: %+v", stub.lastRegister)
	}
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing fields", domainauth.ErrMissingFields, http.StatusBadRequest},
		{"duplicate email", domainauth.ErrEmailAlreadyExists, http.StatusConflict},
		{"db failure", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewAuthHandler(&stubAuthService{registerErr: tt.err})
			req := jsonRequest(t, http.MethodPost, "/auth/register", RegisterRequest{
				Email: "a@b.com", Password: "x",
			})
			rec := httptest.NewRecorder()
			h.Register(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&stubAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	stub := &stubAuthService{
		loginResult: &domainauth.Result{Token: "tok2", UserID: "u2", Email: "b@c.com"},
	}
	h := NewAuthHandler(stub)

	req := jsonRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "b@c.com", Password: "pw"})
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp AuthResponse
	decodeBody(t, rec, &resp)
	if resp.Token != "tok2" {
		t.Errorf("token = %q", resp.Token)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&stubAuthService{loginErr: domainauth.ErrInvalidCredentials})
	req := jsonRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "b@c.com", Password: "wrong"})
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&stubAuthService{})
	req := jsonRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "", Password: ""})
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
