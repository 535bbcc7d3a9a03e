// Package auth implements Register and Login business logic: user creation,
// password hashing, and JWT issuance.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	pkgauth "github.com/lexabot/lexa/pkg/auth"
	"github.com/lexabot/lexa/pkg/uuid"
)

// ErrInvalidCredentials is returned by Login when email or password is incorrect.
// Using a single error for both cases avoids leaking whether an email exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailAlreadyExists is returned by Register when the email is already taken.
var ErrEmailAlreadyExists = errors.New("email already registered")

// ErrMissingFields is returned by Register when email or password is blank.
var ErrMissingFields = errors.New("email and password are required")

// RegisterInput holds the data needed to create a new user.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Result is returned after successful Register or Login.
// Token is a signed JWT containing the UserID claim.
type Result struct {
	Token  string
	UserID string
	Email  string
}

// Service defines the authentication business operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)
}

// service is the concrete implementation backed by SQLite.
type service struct {
	db  *sql.DB
	log *zap.Logger
}

// NewService creates a new auth Service backed by the provided DB.
func NewService(db *sql.DB, log *zap.Logger) Service {
	return &service{db: db, log: log}
}

// Register creates a new user and returns a JWT.
// Password is hashed with bcrypt before storage; plaintext is never stored.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.NewV7().String()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, email, hash, input.DisplayName, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := pkgauth.GenerateJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", userID))

	return &Result{Token: token, UserID: userID, Email: email}, nil
}

// Login verifies credentials and returns a JWT.
// Always returns ErrInvalidCredentials for any lookup or password failure
// to avoid revealing whether the email exists.
func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	var userID string
	var passwordHash sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash
		FROM users
		WHERE email = ?
		LIMIT 1
	`, email).Scan(&userID, &passwordHash)

	if err != nil {
		// Whether the user doesn't exist or there's a DB error, return generic message
		s.log.Info("login rejected", zap.String("reason", "user_not_found_or_query_error"))
		return nil, ErrInvalidCredentials
	}

	if !passwordHash.Valid || passwordHash.String == "" {
		s.log.Info("login rejected", zap.String("user_id", userID), zap.String("reason", "missing_password_hash"))
		return nil, ErrInvalidCredentials
	}

	// Verify password (constant-time comparison via bcrypt)
	if !pkgauth.VerifyPassword(passwordHash.String, input.Password) {
		s.log.Info("login rejected", zap.String("user_id", userID), zap.String("reason", "invalid_password"))
		return nil, ErrInvalidCredentials
	}

	token, err := pkgauth.GenerateJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	s.log.Info("user logged in", zap.String("user_id", userID))

	return &Result{Token: token, UserID: userID, Email: email}, nil
}

// isUniqueViolation checks if an SQLite error is a UNIQUE constraint violation.
// SQLite surfaces this as an error message containing "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
