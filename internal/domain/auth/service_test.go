package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/lexabot/lexa/internal/domain/auth"
	"github.com/lexabot/lexa/internal/infra/sqlite"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-key-32-chars-min!!!") //nolint:errcheck
	os.Exit(m.Run())
}

// newTestService opens a migrated temp DB and returns the service on top of it.
func newTestService(t *testing.T) auth.Service {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("sqlite.NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	return auth.NewService(db, zap.NewNop())
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	res, err := svc.Register(context.Background(), auth.RegisterInput{
		Email:       "alice@example.com",
		Password:    "s3cret-password",
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token == "" {
		t.Error("Register returned empty token")
	}
	if res.UserID == "" {
		t.Error("Register returned empty user ID")
	}
	if res.Email != "alice@example.com" {
		t.Errorf("email = %q", res.Email)
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	res, err := svc.Register(context.Background(), auth.RegisterInput{
		Email:    "  Alice@Example.COM ",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", res.Email)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	in := auth.RegisterInput{Email: "dup@example.com", Password: "password-1"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(ctx, in)
	if !errors.Is(err, auth.ErrEmailAlreadyExists) {
		t.Errorf("err = %v; want ErrEmailAlreadyExists", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), auth.RegisterInput{Email: "", Password: "x"})
	if !errors.Is(err, auth.ErrMissingFields) {
		t.Errorf("err = %v; want ErrMissingFields", err)
	}

	_, err = svc.Register(context.Background(), auth.RegisterInput{Email: "a@b.com", Password: ""})
	if !errors.Is(err, auth.ErrMissingFields) {
		t.Errorf("err = %v; want ErrMissingFields", err)
	}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, auth.RegisterInput{Email: "bob@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(ctx, auth.LoginInput{Email: "bob@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.UserID != reg.UserID {
		t.Errorf("Login user ID = %q; want %q", res.UserID, reg.UserID)
	}
	if res.Token == "" {
		t.Error("Login returned empty token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, auth.RegisterInput{Email: "carol@example.com", Password: "right-password"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(ctx, auth.LoginInput{Email: "carol@example.com", Password: "wrong-password"})
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("err = %v; want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), auth.LoginInput{Email: "nobody@example.com", Password: "whatever"})
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("err = %v; want ErrInvalidCredentials", err)
	}
}

func TestLogin_PasswordNeverStoredPlaintext(t *testing.T) {
	t.Parallel()

	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("sqlite.NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	svc := auth.NewService(db, zap.NewNop())

	const plaintext = "super-secret-password"
	if _, err := svc.Register(context.Background(), auth.RegisterInput{Email: "d@example.com", Password: plaintext}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var stored string
	if err := db.QueryRow("SELECT password_hash FROM users WHERE email = 'd@example.com'").Scan(&stored); err != nil {
		if err == sql.ErrNoRows {
			t.Fatal("user row not found")
		}
		t.Fatalf("query: %v", err)
	}
	if stored == plaintext {
		t.Error("password stored in plaintext")
	}
}
