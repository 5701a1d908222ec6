package reset

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "github.com/mattn/go-sqlite3"

	"linkvault/internal/engine/auth"
	"linkvault/internal/platform/config"
	"linkvault/internal/platform/database"
	"linkvault/internal/platform/mail"
	"linkvault/internal/platform/models"
	"linkvault/internal/platform/repositories"
)

func setupService(t *testing.T) (*Service, *repositories.AccountRepository, *miniredis.Miniredis) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	accounts := repositories.NewAccountRepository(db)
	svc := NewService(accounts, NewStore(client, time.Hour), mail.NewMailer(config.EmailConfig{}), nil)
	return svc, accounts, mr
}

func seedAccount(t *testing.T, accounts *repositories.AccountRepository, password string) *models.Account {
	t.Helper()
	now := time.Now().Unix()
	account := &models.Account{
		ID:          "usr_1",
		Email:       "alice@example.com",
		Username:    "alice",
		AccountType: models.AccountTypeIndividual,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			t.Fatalf("Failed to hash: %v", err)
		}
		account.PasswordHash = &hash
	}
	if err := accounts.Create(account); err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}
	return account
}

func TestRequestAndConfirm(t *testing.T) {
	svc, accounts, mr := setupService(t)
	seedAccount(t, accounts, "old-password-123")
	ctx := context.Background()

	if err := svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	token, err := mr.Get("pwreset:account:usr_1")
	if err != nil {
		t.Fatalf("Expected a stored token: %v", err)
	}

	if err := svc.Confirm(ctx, token, "new-password-456"); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	account, err := accounts.GetByID("usr_1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !auth.VerifyPassword("new-password-456", account.PasswordHash) {
		t.Error("Expected the new password to verify")
	}
	if auth.VerifyPassword("old-password-123", account.PasswordHash) {
		t.Error("Expected the old password to stop verifying")
	}

	// The token is single-use.
	if err := svc.Confirm(ctx, token, "another-password"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken on reuse, got %v", err)
	}
}

func TestRequest_UnknownEmail(t *testing.T) {
	svc, _, mr := setupService(t)

	if err := svc.Request(context.Background(), "nobody@example.com"); err != nil {
		t.Errorf("Unknown email must not error, got %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("Expected no stored token, found keys %v", mr.Keys())
	}
}

func TestRequest_SSOOnlyAccount(t *testing.T) {
	svc, accounts, mr := setupService(t)
	seedAccount(t, accounts, "")

	if err := svc.Request(context.Background(), "alice@example.com"); err != nil {
		t.Errorf("SSO-only account must not error, got %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("Expected no stored token for a passwordless account, found %v", mr.Keys())
	}
}

func TestConfirm_InvalidToken(t *testing.T) {
	svc, _, _ := setupService(t)

	if err := svc.Confirm(context.Background(), "never-issued", "new-password"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestRequest_SupersedesPriorToken(t *testing.T) {
	svc, accounts, mr := setupService(t)
	seedAccount(t, accounts, "old-password-123")
	ctx := context.Background()

	if err := svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("First request failed: %v", err)
	}
	first, _ := mr.Get("pwreset:account:usr_1")

	if err := svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("Second request failed: %v", err)
	}
	second, _ := mr.Get("pwreset:account:usr_1")

	if first == second {
		t.Fatal("Expected a fresh token per request")
	}
	if err := svc.Confirm(ctx, first, "new-password"); err != ErrInvalidToken {
		t.Errorf("Expected the first token to be dead, got %v", err)
	}
	if err := svc.Confirm(ctx, second, "new-password"); err != nil {
		t.Errorf("Expected the second token to work, got %v", err)
	}
}
