package repositories

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"linkvault/internal/platform/database"
	"linkvault/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedAccount(t *testing.T, repo *AccountRepository, id, email, username string) *models.Account {
	t.Helper()
	now := time.Now().Unix()
	hash := "$2a$10$fakehashfakehashfakehash"
	account := &models.Account{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: &hash,
		AccountType:  models.AccountTypeIndividual,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(account); err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}
	return account
}

func TestAccountRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	seedAccount(t, repo, "usr_1", "alice@example.com", "alice")

	byID, err := repo.GetByID("usr_1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID == nil || byID.Email != "alice@example.com" {
		t.Errorf("Unexpected account: %+v", byID)
	}

	byEmail, err := repo.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != "usr_1" {
		t.Errorf("Unexpected account: %+v", byEmail)
	}

	byUsername, err := repo.GetByUsername("alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if byUsername == nil || byUsername.ID != "usr_1" {
		t.Errorf("Unexpected account: %+v", byUsername)
	}

	// Absent rows come back as nil, nil.
	missing, err := repo.GetByID("usr_missing")
	if err != nil {
		t.Fatalf("GetByID for missing row errored: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing row, got %+v", missing)
	}
}

func TestAccountRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	seedAccount(t, repo, "usr_1", "alice@example.com", "alice")

	tests := []struct {
		name  string
		check func() (bool, error)
		want  bool
	}{
		{"email taken", func() (bool, error) { return repo.ExistsByEmail("alice@example.com") }, true},
		{"email free", func() (bool, error) { return repo.ExistsByEmail("bob@example.com") }, false},
		{"username taken", func() (bool, error) { return repo.ExistsByUsername("alice") }, true},
		{"username free", func() (bool, error) { return repo.ExistsByUsername("bob") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check()
			if err != nil {
				t.Fatalf("check failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccountRepository_TwoFactorLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	seedAccount(t, repo, "usr_1", "alice@example.com", "alice")
	now := time.Now().Unix()

	if err := repo.SetPendingTwoFactorSecret("usr_1", "SECRET123", now); err != nil {
		t.Fatalf("SetPendingTwoFactorSecret failed: %v", err)
	}
	account, _ := repo.GetByID("usr_1")
	if account.TwoFactorSecret == nil || *account.TwoFactorSecret != "SECRET123" {
		t.Error("Expected pending secret stored")
	}
	if account.MFAEnrolled() {
		t.Error("Pending secret must not count as enrolled")
	}

	if err := repo.ConfirmTwoFactor("usr_1", now); err != nil {
		t.Fatalf("ConfirmTwoFactor failed: %v", err)
	}
	account, _ = repo.GetByID("usr_1")
	if !account.MFAEnrolled() {
		t.Error("Expected enrollment after confirmation")
	}

	if err := repo.ClearTwoFactor("usr_1", now); err != nil {
		t.Fatalf("ClearTwoFactor failed: %v", err)
	}
	account, _ = repo.GetByID("usr_1")
	if account.MFAEnrolled() || account.TwoFactorSecret != nil {
		t.Error("Expected enrollment fully cleared")
	}
}

func TestAccountRepository_SSOIdentity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	seedAccount(t, repo, "usr_1", "alice@example.com", "alice")
	now := time.Now().Unix()

	if err := repo.LinkSSOIdentity("usr_1", "google", "sub-123", now); err != nil {
		t.Fatalf("LinkSSOIdentity failed: %v", err)
	}

	account, err := repo.GetBySSOSubject("google", "sub-123")
	if err != nil {
		t.Fatalf("GetBySSOSubject failed: %v", err)
	}
	if account == nil || account.ID != "usr_1" {
		t.Errorf("Unexpected account: %+v", account)
	}

	missing, err := repo.GetBySSOSubject("github", "sub-123")
	if err != nil {
		t.Fatalf("GetBySSOSubject errored: %v", err)
	}
	if missing != nil {
		t.Error("Provider is part of the identity key")
	}
}

func TestAccountRepository_Organization(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	orgs := NewOrganizationRepository(db)

	now := time.Now().Unix()
	tx, err := orgs.BeginTx()
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := orgs.CreateTx(tx, &models.Organization{ID: "org_1", Name: "Acme", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateTx failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	seedAccount(t, repo, "usr_1", "alice@example.com", "alice")
	seedAccount(t, repo, "usr_2", "bob@example.com", "bob")

	orgID := "org_1"
	if err := repo.SetOrganization("usr_1", &orgID, now); err != nil {
		t.Fatalf("SetOrganization failed: %v", err)
	}

	members, err := repo.ListByOrganization("org_1")
	if err != nil {
		t.Fatalf("ListByOrganization failed: %v", err)
	}
	if len(members) != 1 || members[0].ID != "usr_1" {
		t.Errorf("Expected only usr_1, got %+v", members)
	}

	count, err := orgs.MemberCount("org_1")
	if err != nil {
		t.Fatalf("MemberCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 member, got %d", count)
	}

	if err := repo.SetOrganization("usr_1", nil, now); err != nil {
		t.Fatalf("Clearing organization failed: %v", err)
	}
	account, _ := repo.GetByID("usr_1")
	if account.OrganizationID != nil {
		t.Error("Expected organization cleared")
	}
}
