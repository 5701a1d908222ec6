package repositories

import (
	"testing"
	"time"

	"linkvault/internal/platform/models"
)

func TestInvitationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvitationRepository(db)

	now := time.Now()
	inv := &models.Invitation{
		ID:             "inv_1",
		OrganizationID: "org_1",
		Email:          "newhire@example.com",
		Token:          "invite-token",
		RoleID:         "role_system_employee",
		InvitedBy:      "usr_admin",
		Status:         models.InvitationPending,
		ExpiresAt:      now.Add(7 * 24 * time.Hour).Unix(),
		CreatedAt:      now.Unix(),
	}
	if err := repo.Create(inv); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	fetched, err := repo.GetByToken("invite-token")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if fetched == nil || fetched.ID != "inv_1" || fetched.Status != models.InvitationPending {
		t.Errorf("Unexpected invitation: %+v", fetched)
	}

	missing, err := repo.GetByToken("never-issued")
	if err != nil {
		t.Fatalf("GetByToken errored: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown token, got %+v", missing)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := repo.MarkAcceptedTx(tx, "inv_1", now.Unix()); err != nil {
		t.Fatalf("MarkAcceptedTx failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	accepted, _ := repo.GetByToken("invite-token")
	if accepted.Status != models.InvitationAccepted || accepted.AcceptedAt == nil {
		t.Errorf("Expected accepted invitation, got %+v", accepted)
	}

	listed, err := repo.ListByOrganization("org_1")
	if err != nil {
		t.Fatalf("ListByOrganization failed: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("Expected 1 invitation, got %d", len(listed))
	}

	empty, err := repo.ListByOrganization("org_other")
	if err != nil {
		t.Fatalf("ListByOrganization failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no invitations for another org, got %d", len(empty))
	}
}
