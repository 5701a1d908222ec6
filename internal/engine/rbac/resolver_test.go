package rbac

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"linkvault/internal/platform/database"
	"linkvault/internal/platform/models"
	"linkvault/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestEffectiveRoles(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	roles := repositories.NewRoleRepository(db)
	resolver := NewResolver(roles)

	now := time.Now().Unix()
	for _, roleID := range []string{"role_system_admin", "role_system_employee"} {
		if err := roles.Assign(&models.RoleAssignment{
			AccountID:      "usr_1",
			RoleID:         roleID,
			OrganizationID: "org_1",
			AssignedAt:     now,
		}); err != nil {
			t.Fatalf("Failed to assign %s: %v", roleID, err)
		}
	}

	set, err := resolver.EffectiveRoles("usr_1", "org_1")
	if err != nil {
		t.Fatalf("EffectiveRoles failed: %v", err)
	}
	if !set[models.RoleAdmin] || !set[models.RoleEmployee] {
		t.Errorf("Expected Admin and Employee, got %v", set)
	}

	// Scope is per organization.
	set, err = resolver.EffectiveRoles("usr_1", "org_2")
	if err != nil {
		t.Fatalf("EffectiveRoles failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("Expected no roles in org_2, got %v", set)
	}
}

func TestIsAdmin(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	roles := repositories.NewRoleRepository(db)
	resolver := NewResolver(roles)

	now := time.Now().Unix()
	if err := roles.Assign(&models.RoleAssignment{
		AccountID:      "usr_admin",
		RoleID:         "role_system_admin",
		OrganizationID: "org_1",
		AssignedAt:     now,
	}); err != nil {
		t.Fatalf("Failed to assign: %v", err)
	}
	if err := roles.Assign(&models.RoleAssignment{
		AccountID:      "usr_plain",
		RoleID:         "role_system_employee",
		OrganizationID: "org_1",
		AssignedAt:     now,
	}); err != nil {
		t.Fatalf("Failed to assign: %v", err)
	}

	tests := []struct {
		name      string
		accountID string
		orgID     string
		want      bool
	}{
		{"admin in scope", "usr_admin", "org_1", true},
		{"admin outside scope", "usr_admin", "org_2", false},
		{"employee only", "usr_plain", "org_1", false},
		{"no assignments", "usr_nobody", "org_1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.IsAdmin(tt.accountID, tt.orgID)
			if err != nil {
				t.Fatalf("IsAdmin failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsAdmin(%s, %s) = %v, want %v", tt.accountID, tt.orgID, got, tt.want)
			}
		})
	}
}
