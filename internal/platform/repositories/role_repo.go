package repositories

import (
	"database/sql"

	"linkvault/internal/platform/models"
)

type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(role *models.Role) error {
	_, err := r.db.Exec(`
		INSERT INTO roles (id, name, description, organization_id, is_system_role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, role.ID, role.Name, role.Description, role.OrganizationID, role.IsSystemRole, role.CreatedAt)
	return err
}

func (r *RoleRepository) GetByID(id string) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRow(`
		SELECT id, name, description, organization_id, is_system_role, created_at
		FROM roles WHERE id = ?
	`, id).Scan(&role.ID, &role.Name, &role.Description, &role.OrganizationID, &role.IsSystemRole, &role.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

func (r *RoleRepository) GetSystemRoleByName(name string) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRow(`
		SELECT id, name, description, organization_id, is_system_role, created_at
		FROM roles WHERE name = ? AND is_system_role = 1
	`, name).Scan(&role.ID, &role.Name, &role.Description, &role.OrganizationID, &role.IsSystemRole, &role.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

// ListForOrganization returns system roles plus the organization's own.
func (r *RoleRepository) ListForOrganization(orgID string) ([]*models.Role, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, organization_id, is_system_role, created_at
		FROM roles WHERE is_system_role = 1 OR organization_id = ?
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

func collectRoles(rows *sql.Rows) ([]*models.Role, error) {
	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.OrganizationID,
			&role.IsSystemRole, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) AssignTx(tx *sql.Tx, ra *models.RoleAssignment) error {
	_, err := tx.Exec(`
		INSERT INTO role_assignments (account_id, role_id, organization_id, assigned_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id, role_id, organization_id) DO NOTHING
	`, ra.AccountID, ra.RoleID, ra.OrganizationID, ra.AssignedAt)
	return err
}

func (r *RoleRepository) Assign(ra *models.RoleAssignment) error {
	_, err := r.db.Exec(`
		INSERT INTO role_assignments (account_id, role_id, organization_id, assigned_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id, role_id, organization_id) DO NOTHING
	`, ra.AccountID, ra.RoleID, ra.OrganizationID, ra.AssignedAt)
	return err
}

func (r *RoleRepository) Unassign(accountID, roleID, orgID string) (bool, error) {
	res, err := r.db.Exec(`
		DELETE FROM role_assignments WHERE account_id = ? AND role_id = ? AND organization_id = ?
	`, accountID, roleID, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *RoleRepository) UnassignAllForMemberTx(tx *sql.Tx, accountID, orgID string) error {
	_, err := tx.Exec(`
		DELETE FROM role_assignments WHERE account_id = ? AND organization_id = ?
	`, accountID, orgID)
	return err
}

// RoleNamesFor returns the names of every role assigned to the account
// inside the organization.
func (r *RoleRepository) RoleNamesFor(accountID, orgID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT r.name FROM role_assignments ra
		JOIN roles r ON r.id = ra.role_id
		WHERE ra.account_id = ? AND ra.organization_id = ?
	`, accountID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *RoleRepository) RolesForMember(accountID, orgID string) ([]*models.Role, error) {
	rows, err := r.db.Query(`
		SELECT r.id, r.name, r.description, r.organization_id, r.is_system_role, r.created_at
		FROM role_assignments ra
		JOIN roles r ON r.id = ra.role_id
		WHERE ra.account_id = ? AND ra.organization_id = ?
	`, accountID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}
