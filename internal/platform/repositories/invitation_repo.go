package repositories

import (
	"database/sql"

	"linkvault/internal/platform/models"
)

type InvitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(inv *models.Invitation) error {
	_, err := r.db.Exec(`
		INSERT INTO invitations (id, organization_id, email, token, role_id, invited_by, status, expires_at, accepted_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.OrganizationID, inv.Email, inv.Token, inv.RoleID, inv.InvitedBy, inv.Status,
		inv.ExpiresAt, inv.AcceptedAt, inv.CreatedAt)
	return err
}

func (r *InvitationRepository) GetByToken(token string) (*models.Invitation, error) {
	inv := &models.Invitation{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, email, token, role_id, invited_by, status, expires_at, accepted_at, created_at
		FROM invitations WHERE token = ?
	`, token).Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Token, &inv.RoleID, &inv.InvitedBy,
		&inv.Status, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepository) MarkAcceptedTx(tx *sql.Tx, id string, now int64) error {
	_, err := tx.Exec(`
		UPDATE invitations SET status = ?, accepted_at = ? WHERE id = ?
	`, models.InvitationAccepted, now, id)
	return err
}

func (r *InvitationRepository) ListByOrganization(orgID string) ([]*models.Invitation, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, email, token, role_id, invited_by, status, expires_at, accepted_at, created_at
		FROM invitations WHERE organization_id = ?
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*models.Invitation
	for rows.Next() {
		inv := &models.Invitation{}
		if err := rows.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Token, &inv.RoleID,
			&inv.InvitedBy, &inv.Status, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}
