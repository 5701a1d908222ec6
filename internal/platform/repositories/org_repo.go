package repositories

import (
	"database/sql"

	"linkvault/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	_, err := tx.Exec(`
		INSERT INTO organizations (id, name, domain, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.Domain, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, name, domain, created_at, updated_at FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Name, &org.Domain, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) Update(org *models.Organization) error {
	_, err := r.db.Exec(`
		UPDATE organizations SET name = ?, domain = ?, updated_at = ? WHERE id = ?
	`, org.Name, org.Domain, org.UpdatedAt, org.ID)
	return err
}

func (r *OrganizationRepository) MemberCount(orgID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM accounts WHERE organization_id = ?`, orgID).Scan(&n)
	return n, err
}
