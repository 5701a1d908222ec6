package repositories

import (
	"database/sql"

	"linkvault/internal/platform/models"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

const accountColumns = `id, email, username, password_hash, first_name, last_name, avatar_url,
	account_type, is_active, organization_id, two_factor_secret, two_factor_enabled,
	two_factor_confirmed, sso_provider, sso_subject, created_at, updated_at`

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.FirstName, &a.LastName,
		&a.AvatarURL, &a.AccountType, &a.IsActive, &a.OrganizationID, &a.TwoFactorSecret,
		&a.TwoFactorEnabled, &a.TwoFactorConfirmed, &a.SSOProvider, &a.SSOSubject,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Create(a *models.Account) error {
	return r.create(r.db.Exec, a)
}

func (r *AccountRepository) CreateTx(tx *sql.Tx, a *models.Account) error {
	return r.create(tx.Exec, a)
}

func (r *AccountRepository) create(exec func(string, ...interface{}) (sql.Result, error), a *models.Account) error {
	_, err := exec(`
		INSERT INTO accounts (id, email, username, password_hash, first_name, last_name, avatar_url,
			account_type, is_active, organization_id, two_factor_secret, two_factor_enabled,
			two_factor_confirmed, sso_provider, sso_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.Username, a.PasswordHash, a.FirstName, a.LastName, a.AvatarURL,
		a.AccountType, a.IsActive, a.OrganizationID, a.TwoFactorSecret, a.TwoFactorEnabled,
		a.TwoFactorConfirmed, a.SSOProvider, a.SSOSubject, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *AccountRepository) GetByID(id string) (*models.Account, error) {
	return scanAccount(r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	return scanAccount(r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email))
}

func (r *AccountRepository) GetByUsername(username string) (*models.Account, error) {
	return scanAccount(r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username))
}

func (r *AccountRepository) GetBySSOSubject(provider, subject string) (*models.Account, error) {
	return scanAccount(r.db.QueryRow(`
		SELECT `+accountColumns+` FROM accounts WHERE sso_provider = ? AND sso_subject = ?
	`, provider, subject))
}

func (r *AccountRepository) ExistsByEmail(email string) (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(1) FROM accounts WHERE email = ?`, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AccountRepository) ExistsByUsername(username string) (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(1) FROM accounts WHERE username = ?`, username).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AccountRepository) UpdatePasswordHash(id, hash string, now int64) error {
	_, err := r.db.Exec(`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, now, id)
	return err
}

// SetPendingTwoFactorSecret stores a generated secret without activating it.
// Enrollment completes only when the first code verifies.
func (r *AccountRepository) SetPendingTwoFactorSecret(id, secret string, now int64) error {
	_, err := r.db.Exec(`
		UPDATE accounts SET two_factor_secret = ?, updated_at = ? WHERE id = ?
	`, secret, now, id)
	return err
}

func (r *AccountRepository) ConfirmTwoFactor(id string, now int64) error {
	_, err := r.db.Exec(`
		UPDATE accounts SET two_factor_enabled = 1, two_factor_confirmed = 1, updated_at = ? WHERE id = ?
	`, now, id)
	return err
}

func (r *AccountRepository) ClearTwoFactor(id string, now int64) error {
	_, err := r.db.Exec(`
		UPDATE accounts SET two_factor_secret = NULL, two_factor_enabled = 0, two_factor_confirmed = 0, updated_at = ?
		WHERE id = ?
	`, now, id)
	return err
}

func (r *AccountRepository) LinkSSOIdentity(id, provider, subject string, now int64) error {
	_, err := r.db.Exec(`
		UPDATE accounts SET sso_provider = ?, sso_subject = ?, updated_at = ? WHERE id = ?
	`, provider, subject, now, id)
	return err
}

func (r *AccountRepository) SetOrganization(id string, orgID *string, now int64) error {
	_, err := r.db.Exec(`UPDATE accounts SET organization_id = ?, updated_at = ? WHERE id = ?`, orgID, now, id)
	return err
}

func (r *AccountRepository) SetOrganizationTx(tx *sql.Tx, id string, orgID *string, now int64) error {
	_, err := tx.Exec(`UPDATE accounts SET organization_id = ?, updated_at = ? WHERE id = ?`, orgID, now, id)
	return err
}

func (r *AccountRepository) ListByOrganization(orgID string) ([]*models.Account, error) {
	rows, err := r.db.Query(`SELECT `+accountColumns+` FROM accounts WHERE organization_id = ?`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a := &models.Account{}
		err := rows.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.FirstName, &a.LastName,
			&a.AvatarURL, &a.AccountType, &a.IsActive, &a.OrganizationID, &a.TwoFactorSecret,
			&a.TwoFactorEnabled, &a.TwoFactorConfirmed, &a.SSOProvider, &a.SSOSubject,
			&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
