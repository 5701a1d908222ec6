package repositories

import (
	"database/sql"

	"linkvault/internal/platform/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(s *models.Session) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions (id, token, account_id, expires_at, revoked, revoked_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Token, s.AccountID, s.ExpiresAt, s.Revoked, s.RevokedAt, s.CreatedAt)
	return err
}

func (r *SessionRepository) GetByToken(token string) (*models.Session, error) {
	s := &models.Session{}
	err := r.db.QueryRow(`
		SELECT id, token, account_id, expires_at, revoked, revoked_at, created_at
		FROM sessions WHERE token = ?
	`, token).Scan(&s.ID, &s.Token, &s.AccountID, &s.ExpiresAt, &s.Revoked, &s.RevokedAt, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// RedeemByToken revokes the session in a single conditional update. The
// rows-affected count decides the winner when two callers race on one
// token: exactly one sees true.
func (r *SessionRepository) RedeemByToken(token string, now int64) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE sessions SET revoked = 1, revoked_at = ?
		WHERE token = ? AND revoked = 0 AND expires_at > ?
	`, now, token, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Revoke marks the session revoked if present and live. Missing or
// already-revoked tokens are a no-op.
func (r *SessionRepository) Revoke(token string, now int64) error {
	_, err := r.db.Exec(`
		UPDATE sessions SET revoked = 1, revoked_at = ?
		WHERE token = ? AND revoked = 0
	`, now, token)
	return err
}

func (r *SessionRepository) RevokeAllForAccount(accountID string, now int64) error {
	_, err := r.db.Exec(`
		UPDATE sessions SET revoked = 1, revoked_at = ?
		WHERE account_id = ? AND revoked = 0
	`, now, accountID)
	return err
}
