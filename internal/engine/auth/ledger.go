package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"linkvault/internal/platform/models"
	"linkvault/internal/platform/repositories"
)

// SessionLedger owns the persisted refresh-token records. Sessions are
// never physically deleted; revocation keeps the audit trail intact.
type SessionLedger struct {
	sessions *repositories.SessionRepository
	tokens   *TokenService
}

func NewSessionLedger(sessions *repositories.SessionRepository, tokens *TokenService) *SessionLedger {
	return &SessionLedger{sessions: sessions, tokens: tokens}
}

// Open issues an opaque refresh token and persists its session row.
func (l *SessionLedger) Open(accountID string) (string, error) {
	token, err := l.tokens.IssueRefreshToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := &models.Session{
		ID:        "sess_" + uuid.NewString(),
		Token:     token,
		AccountID: accountID,
		ExpiresAt: now.Add(l.tokens.RefreshTokenTTL()).Unix(),
		CreatedAt: now.Unix(),
	}
	if err := l.sessions.Create(session); err != nil {
		return "", err
	}
	return token, nil
}

// Redeem rotates the session: the row is revoked and the owning account id
// returned in one step. The revocation is a single conditional update keyed
// on token AND NOT revoked AND not expired, so two concurrent redeems of
// the same token yield exactly one success. Every failure mode surfaces as
// ErrInvalidSession; the reason is logged, not revealed.
func (l *SessionLedger) Redeem(token string) (string, error) {
	now := time.Now().Unix()

	ok, err := l.sessions.RedeemByToken(token, now)
	if err != nil {
		return "", err
	}
	if !ok {
		l.logRedeemFailure(token, now)
		return "", ErrInvalidSession
	}

	session, err := l.sessions.GetByToken(token)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrInvalidSession
	}
	return session.AccountID, nil
}

func (l *SessionLedger) logRedeemFailure(token string, now int64) {
	session, err := l.sessions.GetByToken(token)
	if err != nil || session == nil {
		log.Debug().Msg("refresh rejected: unknown token")
		return
	}
	switch {
	case session.Revoked:
		log.Warn().Str("session_id", session.ID).Msg("refresh rejected: token already revoked")
	case session.ExpiresAt <= now:
		log.Debug().Str("session_id", session.ID).Msg("refresh rejected: token expired")
	}
}

// Revoke is idempotent; an unknown token is a no-op, not an error.
func (l *SessionLedger) Revoke(token string) error {
	return l.sessions.Revoke(token, time.Now().Unix())
}

// RevokeAllForAccount cuts every live session, used when an administrator
// removes a member or a password is reset.
func (l *SessionLedger) RevokeAllForAccount(accountID string) error {
	return l.sessions.RevokeAllForAccount(accountID, time.Now().Unix())
}
