package reset

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"linkvault/internal/engine/auth"
	"linkvault/internal/platform/audit"
	"linkvault/internal/platform/mail"
	"linkvault/internal/platform/repositories"
)

var ErrInvalidToken = errors.New("invalid or expired reset token")

// Service handles the password-reset flow. Request never reveals whether
// the email exists: the handler reports success either way, and internal
// failures in the request path are logged and swallowed.
type Service struct {
	accounts *repositories.AccountRepository
	store    *Store
	mailer   *mail.Mailer
	audit    *audit.Logger
}

func NewService(accounts *repositories.AccountRepository, store *Store, mailer *mail.Mailer, auditLog *audit.Logger) *Service {
	return &Service{accounts: accounts, store: store, mailer: mailer, audit: auditLog}
}

// Request issues a reset token for the account, if one exists and is not
// SSO-only. The error return is for the caller's logs only; the HTTP
// layer answers the same way regardless.
func (s *Service) Request(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		return err
	}
	if account == nil {
		log.Debug().Msg("password reset requested for unknown email")
		return nil
	}
	if !account.HasPassword() {
		// SSO-only accounts have nothing to reset.
		log.Debug().Str("account_id", account.ID).Msg("password reset requested for sso-only account")
		return nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)

	if err := s.store.Save(ctx, token, account.ID); err != nil {
		return err
	}

	s.mailer.SendPasswordReset(account.Email, token)
	return nil
}

// Confirm consumes the token and replaces the password hash.
func (s *Service) Confirm(ctx context.Context, token, newPassword string) error {
	accountID, err := s.store.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrInvalidToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(account.ID, hash, time.Now().Unix()); err != nil {
		return err
	}

	s.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionPasswordReset,
		EntityType: "Account", EntityID: account.ID,
	})
	return nil
}
