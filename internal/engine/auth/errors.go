package auth

import "errors"

// User-facing failure modes of the login state machine. Each maps to a
// stable machine-readable code at the API boundary; anything else is an
// internal fault.
var (
	// ErrInvalidCredentials covers a missing account, an inactive account
	// and a password mismatch alike, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidChallenge covers a bad signature, expiry, or a token whose
	// purpose claim is not "2fa".
	ErrInvalidChallenge = errors.New("invalid or expired challenge token")

	ErrInvalidCode = errors.New("invalid two-factor code")

	// ErrInvalidSession covers missing, expired and revoked refresh tokens
	// without distinguishing which.
	ErrInvalidSession = errors.New("invalid refresh token")

	ErrAlreadyEnrolled = errors.New("two-factor authentication is already enabled")
	ErrSetupNotStarted = errors.New("two-factor setup has not been started")
	ErrMFAMandatory    = errors.New("two-factor authentication is mandatory for corporate accounts")
	ErrNotFound        = errors.New("account not found")
	ErrConflict        = errors.New("email or username already in use")
)
