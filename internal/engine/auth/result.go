package auth

import (
	"time"

	"linkvault/internal/platform/models"
)

// TokenPair is the terminal outcome of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// LoginResult is the two-variant outcome of credential verification:
// either the caller holds tokens, or a second factor is still owed.
// Exactly one of Tokens / ChallengeToken is set.
type LoginResult struct {
	Account        *models.Account
	Tokens         *TokenPair
	ChallengeToken string
}

// SecondFactorRequired reports which variant this result is.
func (r *LoginResult) SecondFactorRequired() bool {
	return r.ChallengeToken != ""
}
