package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"linkvault/internal/platform/config"
	"linkvault/internal/platform/models"
)

const purposeTwoFactor = "2fa"

type Claims struct {
	UserID         string   `json:"uid"`
	Email          string   `json:"email,omitempty"`
	Username       string   `json:"username,omitempty"`
	AccountType    string   `json:"account_type,omitempty"`
	OrganizationID string   `json:"oid,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	Purpose        string   `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues the three token kinds the engine deals in: signed
// claim-bearing access tokens, opaque refresh tokens that act only as
// session-ledger lookup keys, and short-lived signed 2FA challenge tokens.
type TokenService struct {
	config config.JWTConfig
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{config: cfg}
}

func (s *TokenService) AccessTokenTTL() time.Duration {
	if s.config.AccessTokenTTL > 0 {
		return s.config.AccessTokenTTL
	}
	return time.Hour
}

func (s *TokenService) RefreshTokenTTL() time.Duration {
	if s.config.RefreshTokenTTL > 0 {
		return s.config.RefreshTokenTTL
	}
	return 7 * 24 * time.Hour
}

func (s *TokenService) challengeTTL() time.Duration {
	if s.config.ChallengeTTL > 0 {
		return s.config.ChallengeTTL
	}
	return 10 * time.Minute
}

// IssueAccessToken embeds the account's identity and one claim entry per
// assigned role.
func (s *TokenService) IssueAccessToken(account *models.Account, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      account.ID,
		Email:       account.Email,
		Username:    account.Username,
		AccountType: account.AccountType,
		Roles:       roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTokenTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
			Audience:  jwt.ClaimStrings{s.config.Audience},
		},
	}
	if account.OrganizationID != nil {
		claims.OrganizationID = *account.OrganizationID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// IssueRefreshToken returns 64 bytes of CSPRNG output, base64-encoded. It
// carries no claims; the session ledger is the source of truth.
func (s *TokenService) IssueRefreshToken() (string, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// IssueChallengeToken is the pending-second-factor credential: same signing
// scheme as the access token but purpose-tagged and short-lived.
func (s *TokenService) IssueChallengeToken(accountID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  accountID,
		Purpose: purposeTwoFactor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.challengeTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
			Audience:  jwt.ClaimStrings{s.config.Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// Validate verifies signature, issuer, audience and expiry. It returns an
// error rather than panicking on any malformed input; callers treat every
// failure as "unauthenticated".
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithAudience(s.config.Audience), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ValidateChallenge accepts only tokens carrying the 2fa purpose claim and
// returns the embedded account id.
func (s *TokenService) ValidateChallenge(tokenString string) (string, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return "", ErrInvalidChallenge
	}
	if claims.Purpose != purposeTwoFactor || claims.UserID == "" {
		return "", ErrInvalidChallenge
	}
	return claims.UserID, nil
}
