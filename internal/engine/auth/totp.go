package auth

import (
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "LinkVault"

// TOTPEngine generates authenticator secrets and validates 30-second
// stepped codes. Codes are accepted within two steps either side of the
// current one to absorb clock drift.
type TOTPEngine struct{}

// GenerateSetup returns a fresh base32 secret and the otpauth provisioning
// URI that authenticator apps consume, labelled with the user's identity.
func (TOTPEngine) GenerateSetup(identityLabel string) (secret, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: identityLabel,
		SecretSize:  20,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// ValidateCode checks the code against the secret at the current time.
// No replay tracking happens here: each call re-validates against the live
// clock, and the step window bounds how long any code stays valid.
func (TOTPEngine) ValidateCode(secret, code string) bool {
	return validateCodeAt(secret, code, time.Now())
}

func validateCodeAt(secret, code string, at time.Time) bool {
	if secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, at, totp.ValidateOpts{
		Period:    30,
		Skew:      2,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
