package sso

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"linkvault/internal/engine/auth"
	"linkvault/internal/platform/audit"
	"linkvault/internal/platform/models"
	"linkvault/internal/platform/repositories"
)

// Resolver maps a third-party identity onto a local account and hands the
// result to the login orchestrator's post-credential step.
type Resolver struct {
	registry *Registry
	accounts *repositories.AccountRepository
	authSvc  *auth.Service
	audit    *audit.Logger
	timeout  time.Duration
}

func NewResolver(
	registry *Registry,
	accounts *repositories.AccountRepository,
	authSvc *auth.Service,
	auditLog *audit.Logger,
	timeout time.Duration,
) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		registry: registry,
		accounts: accounts,
		authSvc:  authSvc,
		audit:    auditLog,
		timeout:  timeout,
	}
}

// AuthorizeURL builds the provider's authorization redirect.
func (r *Resolver) AuthorizeURL(provider, state string) (string, error) {
	p, err := r.registry.Get(provider)
	if err != nil {
		return "", err
	}
	return p.OAuth.AuthCodeURL(state), nil
}

// Callback exchanges the authorization code, fetches the provider's user
// info, and resolves a local account in order: exact (provider, subject)
// match; email match, which links the SSO identity onto the existing
// account; otherwise a brand-new individual account. Provider calls are
// time-bounded and fail closed into ErrProvider.
func (r *Resolver) Callback(ctx context.Context, provider, code string) (*auth.LoginResult, error) {
	p, err := r.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := r.fetchUserInfo(ctx, p, code)
	if err != nil {
		return nil, err
	}

	account, err := r.resolveAccount(p.Name, info)
	if err != nil {
		return nil, err
	}

	orgID := ""
	if account.OrganizationID != nil {
		orgID = *account.OrganizationID
	}
	r.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionLoginSSO,
		EntityType: "Account", EntityID: account.ID, OrganizationID: orgID,
		Metadata: map[string]interface{}{"provider": p.Name},
	})

	return r.authSvc.PostCredential(account)
}

func (r *Resolver) fetchUserInfo(ctx context.Context, p *Provider, code string) (*UserInfo, error) {
	token, err := p.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "LinkVault")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo fetch failed: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", ErrProvider, resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: userinfo decode failed: %v", ErrProvider, err)
	}

	info, err := p.MapUser(data)
	if err != nil {
		return nil, err
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("%w: userinfo carried no subject id", ErrProvider)
	}
	return info, nil
}

func (r *Resolver) resolveAccount(provider string, info *UserInfo) (*models.Account, error) {
	account, err := r.accounts.GetBySSOSubject(provider, info.Subject)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	now := time.Now().Unix()

	// Email fallback: link rather than duplicate.
	account, err = r.accounts.GetByEmail(info.Email)
	if err != nil {
		return nil, err
	}
	if account != nil {
		if err := r.accounts.LinkSSOIdentity(account.ID, provider, info.Subject, now); err != nil {
			return nil, err
		}
		account.SSOProvider = &provider
		account.SSOSubject = &info.Subject
		return account, nil
	}

	username, err := r.generateUniqueUsername(usernameBase(info))
	if err != nil {
		return nil, err
	}

	account = &models.Account{
		ID:          "usr_" + uuid.NewString(),
		Email:       info.Email,
		Username:    username,
		FirstName:   info.FirstName,
		LastName:    info.LastName,
		AvatarURL:   info.AvatarURL,
		AccountType: models.AccountTypeIndividual,
		IsActive:    true,
		SSOProvider: &provider,
		SSOSubject:  &info.Subject,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.accounts.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

func usernameBase(info *UserInfo) string {
	base := info.Name
	if base == "" {
		base = strings.SplitN(info.Email, "@", 2)[0]
	}
	return strings.ToLower(strings.ReplaceAll(base, " ", ""))
}

// generateUniqueUsername resolves collisions with numeric suffixes 1..99,
// then falls back to a random suffix.
func (r *Resolver) generateUniqueUsername(base string) (string, error) {
	if base == "" {
		base = "user"
	}

	taken, err := r.accounts.ExistsByUsername(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 1; i < 100; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		taken, err := r.accounts.ExistsByUsername(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return base + hex.EncodeToString(suffix), nil
}
