package sso

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"linkvault/internal/platform/config"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported sso provider")

	// ErrProvider covers code-exchange failures, user-info failures and
	// providers that expose no usable email.
	ErrProvider = errors.New("sso provider error")
)

// UserInfo is the provider-neutral identity extracted from a userinfo
// response.
type UserInfo struct {
	Subject   string
	Email     string
	Name      string
	FirstName string
	LastName  string
	AvatarURL string
}

// Provider is one entry of the closed registry: the OAuth2 client
// configuration, the userinfo endpoint, and the response-mapping function
// for that provider's payload shape.
type Provider struct {
	Name        string
	OAuth       *oauth2.Config
	UserInfoURL string
	MapUser     func(data map[string]interface{}) (*UserInfo, error)
}

// Registry holds the finite provider set. Providers are declared in code;
// configuration only supplies credentials, so an unknown provider name can
// never be dispatched.
type Registry struct {
	providers map[string]*Provider
}

// NewRegistry builds the google and github descriptors. callbackBase is
// this service's externally reachable base URL.
func NewRegistry(cfg config.SSOConfig, callbackBase string) *Registry {
	callbackBase = strings.TrimRight(callbackBase, "/")

	r := &Registry{providers: map[string]*Provider{}}

	r.providers["google"] = &Provider{
		Name: "google",
		OAuth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  callbackBase + "/api/sso/google/callback",
			Scopes:       []string{"email", "profile"},
			Endpoint:     endpoints.Google,
		},
		UserInfoURL: "https://www.googleapis.com/userinfo/v2/me",
		MapUser:     mapGoogleUser,
	}

	r.providers["github"] = &Provider{
		Name: "github",
		OAuth: &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURL:  callbackBase + "/api/sso/github/callback",
			Scopes:       []string{"user:email"},
			Endpoint:     endpoints.GitHub,
		},
		UserInfoURL: "https://api.github.com/user",
		MapUser:     mapGitHubUser,
	}

	return r
}

// Validate fails fast on providers registered without credentials, so a
// misconfiguration surfaces at startup instead of mid-login.
func (r *Registry) Validate() error {
	for name, p := range r.providers {
		if p.OAuth.ClientID == "" || p.OAuth.ClientSecret == "" {
			return fmt.Errorf("sso provider %q has no client credentials configured", name)
		}
	}
	return nil
}

func (r *Registry) Get(name string) (*Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	return p, nil
}

// Register replaces a provider descriptor; tests use it to point at fake
// endpoints.
func (r *Registry) Register(p *Provider) {
	r.providers[strings.ToLower(p.Name)] = p
}

func mapGoogleUser(data map[string]interface{}) (*UserInfo, error) {
	email := str(data["email"])
	if email == "" {
		return nil, fmt.Errorf("%w: google account has no email", ErrProvider)
	}
	return &UserInfo{
		Subject:   str(data["id"]),
		Email:     email,
		Name:      str(data["name"]),
		FirstName: str(data["given_name"]),
		LastName:  str(data["family_name"]),
		AvatarURL: str(data["picture"]),
	}, nil
}

func mapGitHubUser(data map[string]interface{}) (*UserInfo, error) {
	email := str(data["email"])
	if email == "" {
		return nil, fmt.Errorf("%w: github account has no public email", ErrProvider)
	}
	return &UserInfo{
		Subject:   str(data["id"]),
		Email:     email,
		Name:      str(data["name"]),
		AvatarURL: str(data["avatar_url"]),
	}, nil
}

// str renders the loosely typed userinfo values; GitHub ids arrive as JSON
// numbers.
func str(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
