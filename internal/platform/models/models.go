package models

const (
	AccountTypeIndividual = "individual"
	AccountTypeCorporate  = "corporate"

	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
	InvitationRevoked  = "revoked"

	RoleAdmin    = "Admin"
	RoleEmployee = "Employee"
)

type Account struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Username       string  `json:"username"`
	PasswordHash   *string `json:"-"`
	FirstName      string  `json:"first_name,omitempty"`
	LastName       string  `json:"last_name,omitempty"`
	AvatarURL      string  `json:"avatar_url,omitempty"`
	AccountType    string  `json:"account_type"`
	IsActive       bool    `json:"is_active"`
	OrganizationID *string `json:"organization_id,omitempty"`

	TwoFactorSecret    *string `json:"-"`
	TwoFactorEnabled   bool    `json:"two_factor_enabled"`
	TwoFactorConfirmed bool    `json:"two_factor_confirmed"`

	SSOProvider *string `json:"sso_provider,omitempty"`
	SSOSubject  *string `json:"-"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// HasPassword reports whether the account can be password-authenticated.
// SSO-only accounts carry no hash.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// MFAEnrolled reports whether the two-step login flow applies: the secret
// was both stored and confirmed with a first valid code.
func (a *Account) MFAEnrolled() bool {
	return a.TwoFactorEnabled && a.TwoFactorConfirmed
}

type Session struct {
	ID        string  `json:"id"`
	Token     string  `json:"-"`
	AccountID string  `json:"account_id"`
	ExpiresAt int64   `json:"expires_at"`
	Revoked   bool    `json:"revoked"`
	RevokedAt *int64  `json:"revoked_at,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Domain    string `json:"domain,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type Role struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	OrganizationID *string `json:"organization_id,omitempty"`
	IsSystemRole   bool    `json:"is_system_role"`
	CreatedAt      int64   `json:"created_at"`
}

type RoleAssignment struct {
	AccountID      string `json:"account_id"`
	RoleID         string `json:"role_id"`
	OrganizationID string `json:"organization_id"`
	AssignedAt     int64  `json:"assigned_at"`
}

type Invitation struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	Email          string  `json:"email"`
	Token          string  `json:"-"`
	RoleID         string  `json:"role_id"`
	InvitedBy      string  `json:"invited_by"`
	Status         string  `json:"status"`
	ExpiresAt      int64   `json:"expires_at"`
	AcceptedAt     *int64  `json:"accepted_at,omitempty"`
	CreatedAt      int64   `json:"created_at"`
}
