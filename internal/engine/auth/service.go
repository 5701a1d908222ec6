package auth

import (
	"time"

	"github.com/google/uuid"

	"linkvault/internal/platform/audit"
	"linkvault/internal/platform/models"
	"linkvault/internal/platform/repositories"
)

// RoleSource resolves the role names embedded in access-token claims.
type RoleSource interface {
	RoleNamesFor(accountID, orgID string) ([]string, error)
}

// Service drives the login state machine:
//
//	AwaitingCredentials -> Authenticated
//	AwaitingCredentials -> AwaitingSecondFactor -> Authenticated
//
// A challenge token is the only artifact of the intermediate state; it is
// stateless and bounded by its expiry. A captured challenge token plus a
// valid code can be replayed until that expiry; there is no server-side
// single-use tracking.
type Service struct {
	accounts *repositories.AccountRepository
	ledger   *SessionLedger
	tokens   *TokenService
	totp     TOTPEngine
	roles    RoleSource
	audit    *audit.Logger
}

func NewService(
	accounts *repositories.AccountRepository,
	ledger *SessionLedger,
	tokens *TokenService,
	roles RoleSource,
	auditLog *audit.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		ledger:   ledger,
		tokens:   tokens,
		roles:    roles,
		audit:    auditLog,
	}
}

type RegisterParams struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an individual account. Corporate accounts only come
// into existence through invitation acceptance.
func (s *Service) Register(p RegisterParams) (*LoginResult, error) {
	if taken, err := s.accounts.ExistsByEmail(p.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrConflict
	}
	if taken, err := s.accounts.ExistsByUsername(p.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrConflict
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	account := &models.Account{
		ID:           "usr_" + uuid.NewString(),
		Email:        p.Email,
		Username:     p.Username,
		PasswordHash: &hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		AccountType:  models.AccountTypeIndividual,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionRegister,
		EntityType: "Account", EntityID: account.ID,
	})

	return s.Authenticate(account)
}

// Login verifies credentials and either authenticates outright or demands
// a second factor. Absent account, inactive account and wrong password all
// collapse into the same ErrInvalidCredentials.
func (s *Service) Login(email, password string) (*LoginResult, error) {
	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if account == nil || !VerifyPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.PostCredential(account)
}

// PostCredential is the step shared by password login and SSO callback:
// the caller has already proven who the account is, and this decides
// whether a second factor is still owed.
func (s *Service) PostCredential(account *models.Account) (*LoginResult, error) {
	if account.MFAEnrolled() {
		challenge, err := s.tokens.IssueChallengeToken(account.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Account: account, ChallengeToken: challenge}, nil
	}
	return s.Authenticate(account)
}

// Authenticate opens a session and issues the access/refresh pair, the
// terminal state of the machine.
func (s *Service) Authenticate(account *models.Account) (*LoginResult, error) {
	orgID := ""
	if account.OrganizationID != nil {
		orgID = *account.OrganizationID
	}
	roles, err := s.roles.RoleNamesFor(account.ID, orgID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(account, roles)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.ledger.Open(account.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionLogin,
		EntityType: "Account", EntityID: account.ID, OrganizationID: orgID,
	})

	return &LoginResult{
		Account: account,
		Tokens: &TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(s.tokens.AccessTokenTTL()),
		},
	}, nil
}

// CompleteSecondFactor exchanges a challenge token plus a current TOTP code
// for real tokens.
func (s *Service) CompleteSecondFactor(challengeToken, code string) (*LoginResult, error) {
	accountID, err := s.tokens.ValidateChallenge(challengeToken)
	if err != nil {
		return nil, ErrInvalidChallenge
	}

	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsActive {
		return nil, ErrInvalidChallenge
	}

	if account.TwoFactorSecret == nil || !s.totp.ValidateCode(*account.TwoFactorSecret, code) {
		return nil, ErrInvalidCode
	}

	return s.Authenticate(account)
}

// Refresh redeems the token through the ledger and issues a fresh pair.
// The old token is revoked in the same step: rotation, never reuse.
func (s *Service) Refresh(refreshToken string) (*LoginResult, error) {
	accountID, err := s.ledger.Redeem(refreshToken)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsActive {
		return nil, ErrInvalidSession
	}

	result, err := s.Authenticate(account)
	if err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionRefresh,
		EntityType: "Session", EntityID: account.ID,
	})
	return result, nil
}

// Logout always succeeds; revoking an unknown token is a no-op.
func (s *Service) Logout(refreshToken string) error {
	if err := s.ledger.Revoke(refreshToken); err != nil {
		return err
	}
	s.audit.Record(audit.Event{
		Action: audit.ActionLogout, EntityType: "Session", EntityID: "-",
	})
	return nil
}

// EnrollMFAStart generates and stores an unconfirmed secret. The account
// stays out of the two-step flow until the first code verifies.
func (s *Service) EnrollMFAStart(accountID string) (secret, provisioningURI string, err error) {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return "", "", err
	}
	if account == nil {
		return "", "", ErrNotFound
	}
	if account.TwoFactorConfirmed {
		return "", "", ErrAlreadyEnrolled
	}

	secret, provisioningURI, err = s.totp.GenerateSetup(account.Email)
	if err != nil {
		return "", "", err
	}
	if err := s.accounts.SetPendingTwoFactorSecret(account.ID, secret, time.Now().Unix()); err != nil {
		return "", "", err
	}
	return secret, provisioningURI, nil
}

// EnrollMFAVerify confirms the pending secret with a first valid code and
// returns a fresh token pair.
func (s *Service) EnrollMFAVerify(accountID, code string) (*LoginResult, error) {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotFound
	}
	if account.TwoFactorSecret == nil || *account.TwoFactorSecret == "" {
		return nil, ErrSetupNotStarted
	}
	if !s.totp.ValidateCode(*account.TwoFactorSecret, code) {
		return nil, ErrInvalidCode
	}

	if err := s.accounts.ConfirmTwoFactor(account.ID, time.Now().Unix()); err != nil {
		return nil, err
	}
	account.TwoFactorEnabled = true
	account.TwoFactorConfirmed = true

	s.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionMFAEnroll,
		EntityType: "Account", EntityID: account.ID,
	})

	return s.Authenticate(account)
}

// DisableMFA clears enrollment. Corporate accounts can never disable it.
func (s *Service) DisableMFA(accountID string) error {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotFound
	}
	if account.AccountType == models.AccountTypeCorporate {
		return ErrMFAMandatory
	}

	if err := s.accounts.ClearTwoFactor(account.ID, time.Now().Unix()); err != nil {
		return err
	}

	s.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionMFADisable,
		EntityType: "Account", EntityID: account.ID,
	})
	return nil
}

func (s *Service) CurrentUser(accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

// ChangePassword re-verifies the current password before rehashing.
func (s *Service) ChangePassword(accountID, currentPassword, newPassword string) error {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotFound
	}
	if !VerifyPassword(currentPassword, account.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(account.ID, hash, time.Now().Unix()); err != nil {
		return err
	}

	s.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionPasswordChange,
		EntityType: "Account", EntityID: account.ID,
	})
	return nil
}
