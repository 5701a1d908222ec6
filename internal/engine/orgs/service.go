package orgs

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"linkvault/internal/engine/auth"
	"linkvault/internal/engine/rbac"
	"linkvault/internal/platform/audit"
	"linkvault/internal/platform/mail"
	"linkvault/internal/platform/models"
	"linkvault/internal/platform/repositories"
)

var (
	ErrNotFound          = errors.New("organization not found")
	ErrForbidden         = errors.New("admin privileges required")
	ErrNotMember         = errors.New("not a member of this organization")
	ErrAlreadyMember     = errors.New("user is already a member")
	ErrConflict          = errors.New("email or username already in use")
	ErrInvalidInvitation = errors.New("invitation not found or already used")
	ErrExpiredInvitation = errors.New("invitation has expired")
	ErrRoleNotFound      = errors.New("role not found")
	ErrRoleScopeMismatch = errors.New("role does not belong to this organization")
)

const invitationTTL = 7 * 24 * time.Hour

// Service owns organization lifecycle: creation with automatic Admin
// assignment, member invitation and acceptance, member removal, and
// org-scoped role management.
type Service struct {
	orgs        *repositories.OrganizationRepository
	accounts    *repositories.AccountRepository
	roles       *repositories.RoleRepository
	invitations *repositories.InvitationRepository
	rbac        *rbac.Resolver
	ledger      *auth.SessionLedger
	mailer      *mail.Mailer
	audit       *audit.Logger
}

func NewService(
	orgs *repositories.OrganizationRepository,
	accounts *repositories.AccountRepository,
	roles *repositories.RoleRepository,
	invitations *repositories.InvitationRepository,
	resolver *rbac.Resolver,
	ledger *auth.SessionLedger,
	mailer *mail.Mailer,
	auditLog *audit.Logger,
) *Service {
	return &Service{
		orgs:        orgs,
		accounts:    accounts,
		roles:       roles,
		invitations: invitations,
		rbac:        resolver,
		ledger:      ledger,
		mailer:      mailer,
		audit:       auditLog,
	}
}

// Create stores the organization and assigns the creator the system Admin
// role in one transaction.
func (s *Service) Create(creatorID, name, domain string) (*models.Organization, error) {
	adminRole, err := s.roles.GetSystemRoleByName(models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if adminRole == nil {
		return nil, errors.New("system Admin role not seeded")
	}

	now := time.Now().Unix()
	org := &models.Organization{
		ID:        "org_" + uuid.NewString(),
		Name:      name,
		Domain:    domain,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.orgs.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.orgs.CreateTx(tx, org); err != nil {
		return nil, err
	}
	if err := s.accounts.SetOrganizationTx(tx, creatorID, &org.ID, now); err != nil {
		return nil, err
	}
	if err := s.roles.AssignTx(tx, &models.RoleAssignment{
		AccountID:      creatorID,
		RoleID:         adminRole.ID,
		OrganizationID: org.ID,
		AssignedAt:     now,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID: creatorID, Action: audit.ActionOrgCreate,
		EntityType: "Organization", EntityID: org.ID, OrganizationID: org.ID,
	})
	return org, nil
}

// Get is member-gated.
func (s *Service) Get(accountID, orgID string) (*models.Organization, error) {
	org, err := s.orgs.GetByID(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}

	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.OrganizationID == nil || *account.OrganizationID != orgID {
		return nil, ErrNotMember
	}
	return org, nil
}

func (s *Service) Update(adminID, orgID string, name, domain *string) (*models.Organization, error) {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}

	if name != nil {
		org.Name = *name
	}
	if domain != nil {
		org.Domain = *domain
	}
	org.UpdatedAt = time.Now().Unix()

	if err := s.orgs.Update(org); err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID: adminID, Action: audit.ActionOrgUpdate,
		EntityType: "Organization", EntityID: org.ID, OrganizationID: org.ID,
	})
	return org, nil
}

type Member struct {
	Account *models.Account `json:"account"`
	Roles   []string        `json:"roles"`
}

func (s *Service) Members(adminID, orgID string) ([]Member, error) {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return nil, err
	}

	accounts, err := s.accounts.ListByOrganization(orgID)
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(accounts))
	for _, account := range accounts {
		names, err := s.roles.RoleNamesFor(account.ID, orgID)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{Account: account, Roles: names})
	}
	return members, nil
}

// Invite issues a 7-day invitation and mails the token. Mail failures are
// swallowed inside the mailer.
func (s *Service) Invite(adminID, orgID, email, roleID string) (*models.Invitation, error) {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return nil, err
	}

	existing, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.OrganizationID != nil && *existing.OrganizationID == orgID {
		return nil, ErrAlreadyMember
	}

	role, err := s.roles.GetByID(roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	if !role.IsSystemRole && (role.OrganizationID == nil || *role.OrganizationID != orgID) {
		return nil, ErrRoleScopeMismatch
	}

	now := time.Now()
	inv := &models.Invitation{
		ID:             "inv_" + uuid.NewString(),
		OrganizationID: orgID,
		Email:          email,
		Token:          uuid.NewString(),
		RoleID:         roleID,
		InvitedBy:      adminID,
		Status:         models.InvitationPending,
		ExpiresAt:      now.Add(invitationTTL).Unix(),
		CreatedAt:      now.Unix(),
	}
	if err := s.invitations.Create(inv); err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID: adminID, Action: audit.ActionInviteIssue,
		EntityType: "Invitation", EntityID: inv.ID, OrganizationID: orgID,
		Metadata: map[string]interface{}{"email": email},
	})

	org, _ := s.orgs.GetByID(orgID)
	admin, _ := s.accounts.GetByID(adminID)
	orgName, adminName := "LinkVault Organization", "Admin"
	if org != nil {
		orgName = org.Name
	}
	if admin != nil {
		adminName = admin.Username
	}
	s.mailer.SendInvitation(email, orgName, adminName, inv.Token)

	return inv, nil
}

type AcceptInvitationParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// AcceptInvitation terminal-transitions the invitation: it creates the
// corporate account with MFA flags pre-set (mandatory for corporate) and
// assigns the invited role, all in one transaction so a half-accepted
// invitation can never exist.
func (s *Service) AcceptInvitation(token string, p AcceptInvitationParams) (*models.Account, error) {
	inv, err := s.invitations.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.Status != models.InvitationPending {
		return nil, ErrInvalidInvitation
	}
	if inv.ExpiresAt < time.Now().Unix() {
		return nil, ErrExpiredInvitation
	}

	if taken, err := s.accounts.ExistsByEmail(inv.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrConflict
	}
	if taken, err := s.accounts.ExistsByUsername(p.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrConflict
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	account := &models.Account{
		ID:                 "usr_" + uuid.NewString(),
		Email:              inv.Email,
		Username:           p.Username,
		PasswordHash:       &hash,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		AccountType:        models.AccountTypeCorporate,
		IsActive:           true,
		OrganizationID:     &inv.OrganizationID,
		TwoFactorEnabled:   true,
		TwoFactorConfirmed: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	tx, err := s.accounts.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.accounts.CreateTx(tx, account); err != nil {
		return nil, err
	}
	if err := s.roles.AssignTx(tx, &models.RoleAssignment{
		AccountID:      account.ID,
		RoleID:         inv.RoleID,
		OrganizationID: inv.OrganizationID,
		AssignedAt:     now,
	}); err != nil {
		return nil, err
	}
	if err := s.invitations.MarkAcceptedTx(tx, inv.ID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.audit.Record(audit.Event{
		ActorID: account.ID, Action: audit.ActionInviteAccept,
		EntityType: "Invitation", EntityID: inv.ID, OrganizationID: inv.OrganizationID,
	})
	return account, nil
}

// RemoveMember clears the membership, drops the member's org-scoped role
// assignments, and revokes their live sessions.
func (s *Service) RemoveMember(adminID, orgID, memberID string) error {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return err
	}

	member, err := s.accounts.GetByID(memberID)
	if err != nil {
		return err
	}
	if member == nil || member.OrganizationID == nil || *member.OrganizationID != orgID {
		return ErrNotMember
	}

	tx, err := s.accounts.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.accounts.SetOrganizationTx(tx, memberID, nil, time.Now().Unix()); err != nil {
		return err
	}
	if err := s.roles.UnassignAllForMemberTx(tx, memberID, orgID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if err := s.ledger.RevokeAllForAccount(memberID); err != nil {
		return err
	}

	s.audit.Record(audit.Event{
		ActorID: adminID, Action: audit.ActionMemberRemove,
		EntityType: "Account", EntityID: memberID, OrganizationID: orgID,
	})
	return nil
}

// ListRoles returns the system roles plus the organization's custom ones.
func (s *Service) ListRoles(adminID, orgID string) ([]*models.Role, error) {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return nil, err
	}
	return s.roles.ListForOrganization(orgID)
}

func (s *Service) CreateRole(adminID, orgID, name, description string) (*models.Role, error) {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return nil, err
	}

	role := &models.Role{
		ID:             "role_" + uuid.NewString(),
		Name:           name,
		Description:    description,
		OrganizationID: &orgID,
		IsSystemRole:   false,
		CreatedAt:      time.Now().Unix(),
	}
	if err := s.roles.Create(role); err != nil {
		return nil, err
	}
	return role, nil
}

// AssignRole binds (member, role, org). A role may only be assigned inside
// its owning organization unless it is system-wide. Assignment is
// idempotent.
func (s *Service) AssignRole(adminID, orgID, roleID, memberID string) error {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return err
	}

	member, err := s.accounts.GetByID(memberID)
	if err != nil {
		return err
	}
	if member == nil || member.OrganizationID == nil || *member.OrganizationID != orgID {
		return ErrNotMember
	}

	role, err := s.roles.GetByID(roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrRoleNotFound
	}
	if !role.IsSystemRole && (role.OrganizationID == nil || *role.OrganizationID != orgID) {
		return ErrRoleScopeMismatch
	}

	if err := s.roles.Assign(&models.RoleAssignment{
		AccountID:      memberID,
		RoleID:         roleID,
		OrganizationID: orgID,
		AssignedAt:     time.Now().Unix(),
	}); err != nil {
		return err
	}

	s.audit.Record(audit.Event{
		ActorID: adminID, Action: audit.ActionRoleAssign,
		EntityType: "Role", EntityID: roleID, OrganizationID: orgID,
		Metadata: map[string]interface{}{"member_id": memberID},
	})
	return nil
}

func (s *Service) RevokeRole(adminID, orgID, roleID, memberID string) error {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return err
	}

	removed, err := s.roles.Unassign(memberID, roleID, orgID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrRoleNotFound
	}

	s.audit.Record(audit.Event{
		ActorID: adminID, Action: audit.ActionRoleRevoke,
		EntityType: "Role", EntityID: roleID, OrganizationID: orgID,
		Metadata: map[string]interface{}{"member_id": memberID},
	})
	return nil
}

func (s *Service) MemberRoles(adminID, orgID, memberID string) ([]*models.Role, error) {
	if err := s.ensureAdmin(adminID, orgID); err != nil {
		return nil, err
	}
	return s.roles.RolesForMember(memberID, orgID)
}

func (s *Service) ensureAdmin(accountID, orgID string) error {
	isAdmin, err := s.rbac.IsAdmin(accountID, orgID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrForbidden
	}
	return nil
}
