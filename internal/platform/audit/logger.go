package audit

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Security-relevant state transitions recorded by the engine.
const (
	ActionLogin            = "auth.login"
	ActionLoginSSO         = "auth.login_sso"
	ActionRefresh          = "auth.refresh"
	ActionLogout           = "auth.logout"
	ActionRegister         = "auth.register"
	ActionPasswordChange   = "auth.password_change"
	ActionPasswordReset    = "auth.password_reset"
	ActionMFAEnroll        = "auth.mfa_enroll"
	ActionMFADisable       = "auth.mfa_disable"
	ActionOrgCreate        = "org.create"
	ActionOrgUpdate        = "org.update"
	ActionInviteIssue      = "org.invite"
	ActionInviteAccept     = "org.invite_accept"
	ActionMemberRemove     = "org.member_remove"
	ActionRoleAssign       = "rbac.role_assign"
	ActionRoleRevoke       = "rbac.role_revoke"
)

type Event struct {
	ActorID        string
	Action         string
	EntityType     string
	EntityID       string
	OrganizationID string
	Metadata       map[string]interface{}
}

// Logger writes audit events to the audit_logs table. Writes run on their
// own goroutine and a failed insert only logs a warning: audit is a
// side-effect sink and must never fail the operation that produced it.
type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Record(ev Event) {
	if l == nil || l.db == nil {
		return
	}

	id := "audit_" + uuid.NewString()
	createdAt := time.Now().Unix()

	var metaJSON []byte
	if ev.Metadata != nil {
		metaJSON, _ = json.Marshal(ev.Metadata)
	}

	go func() {
		_, err := l.db.Exec(`
			INSERT INTO audit_logs (id, organization_id, actor_id, action, entity_type, entity_id, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, ev.OrganizationID, ev.ActorID, ev.Action, ev.EntityType, ev.EntityID, string(metaJSON), createdAt)
		if err != nil {
			log.Warn().Err(err).Str("action", ev.Action).Msg("audit write failed")
		}
	}()
}
