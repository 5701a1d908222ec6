package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"linkvault/internal/platform/config"
)

// New opens the application database. Foreign keys are enforced so role
// assignments cannot outlive their account, role or organization rows.
func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

const Schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	domain TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	account_type TEXT NOT NULL DEFAULT 'individual',
	is_active INTEGER NOT NULL DEFAULT 1,
	organization_id TEXT REFERENCES organizations(id),
	two_factor_secret TEXT,
	two_factor_enabled INTEGER NOT NULL DEFAULT 0,
	two_factor_confirmed INTEGER NOT NULL DEFAULT 0,
	sso_provider TEXT,
	sso_subject TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	token TEXT UNIQUE NOT NULL,
	account_id TEXT NOT NULL REFERENCES accounts(id),
	expires_at INTEGER NOT NULL,
	revoked INTEGER NOT NULL DEFAULT 0,
	revoked_at INTEGER,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS roles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	organization_id TEXT REFERENCES organizations(id),
	is_system_role INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS role_assignments (
	account_id TEXT NOT NULL REFERENCES accounts(id),
	role_id TEXT NOT NULL REFERENCES roles(id),
	organization_id TEXT NOT NULL REFERENCES organizations(id),
	assigned_at INTEGER NOT NULL,
	PRIMARY KEY (account_id, role_id, organization_id)
);

CREATE TABLE IF NOT EXISTS invitations (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL REFERENCES organizations(id),
	email TEXT NOT NULL,
	token TEXT UNIQUE NOT NULL,
	role_id TEXT NOT NULL REFERENCES roles(id),
	invited_by TEXT NOT NULL REFERENCES accounts(id),
	status TEXT NOT NULL DEFAULT 'pending',
	expires_at INTEGER NOT NULL,
	accepted_at INTEGER,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	organization_id TEXT,
	actor_id TEXT,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	metadata TEXT,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id);
CREATE INDEX IF NOT EXISTS idx_assignments_account ON role_assignments(account_id, organization_id);
CREATE INDEX IF NOT EXISTS idx_invitations_org ON invitations(organization_id);
`

// Migrate applies the schema and seeds the immutable system roles.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return err
	}
	return seedSystemRoles(db)
}

func seedSystemRoles(db *sql.DB) error {
	now := time.Now().Unix()
	for _, r := range []struct{ id, name, desc string }{
		{"role_system_admin", "Admin", "Organization administrator"},
		{"role_system_employee", "Employee", "Organization member"},
	} {
		_, err := db.Exec(`
			INSERT INTO roles (id, name, description, organization_id, is_system_role, created_at)
			VALUES (?, ?, ?, NULL, 1, ?)
			ON CONFLICT(id) DO NOTHING
		`, r.id, r.name, r.desc, now)
		if err != nil {
			return err
		}
	}
	return nil
}
