package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		subject_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS organization (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS volunteer (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		points INTEGER NOT NULL DEFAULT 0,
		completed_tasks INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS volunteer_badge (
		volunteer_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		bonus_points INTEGER NOT NULL DEFAULT 0,
		earned_at TEXT NOT NULL,
		PRIMARY KEY (volunteer_id, name),
		FOREIGN KEY (volunteer_id) REFERENCES volunteer(id)
	);

	CREATE TABLE IF NOT EXISTS opportunity (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		capacity_needed INTEGER NOT NULL,
		status TEXT NOT NULL,
		forced_complete INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (organization_id) REFERENCES organization(id)
	);

	CREATE TABLE IF NOT EXISTS opportunity_signup (
		opportunity_id TEXT NOT NULL,
		volunteer_id TEXT NOT NULL,
		signed_up_at TEXT NOT NULL,
		PRIMARY KEY (opportunity_id, volunteer_id),
		FOREIGN KEY (opportunity_id) REFERENCES opportunity(id),
		FOREIGN KEY (volunteer_id) REFERENCES volunteer(id)
	);

	CREATE TABLE IF NOT EXISTS proof (
		id TEXT PRIMARY KEY,
		opportunity_id TEXT NOT NULL,
		volunteer_id TEXT NOT NULL,
		message TEXT NOT NULL,
		attachment_ref TEXT,
		status TEXT NOT NULL,
		submitted_at TEXT NOT NULL,
		rejected_at TEXT,
		superseded INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (opportunity_id) REFERENCES opportunity(id),
		FOREIGN KEY (volunteer_id) REFERENCES volunteer(id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_proof_active
		ON proof(opportunity_id, volunteer_id) WHERE superseded = 0;

	CREATE TABLE IF NOT EXISTS notification (
		id TEXT PRIMARY KEY,
		recipient_kind TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		kind TEXT NOT NULL,
		channel TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notification_recipient
		ON notification(recipient_kind, recipient_id, created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
