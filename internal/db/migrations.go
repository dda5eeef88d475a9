package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// All dates are stored as YYYY-MM-DD text so they compare lexicographically.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id                 TEXT    PRIMARY KEY,
		name               TEXT    NOT NULL DEFAULT '',
		address            TEXT    NOT NULL,
		commune            TEXT    NOT NULL,
		type               TEXT    NOT NULL DEFAULT '',
		land_m2            REAL    NOT NULL DEFAULT 0 CHECK (land_m2 >= 0),
		built_m2           REAL    NOT NULL DEFAULT 0 CHECK (built_m2 >= 0),
		storage_m2         REAL    NOT NULL DEFAULT 0 CHECK (storage_m2 >= 0),
		condominium        TEXT,
		owner              TEXT    NOT NULL DEFAULT '',
		price_uf           TEXT    NOT NULL DEFAULT '0',
		status             TEXT    NOT NULL CHECK (status IN ('AVAILABLE', 'LEASED', 'NOTICE_GIVEN')),
		vacancy_start_date TEXT,
		notice_end_date    TEXT,
		tenant             TEXT,
		lease_start_date   TEXT,
		lease_end_date     TEXT,
		lease_type         TEXT,
		created_at         TEXT    NOT NULL,
		updated_at         TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id                    TEXT    PRIMARY KEY,
		property_id           TEXT    NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		visit_date            TEXT    NOT NULL,
		executive_name        TEXT    NOT NULL,
		client_name           TEXT    NOT NULL,
		client_phone          TEXT    NOT NULL DEFAULT '',
		client_email          TEXT    NOT NULL DEFAULT '',
		offer_uf              TEXT,
		has_broker            INTEGER NOT NULL DEFAULT 0,
		broker_name           TEXT    NOT NULL DEFAULT '',
		comments              TEXT    NOT NULL DEFAULT '',
		next_action           TEXT    NOT NULL,
		next_action_date      TEXT    NOT NULL,
		action_status         TEXT    NOT NULL DEFAULT 'PENDING' CHECK (action_status IN ('PENDING', 'DONE')),
		action_completed_date TEXT,
		created_at            TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS action_history (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		visit_id       TEXT    NOT NULL REFERENCES visits(id) ON DELETE CASCADE,
		action         TEXT    NOT NULL,
		scheduled_date TEXT    NOT NULL,
		status         TEXT    NOT NULL CHECK (status IN ('PENDING', 'DONE', 'ARCHIVED')),
		archived_date  TEXT    NOT NULL,
		completed_date TEXT,
		note           TEXT    NOT NULL DEFAULT '',
		closure_reason TEXT    NOT NULL DEFAULT 'MANUAL' CHECK (closure_reason IN ('MANUAL', 'AUTO_LEASE_LOST'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_property ON visits(property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_history_visit ON action_history(visit_id)`,
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		email      TEXT    NOT NULL UNIQUE,
		name       TEXT    NOT NULL DEFAULT '',
		role       TEXT    NOT NULL DEFAULT 'EXECUTIVE' CHECK (role IN ('ADMIN', 'EXECUTIVE', 'OPERATIONS')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		name         TEXT     NOT NULL,
		email        TEXT     NOT NULL DEFAULT '',
		key_prefix   TEXT     NOT NULL,
		key_hash     TEXT     NOT NULL UNIQUE,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME
	)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
