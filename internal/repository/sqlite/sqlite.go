// Package sqlite implements the repository interfaces on an embedded SQLite
// database. It stands in for the hosted relational platform the production
// deployment uses; the service layer only ever sees the repository
// interfaces, so swapping the backend is a wiring change in main.
//
// modernc.org/sqlite is a pure-Go translation of SQLite — no CGo, so the
// binary cross-compiles cleanly and ":memory:" databases keep tests fast.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. One struct for all tables keeps wiring simple at this scale.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests), applies pragmas,
// and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during a write — required for a web server
	// where generation requests and referral grants hit the DB in parallel.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	// A single writer connection sidesteps SQLITE_BUSY under concurrent
	// debits; reads still come from the WAL snapshot.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always deferred wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			email        TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// total_credits carries a CHECK constraint as a second line of defence;
	// the debit path already refuses to go below zero.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS credit_balances (
			user_id          TEXT PRIMARY KEY,
			total_credits    INTEGER NOT NULL DEFAULT 0 CHECK (total_credits >= 0),
			referral_credits INTEGER NOT NULL DEFAULT 0,
			ad_credits       INTEGER NOT NULL DEFAULT 0,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating credit_balances table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS content_artifacts (
			id                 TEXT PRIMARY KEY,
			user_id            TEXT NOT NULL,
			title              TEXT NOT NULL DEFAULT '',
			content            TEXT NOT NULL,
			visualization_data TEXT,
			type               TEXT NOT NULL DEFAULT '',
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_artifacts_user_created
			ON content_artifacts(user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating content_artifacts table: %w", err)
	}

	// The UNIQUE index is what makes referral processing idempotent under
	// races: two concurrent inserts for the same ordered pair cannot both
	// succeed.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS referrals (
			id          TEXT PRIMARY KEY,
			referrer_id TEXT NOT NULL,
			referred_id TEXT NOT NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_referrals_pair
			ON referrals(referrer_id, referred_id);
	`)
	if err != nil {
		return fmt.Errorf("creating referrals table: %w", err)
	}

	return nil
}
