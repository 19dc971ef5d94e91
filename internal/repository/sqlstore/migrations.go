package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type migration struct {
	version int
	name    string
	sql     string
}

// Column types are limited to what SQLite and PostgreSQL both accept.
// Each record table carries its natural key as a UNIQUE constraint so two
// concurrent first submissions cannot both insert.
var migrations = []migration{
	{
		version: 1,
		name:    "users",
		sql: `
CREATE TABLE IF NOT EXISTS users (
  email         TEXT PRIMARY KEY,
  password_hash TEXT NOT NULL,
  created_at    TEXT NOT NULL
);
`,
	},
	{
		version: 2,
		name:    "event_records",
		sql: `
CREATE TABLE IF NOT EXISTS foods (
  id             TEXT PRIMARY KEY,
  email          TEXT NOT NULL REFERENCES users(email),
  day            TEXT NOT NULL,
  name           TEXT NOT NULL,
  meal_time      TEXT NOT NULL,
  quantity       DOUBLE PRECISION NOT NULL DEFAULT 1,
  quantity_units TEXT NOT NULL DEFAULT 'UNIT',
  calories       DOUBLE PRECISION NOT NULL DEFAULT 0,
  category       TEXT NOT NULL DEFAULT '',
  created_at     TEXT NOT NULL,
  updated_at     TEXT NOT NULL,
  UNIQUE (email, name, meal_time)
);
CREATE INDEX IF NOT EXISTS idx_foods_email_day ON foods(email, day);

CREATE TABLE IF NOT EXISTS commutes (
  id         TEXT PRIMARY KEY,
  email      TEXT NOT NULL REFERENCES users(email),
  day        TEXT NOT NULL,
  arrival    TEXT NOT NULL,
  departure  TEXT NOT NULL DEFAULT '',
  method     TEXT NOT NULL DEFAULT '',
  distance   DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (email, arrival)
);
CREATE INDEX IF NOT EXISTS idx_commutes_email_day ON commutes(email, day);

CREATE TABLE IF NOT EXISTS journal_entries (
  id         TEXT PRIMARY KEY,
  email      TEXT NOT NULL REFERENCES users(email),
  day        TEXT NOT NULL,
  title      TEXT NOT NULL,
  contents   TEXT NOT NULL DEFAULT '',
  created    TEXT NOT NULL,
  edited     TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (email, title)
);
CREATE INDEX IF NOT EXISTS idx_journal_entries_email_day ON journal_entries(email, day);
`,
	},
	{
		version: 3,
		name:    "daily_records",
		sql: `
CREATE TABLE IF NOT EXISTS water_cups (
  id         TEXT PRIMARY KEY,
  email      TEXT NOT NULL REFERENCES users(email),
  day        TEXT NOT NULL,
  cups       INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (email, day)
);

CREATE TABLE IF NOT EXISTS shower_usage (
  id         TEXT PRIMARY KEY,
  email      TEXT NOT NULL REFERENCES users(email),
  day        TEXT NOT NULL,
  minutes    INTEGER NOT NULL DEFAULT 0,
  cold       BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (email, day)
);

CREATE TABLE IF NOT EXISTS entertainment_usage (
  id         TEXT PRIMARY KEY,
  email      TEXT NOT NULL REFERENCES users(email),
  day        TEXT NOT NULL,
  hours      DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (email, day)
);

CREATE TABLE IF NOT EXISTS health (
  id         TEXT PRIMARY KEY,
  email      TEXT NOT NULL REFERENCES users(email),
  day        TEXT NOT NULL,
  cigarettes INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (email, day)
);
`,
	},
}

// migrate applies every migration not yet recorded in schema_migrations,
// each in its own transaction.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version    INTEGER PRIMARY KEY,
  name       TEXT NOT NULL,
  applied_at TEXT NOT NULL
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.conn.QueryRowContext(ctx,
			db.rebind(`SELECT 1 FROM schema_migrations WHERE version = ?`), m.version,
		).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		if err := db.apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) apply(ctx context.Context, m migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		db.rebind(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`),
		m.version, m.name, formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("record migration version %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration version %d: %w", m.version, err)
	}
	return nil
}
