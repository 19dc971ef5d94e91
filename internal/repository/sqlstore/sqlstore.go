// Package sqlstore implements the repository interfaces on database/sql.
//
// Two backends share one code path:
//
//   - SQLite via modernc.org/sqlite (pure Go, no cgo). Used for any DSN that
//     is a file path or ":memory:". The default for development and tests.
//   - PostgreSQL via github.com/lib/pq, selected by a postgres:// or
//     postgresql:// URL. The deployment target.
//
// Queries are written once with "?" placeholders and rebound to "$1, $2, …"
// for Postgres. The schema sticks to types both engines understand (TEXT,
// INTEGER, DOUBLE PRECISION, BOOLEAN) and stores timestamps as fixed-width UTC text,
// so the day and created_at columns compare identically on both.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

// Open connects to dsn, applies pending migrations and returns the store.
//
// dsn examples:
//   - "data/ess.db"                                  → SQLite file
//   - ":memory:"                                     → SQLite in memory (tests)
//   - "postgres://ess:pw@localhost/ess?sslmode=disable" → PostgreSQL
func Open(dsn string) (*DB, error) {
	d := dialectSQLite
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		d = dialectPostgres
		driver = "postgres"
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s database: %w", d, err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging %s database: %w", d, err)
	}

	if d == dialectSQLite {
		// One connection: SQLite serialises writers anyway, PRAGMAs are
		// per-connection, and every ":memory:" connection is a separate
		// database.
		conn.SetMaxOpenConns(1)

		// WAL lets readers proceed while a write is in flight.
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlstore: setting WAL mode: %w", err)
		}
		// Off by default in SQLite; every record references users(email).
		if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlstore: enabling foreign keys: %w", err)
		}
	}

	db := &DB{conn: conn, dialect: d}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Dialect names the backend in use ("sqlite" or "postgres").
func (db *DB) Dialect() string {
	return db.dialect.String()
}

// rebind rewrites "?" placeholders for the active dialect. None of our SQL
// contains a literal question mark.
func (db *DB) rebind(query string) string {
	if db.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lockClause returns the row-lock suffix for a SELECT inside a transaction.
// SQLite has no FOR UPDATE; its single writer connection already serialises.
func (db *DB) lockClause() string {
	if db.dialect == dialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// storedTimeLayout is fixed-width so that text comparison on created_at
// orders rows chronologically on both backends.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(storedTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlstore: parsing stored time %q: %w", s, err)
	}
	return t, nil
}
