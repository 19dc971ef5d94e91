package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/ess-backend/internal/apperror"
	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/repository"
)

// Table describes how one record kind maps onto its table.
//
// Every table has the columns id, email, day, created_at and updated_at,
// which are read and written through Meta. Key and Fields name the kind's
// own columns; Columns returns pointers to the matching struct fields, Key
// columns first, in the same order. The natural key is (email, Key...) or,
// when KeyedByDay is set, (email, day). Day-keyed tables leave Key empty.
type Table[T any] struct {
	Name       string
	KeyedByDay bool
	Key        []string
	Fields     []string
	Meta       func(*T) *model.Meta
	Columns    func(*T) []any
}

// RecordStore implements repository.RecordRepository for one Table.
type RecordStore[T any] struct {
	db    *DB
	table Table[T]

	selectByKey string
	insert      string
	update      string
	listByDay   string
}

// NewRecordStore prepares the SQL for table against db.
func NewRecordStore[T any](db *DB, table Table[T]) *RecordStore[T] {
	cols := []string{"id", "email", "day", "created_at", "updated_at"}
	cols = append(cols, table.Key...)
	cols = append(cols, table.Fields...)

	where := []string{"email = ?"}
	if table.KeyedByDay {
		where = append(where, "day = ?")
	}
	for _, c := range table.Key {
		where = append(where, c+" = ?")
	}

	set := make([]string, 0, len(table.Fields)+2)
	set = append(set, "day = ?", "updated_at = ?")
	for _, c := range table.Fields {
		set = append(set, c+" = ?")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	list := strings.Join(cols, ", ")

	return &RecordStore[T]{
		db:    db,
		table: table,
		selectByKey: db.rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE %s%s`,
			list, table.Name, strings.Join(where, " AND "), db.lockClause())),
		insert: db.rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			table.Name, list, placeholders)),
		update: db.rebind(fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`,
			table.Name, strings.Join(set, ", "))),
		listByDay: db.rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE email = ? AND day = ? ORDER BY created_at, id`,
			list, table.Name)),
	}
}

// Upsert implements repository.RecordRepository.
//
// The lookup and the write share one transaction. If a concurrent request
// inserts the same natural key between our lookup and our insert, the UNIQUE
// constraint rejects ours and the whole attempt is repeated once, which then
// finds the row and takes the update path.
func (s *RecordStore[T]) Upsert(ctx context.Context, rec *T, merge repository.MergeFunc[T]) (bool, error) {
	created, err := s.upsertOnce(ctx, rec, merge)
	if err != nil && isUniqueViolation(err) {
		created, err = s.upsertOnce(ctx, rec, merge)
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, apperror.NotFound("User")
		}
		return false, fmt.Errorf("sqlstore: upserting into %s: %w", s.table.Name, err)
	}
	return created, nil
}

func (s *RecordStore[T]) upsertOnce(ctx context.Context, rec *T, merge repository.MergeFunc[T]) (bool, error) {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	meta := s.table.Meta(rec)
	now := time.Now().UTC()

	var existing T
	err = s.scan(tx.QueryRowContext(ctx, s.selectByKey, s.keyArgs(rec)...), &existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		meta.ID = xid.New().String()
		meta.CreatedAt = now
		meta.UpdatedAt = now
		args := append([]any{meta.ID, meta.Email, meta.Day, formatTime(now), formatTime(now)},
			deref(s.table.Columns(rec))...)
		if _, err := tx.ExecContext(ctx, s.insert, args...); err != nil {
			return false, err
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("commit: %w", err)
		}
		return true, nil

	case err != nil:
		return false, fmt.Errorf("select by key: %w", err)
	}

	if merge != nil {
		merge(&existing, rec)
	}
	stored := s.table.Meta(&existing)
	meta.ID = stored.ID
	meta.CreatedAt = stored.CreatedAt
	meta.UpdatedAt = now

	args := append([]any{meta.Day, formatTime(now)}, s.fieldArgs(rec)...)
	args = append(args, meta.ID)
	if _, err := tx.ExecContext(ctx, s.update, args...); err != nil {
		return false, fmt.Errorf("update %s: %w", meta.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return false, nil
}

// ListByDay implements repository.RecordRepository.
func (s *RecordStore[T]) ListByDay(ctx context.Context, email, day string) ([]T, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.listByDay, email, day)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing %s for %s: %w", s.table.Name, day, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var rec T
		if err := s.scan(rows, &rec); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning %s row: %w", s.table.Name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating %s rows: %w", s.table.Name, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *RecordStore[T]) scan(row scanner, rec *T) error {
	var createdAt, updatedAt string
	meta := s.table.Meta(rec)

	dest := append([]any{&meta.ID, &meta.Email, &meta.Day, &createdAt, &updatedAt},
		s.table.Columns(rec)...)
	if err := row.Scan(dest...); err != nil {
		return err
	}

	var err error
	if meta.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	if meta.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return err
	}
	return nil
}

func (s *RecordStore[T]) keyArgs(rec *T) []any {
	meta := s.table.Meta(rec)
	args := []any{meta.Email}
	if s.table.KeyedByDay {
		return append(args, meta.Day)
	}
	return append(args, deref(s.table.Columns(rec)[:len(s.table.Key)])...)
}

func (s *RecordStore[T]) fieldArgs(rec *T) []any {
	cols := s.table.Columns(rec)
	return deref(cols[len(cols)-len(s.table.Fields):])
}

// deref turns the field pointers from Table.Columns into argument values.
func deref(ptrs []any) []any {
	args := make([]any, len(ptrs))
	for i, p := range ptrs {
		args[i] = reflect.ValueOf(p).Elem().Interface()
	}
	return args
}
