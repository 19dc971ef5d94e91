// Package repository declares the storage contracts the service layer needs.
// Implementations live in subpackages (sqlstore); services only see these
// interfaces, which is what lets their tests run against in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/ess-backend/internal/model"
)

// UserRepository is the credential store: one row per email.
type UserRepository interface {
	// CreateUser inserts user. It returns an apperror.ErrConflict error when
	// the email is already registered.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByEmail returns apperror.ErrNotFound when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// MergeFunc folds the stored row into an incoming record before the update
// is written. It mutates incoming; existing must be treated as read-only.
type MergeFunc[T any] func(existing, incoming *T)

// RecordRepository stores one kind of daily record, matched by natural key.
type RecordRepository[T any] interface {
	// Upsert writes rec in a single transaction. When a row with the same
	// natural key exists, merge (if non-nil) runs first and the merged rec
	// replaces the stored fields; otherwise rec is inserted. created reports
	// which branch ran. rec's metadata (ID, timestamps) is filled in either way.
	//
	// An owner email without a user row yields apperror.ErrNotFound.
	Upsert(ctx context.Context, rec *T, merge MergeFunc[T]) (created bool, err error)

	// ListByDay returns every record of email filed under day (YYYY-MM-DD),
	// oldest first. No match is an empty slice, not an error.
	ListByDay(ctx context.Context, email, day string) ([]T, error)
}
