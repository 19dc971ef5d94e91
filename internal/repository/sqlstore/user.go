package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/ess-backend/internal/apperror"
	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts user and stamps CreatedAt. A second registration for the
// same email trips the primary key and is reported as a conflict; there is no
// look-before-insert, so two racing registrations cannot both succeed.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		db.rebind(`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`),
		user.Email,
		user.PasswordHash,
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User")
		}
		return fmt.Errorf("sqlstore: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
// Returns apperror.ErrNotFound if no user exists with that email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u         model.User
		createdAt string
	)

	err := db.conn.QueryRowContext(ctx,
		db.rebind(`SELECT email, password_hash, created_at FROM users WHERE email = ?`),
		email,
	).Scan(&u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlstore: getting user %s: %w", email, err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}
