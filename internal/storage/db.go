package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stolasapp/wicket/internal/config"
	"github.com/stolasapp/wicket/internal/storage/db"
)

// DB is a [Store] backed by a SQLite database.
type DB struct {
	db      *sql.DB
	queries *db.Queries
	ttl     time.Duration
	tokens  func() string
}

// NewDB initializes a DB with the given config and logger.
func NewDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	handle, err := db.Open(ctx, logger, cfg.DBFilepath)
	if err != nil {
		return nil, err
	}
	return &DB{
		db:      handle,
		queries: db.New(handle),
		ttl:     cfg.SessionTTL,
		tokens:  rand.Text,
	}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// SessionTTL returns the validity window applied to sessions.
func (d *DB) SessionTTL() time.Duration {
	return d.ttl
}

// UserExists satisfies the [Users] interface.
func (d *DB) UserExists(ctx context.Context, name string) (bool, error) {
	exists, err := d.queries.UserExists(ctx, name)
	if err != nil {
		return false, internal(err)
	}
	return exists != 0, nil
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, name string, passwordHash []byte) (db.User, error) {
	user, err := d.queries.CreateUser(ctx, db.CreateUserParams{
		Name:         name,
		PasswordHash: passwordHash,
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return user, ErrAlreadyExists
	case err != nil:
		return user, internal(err)
	default:
		return user, nil
	}
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (db.User, error) {
	return notFound(d.queries.GetUserByName(ctx, name))
}

// UpsertSession satisfies the [Sessions] interface.
func (d *DB) UpsertSession(ctx context.Context, userID int64) (db.Session, error) {
	session, err := d.queries.UpsertSession(ctx, db.UpsertSessionParams{
		Token:  d.tokens(),
		UserID: userID,
	})
	if err != nil {
		return session, internal(err)
	}
	return session, nil
}

// GetSessionUser satisfies the [Sessions] interface.
func (d *DB) GetSessionUser(ctx context.Context, token string) (db.User, error) {
	return notFound(d.queries.GetSessionUser(ctx, db.GetSessionUserParams{
		Token:     token,
		TtlMillis: d.ttl.Milliseconds(),
	}))
}

// DeleteSession satisfies the [Sessions] interface.
func (d *DB) DeleteSession(ctx context.Context, token string) (db.Session, error) {
	return notFound(d.queries.DeleteSession(ctx, token))
}

// PruneSessions satisfies the [Sessions] interface.
func (d *DB) PruneSessions(ctx context.Context) (int64, error) {
	n, err := d.queries.DeleteExpiredSessions(ctx, d.ttl.Milliseconds())
	if err != nil {
		return 0, internal(err)
	}
	return n, nil
}

func notFound[T any](val T, err error) (T, error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return val, ErrNotFound
	case err != nil:
		return val, internal(err)
	default:
		return val, nil
	}
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

var _ Store = (*DB)(nil)
