// Package storage provides the state management for users and their sessions.
package storage

import (
	"context"

	"github.com/stolasapp/wicket/internal/storage/db"
)

const (
	// ErrNotFound is returned when a user or session cannot be found. Expired
	// sessions are reported as not found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique user already exists.
	ErrAlreadyExists Error = "already exists"
	// ErrInternal is returned for any other type of error. The underlying cause
	// is wrapped and available via [errors.Unwrap], but callers should not
	// attempt to classify it.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// accessing and creating user credentials. Users are never modified or deleted
// once created.
type Users interface {
	// UserExists reports whether a user with exactly the given name exists.
	UserExists(ctx context.Context, name string) (bool, error)
	// CreateUser inserts a new user with the given name and password digest.
	// An [ErrAlreadyExists] error is returned if the name is already in use;
	// the check is made by the database's uniqueness constraint so concurrent
	// creates of the same name have exactly one winner.
	CreateUser(ctx context.Context, name string, passwordHash []byte) (db.User, error)
	// GetUserByName returns a single user with the specified name. An
	// [ErrNotFound] is returned if the user name does not exist.
	GetUserByName(ctx context.Context, name string) (db.User, error)
}

// Sessions are the methods on a storage implementation that are responsible
// for issuing, validating, and revoking sessions. A user has at most one
// session at a time.
type Sessions interface {
	// UpsertSession issues a new session token for the user, replacing any
	// existing session in a single atomic statement. The returned session is
	// the committed row, including its database-assigned creation time.
	UpsertSession(ctx context.Context, userID int64) (db.Session, error)
	// GetSessionUser returns the user owning the session token if the session
	// is still within its validity window, as judged by the database clock.
	// An [ErrNotFound] is returned for both unknown and expired tokens.
	GetSessionUser(ctx context.Context, token string) (db.User, error)
	// DeleteSession removes the session with the given token, returning the
	// deleted row. An [ErrNotFound] is returned if no such session exists.
	DeleteSession(ctx context.Context, token string) (db.Session, error)
	// PruneSessions deletes sessions whose validity window has closed and
	// returns the number removed.
	PruneSessions(ctx context.Context) (int64, error)
}

// Store is the combination interface for [Users] and [Sessions].
type Store interface {
	Users
	Sessions
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
