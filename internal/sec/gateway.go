package sec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/stolasapp/wicket/internal/storage"
	"github.com/stolasapp/wicket/internal/storage/db"
)

const (
	// ErrInvalidCredentials is returned by [Gateway.Login] when the user does
	// not exist or the password is wrong; the two are never distinguished.
	ErrInvalidCredentials AuthError = "invalid username or password"
	// ErrUsernameTaken is returned by [Gateway.Register] when the name is
	// already in use.
	ErrUsernameTaken AuthError = "username is already taken"
	// ErrInvalidUsername is returned by [Gateway.Register] when the name fails
	// validation.
	ErrInvalidUsername AuthError = "username must be 3-64 characters, alphanumeric and underscores only"
	// ErrInvalidPassword is returned by [Gateway.Register] when the password
	// is empty or too long to hash.
	ErrInvalidPassword AuthError = "password must be 1-72 bytes"
)

// AuthError is a user-facing authentication failure. Its message is safe to
// show to the client.
type AuthError string

// Error satisfies [error].
func (e AuthError) Error() string { return string(e) }

// Username validation constraints.
const (
	minUsernameLen = 3
	maxUsernameLen = 64
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidUsername reports whether name is 3-64 characters, alphanumeric and
// underscores only.
func ValidUsername(name string) bool {
	return len(name) >= minUsernameLen &&
		len(name) <= maxUsernameLen &&
		usernameRegex.MatchString(name)
}

// Identity is the resolved identity of a request: either an authenticated
// user, or anonymous when Authenticated is false.
type Identity struct {
	User          db.User
	Authenticated bool
}

// Anonymous is the identity of a request with no valid session.
var Anonymous = Identity{}

// Gateway orchestrates credential and session storage to log users in and out
// and to resolve the user behind a session cookie. It holds no state of its
// own beyond its dependencies; every call is a round trip to the store.
type Gateway struct {
	users    storage.Users
	sessions storage.Sessions
	hasher   PasswordHasher
	codec    CookieCodec
	logger   *slog.Logger
	dummy    []byte
}

// NewGateway creates a Gateway over the given stores. It hashes a throwaway
// password up front so failed lookups can be compared against a real digest.
func NewGateway(
	users storage.Users,
	sessions storage.Sessions,
	hasher PasswordHasher,
	codec CookieCodec,
	logger *slog.Logger,
) (*Gateway, error) {
	dummy, err := hasher.Hash("wicket-unknown-user")
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}
	return &Gateway{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		codec:    codec,
		logger:   logger,
		dummy:    dummy,
	}, nil
}

// Codec returns the cookie codec used to read session tokens.
func (g *Gateway) Codec() CookieCodec {
	return g.codec
}

// ResolveCurrentUser returns the identity for the session token carried in
// cookieHeader. Missing, unknown, and expired tokens all resolve to
// [Anonymous]. Only store failures are returned as errors.
func (g *Gateway) ResolveCurrentUser(ctx context.Context, cookieHeader string) (Identity, error) {
	token := g.codec.Decode(cookieHeader)
	if token == "" {
		return Anonymous, nil
	}
	user, err := g.sessions.GetSessionUser(ctx, token)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return Anonymous, nil
	case err != nil:
		return Anonymous, err
	default:
		return Identity{User: user, Authenticated: true}, nil
	}
}

// Login verifies the credentials and issues a new session for the user,
// replacing any session they already had. [ErrInvalidCredentials] is returned
// if the user does not exist or the password does not match.
func (g *Gateway) Login(ctx context.Context, name, password string) (db.Session, error) {
	user, err := g.users.GetUserByName(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// pay for a comparison anyway so a miss costs the same as a mismatch
		g.hasher.Verify(password, g.dummy)
		return db.Session{}, ErrInvalidCredentials
	case err != nil:
		return db.Session{}, err
	}
	if !g.hasher.Verify(password, user.PasswordHash) {
		return db.Session{}, ErrInvalidCredentials
	}
	return g.issue(ctx, user)
}

// Register creates a new user with the given credentials and issues their
// first session. [ErrUsernameTaken] is returned if the name is in use, in
// which case no user is created.
func (g *Gateway) Register(ctx context.Context, name, password string) (db.Session, error) {
	if !ValidUsername(name) {
		return db.Session{}, ErrInvalidUsername
	}
	if password == "" || len(password) > MaxPasswordLen {
		return db.Session{}, ErrInvalidPassword
	}
	digest, err := g.hasher.Hash(password)
	if err != nil {
		return db.Session{}, err
	}
	user, err := g.users.CreateUser(ctx, name, digest)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return db.Session{}, ErrUsernameTaken
	case err != nil:
		return db.Session{}, err
	}
	g.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("name", user.Name),
	)
	return g.issue(ctx, user)
}

// Logout revokes the session carried in cookieHeader. Logging out without a
// session, or with one that no longer exists, is not an error.
func (g *Gateway) Logout(ctx context.Context, cookieHeader string) error {
	token := g.codec.Decode(cookieHeader)
	if token == "" {
		return nil
	}
	session, err := g.sessions.DeleteSession(ctx, token)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	g.logger.DebugContext(ctx, "session revoked", slog.Int64("user_id", session.UserID))
	return nil
}

// UsernameAvailable reports whether name is valid and not yet registered. A
// true result is advisory; [Gateway.Register] may still fail with
// [ErrUsernameTaken].
func (g *Gateway) UsernameAvailable(ctx context.Context, name string) (bool, error) {
	if !ValidUsername(name) {
		return false, nil
	}
	exists, err := g.users.UserExists(ctx, name)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (g *Gateway) issue(ctx context.Context, user db.User) (db.Session, error) {
	session, err := g.sessions.UpsertSession(ctx, user.ID)
	if err != nil {
		return db.Session{}, err
	}
	g.logger.DebugContext(ctx, "session issued", slog.Int64("user_id", user.ID))
	return session, nil
}
