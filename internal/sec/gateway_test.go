package sec

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/wicket/internal/config"
	"github.com/stolasapp/wicket/internal/storage"
)

func newTestStore(t *testing.T) *storage.DB {
	t.Helper()
	cfg := config.Default()
	cfg.DBFilepath = filepath.Join(t.TempDir(), "db.sqlite")
	store, err := storage.NewDB(t.Context(), cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestGateway(t *testing.T) (*Gateway, *storage.DB) {
	t.Helper()
	store := newTestStore(t)
	gw, err := NewGateway(store, store, NewBcrypt(bcrypt.MinCost), NewCookieCodec(config.DefaultSessionTTL), slog.Default())
	require.NoError(t, err)
	return gw, store
}

func cookieFor(token string) string {
	return CookieName + "=" + token
}

func TestGateway_Scenario(t *testing.T) {
	t.Parallel()
	gw, _ := newTestGateway(t)
	ctx := t.Context()

	s1, err := gw.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	s2, err := gw.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, s1.Token, s2.Token)
	assert.Equal(t, s1.UserID, s2.UserID)

	id, err := gw.ResolveCurrentUser(ctx, cookieFor(s1.Token))
	require.NoError(t, err)
	assert.Equal(t, Anonymous, id)

	id, err = gw.ResolveCurrentUser(ctx, cookieFor(s2.Token))
	require.NoError(t, err)
	assert.True(t, id.Authenticated)
	assert.Equal(t, "alice", id.User.Name)
	assert.Equal(t, s2.UserID, id.User.ID)

	require.NoError(t, gw.Logout(ctx, cookieFor(s2.Token)))

	id, err = gw.ResolveCurrentUser(ctx, cookieFor(s2.Token))
	require.NoError(t, err)
	assert.False(t, id.Authenticated)

	// already logged out
	require.NoError(t, gw.Logout(ctx, cookieFor(s2.Token)))
}

func TestGateway_Login(t *testing.T) {
	t.Parallel()
	gw, _ := newTestGateway(t)

	_, err := gw.Register(t.Context(), "carol", "hunter2")
	require.NoError(t, err)

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		_, err := gw.Login(t.Context(), "bob", "x")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		_, err := gw.Login(t.Context(), "carol", "hunter3")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		t.Parallel()
		_, err := gw.Login(t.Context(), "Carol", "hunter2")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("same message for both failures", func(t *testing.T) {
		t.Parallel()
		_, missing := gw.Login(t.Context(), "nobody", "hunter2")
		_, mismatch := gw.Login(t.Context(), "carol", "wrong")
		assert.Equal(t, missing.Error(), mismatch.Error())
	})
}

type recordingHasher struct {
	Bcrypt
	hashErr  error
	verified atomic.Pointer[[]byte]
}

func (h *recordingHasher) Hash(password string) ([]byte, error) {
	if h.hashErr != nil {
		return nil, h.hashErr
	}
	return h.Bcrypt.Hash(password)
}

func (h *recordingHasher) Verify(password string, digest []byte) bool {
	h.verified.Store(&digest)
	return h.Bcrypt.Verify(password, digest)
}

func TestGateway_UnknownUserDigest(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	codec := NewCookieCodec(config.DefaultSessionTTL)

	t.Run("hash failure", func(t *testing.T) {
		t.Parallel()
		hasher := &recordingHasher{Bcrypt: NewBcrypt(bcrypt.MinCost), hashErr: errors.New("entropy exhausted")}
		_, err := NewGateway(store, store, hasher, codec, slog.Default())
		require.ErrorContains(t, err, "entropy exhausted")
	})

	t.Run("compares against a real digest", func(t *testing.T) {
		t.Parallel()
		hasher := &recordingHasher{Bcrypt: NewBcrypt(bcrypt.MinCost)}
		gw, err := NewGateway(store, store, hasher, codec, slog.Default())
		require.NoError(t, err)

		_, err = gw.Login(t.Context(), "nobody", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		digest := hasher.verified.Load()
		require.NotNil(t, digest)
		cost, err := bcrypt.Cost(*digest)
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost, cost)
	})
}

func TestGateway_RegisterThenLogin(t *testing.T) {
	t.Parallel()
	gw, _ := newTestGateway(t)
	faker := gofakeit.New(42)

	for i := range 8 {
		name := fmt.Sprintf("%s_%d", faker.Regex(`[a-z][a-z0-9]{2,15}`), i)
		password := faker.Password(true, true, true, true, false, 24)

		registered, err := gw.Register(t.Context(), name, password)
		require.NoError(t, err, name)

		session, err := gw.Login(t.Context(), name, password)
		require.NoError(t, err, name)
		assert.Equal(t, registered.UserID, session.UserID)

		id, err := gw.ResolveCurrentUser(t.Context(), cookieFor(session.Token))
		require.NoError(t, err)
		assert.True(t, id.Authenticated)
		assert.Equal(t, name, id.User.Name)
	}
}

func TestGateway_ConcurrentLogin(t *testing.T) {
	t.Parallel()
	gw, _ := newTestGateway(t)

	_, err := gw.Register(t.Context(), "alice", "secret1")
	require.NoError(t, err)

	const attempts = 8
	sessions := make([]string, attempts)
	var grp errgroup.Group
	for i := range attempts {
		grp.Go(func() error {
			session, err := gw.Login(t.Context(), "alice", "secret1")
			if err != nil {
				return err
			}
			sessions[i] = session.Token
			return nil
		})
	}
	require.NoError(t, grp.Wait())

	live := 0
	for _, token := range sessions {
		id, err := gw.ResolveCurrentUser(t.Context(), cookieFor(token))
		require.NoError(t, err)
		if id.Authenticated {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestGateway_Register(t *testing.T) {
	t.Parallel()

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		gw, store := newTestGateway(t)

		first, err := gw.Register(t.Context(), "alice", "pw1")
		require.NoError(t, err)
		_, err = gw.Register(t.Context(), "alice", "pw1")
		require.ErrorIs(t, err, ErrUsernameTaken)

		user, err := store.GetUserByName(t.Context(), "alice")
		require.NoError(t, err)
		assert.Equal(t, first.UserID, user.ID)

		// the original session is untouched by the failed attempt
		id, err := gw.ResolveCurrentUser(t.Context(), cookieFor(first.Token))
		require.NoError(t, err)
		assert.True(t, id.Authenticated)
	})

	t.Run("concurrent duplicates", func(t *testing.T) {
		t.Parallel()
		gw, _ := newTestGateway(t)

		const attempts = 8
		var created, taken atomic.Int32
		var grp errgroup.Group
		for range attempts {
			grp.Go(func() error {
				_, err := gw.Register(t.Context(), "racer", "pw")
				switch {
				case err == nil:
					created.Add(1)
				case errors.Is(err, ErrUsernameTaken):
					taken.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		require.NoError(t, grp.Wait())
		assert.Equal(t, int32(1), created.Load())
		assert.Equal(t, int32(attempts-1), taken.Load())
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		gw, _ := newTestGateway(t)

		tests := []struct {
			name     string
			username string
			password string
			want     error
		}{
			{name: "short name", username: "ab", password: "pw", want: ErrInvalidUsername},
			{name: "long name", username: strings.Repeat("a", 65), password: "pw", want: ErrInvalidUsername},
			{name: "bad characters", username: "no/slash", password: "pw", want: ErrInvalidUsername},
			{name: "empty password", username: "valid_name", password: "", want: ErrInvalidPassword},
			{name: "long password", username: "valid_name", password: strings.Repeat("p", MaxPasswordLen+1), want: ErrInvalidPassword},
		}
		for _, test := range tests {
			_, err := gw.Register(t.Context(), test.username, test.password)
			require.ErrorIs(t, err, test.want, test.name)
		}

		available, err := gw.UsernameAvailable(t.Context(), "valid_name")
		require.NoError(t, err)
		assert.True(t, available)
	})
}

func TestGateway_ResolveCurrentUser(t *testing.T) {
	t.Parallel()
	gw, _ := newTestGateway(t)

	for _, header := range []string{"", "theme=dark", CookieName + "=", cookieFor("unknown")} {
		id, err := gw.ResolveCurrentUser(t.Context(), header)
		require.NoError(t, err, header)
		assert.Equal(t, Anonymous, id, header)
	}
}

func TestGateway_UsernameAvailable(t *testing.T) {
	t.Parallel()
	gw, _ := newTestGateway(t)

	_, err := gw.Register(t.Context(), "dave", "pw")
	require.NoError(t, err)

	tests := map[string]bool{
		"dave":  false,
		"Dave":  true,
		"erin":  true,
		"no":    false,
		"a b c": false,
	}
	for name, want := range tests {
		got, err := gw.UsernameAvailable(t.Context(), name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestGateway_StoreErrors(t *testing.T) {
	t.Parallel()
	gw, store := newTestGateway(t)

	session, err := gw.Register(t.Context(), "frank", "pw")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = gw.Login(t.Context(), "frank", "pw")
	require.ErrorIs(t, err, storage.ErrInternal)
	require.NotErrorIs(t, err, ErrInvalidCredentials)

	_, err = gw.Register(t.Context(), "grace", "pw")
	require.ErrorIs(t, err, storage.ErrInternal)

	_, err = gw.ResolveCurrentUser(t.Context(), cookieFor(session.Token))
	require.ErrorIs(t, err, storage.ErrInternal)

	err = gw.Logout(t.Context(), cookieFor(session.Token))
	require.ErrorIs(t, err, storage.ErrInternal)

	_, err = gw.UsernameAvailable(t.Context(), "grace")
	require.ErrorIs(t, err, storage.ErrInternal)
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Anonymous, GetIdentity(t.Context()))

	id := Identity{Authenticated: true}
	id.User.Name = "heidi"
	ctx := SetIdentity(t.Context(), id)
	assert.Equal(t, id, GetIdentity(ctx))
}
