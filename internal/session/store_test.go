package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/adminportal/internal/api"
	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/internal/tokenstore"
	"github.com/me/adminportal/pkg/model"
)

// fakeAuth implements Authenticator over a fixed token table.
type fakeAuth struct {
	mu       sync.Mutex
	users    map[string]model.User // token -> user
	password string
	issue    string
	meErr    error
	logouts  []string
	meCalls  int
}

var admin = model.User{ID: "u1", Email: "admin@example.com", Role: model.RoleAdmin}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[string]model.User{}, password: "secret", issue: "abc"}
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (api.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if email != admin.Email || password != f.password {
		return api.LoginResult{}, fmt.Errorf("login: %w", &api.HTTPError{StatusCode: 401})
	}
	f.users[f.issue] = admin
	return api.LoginResult{Token: f.issue, User: admin}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts = append(f.logouts, token)
	delete(f.users, token)
	return nil
}

func (f *fakeAuth) Me(_ context.Context, token string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return model.User{}, f.meErr
	}
	u, ok := f.users[token]
	if !ok {
		return model.User{}, fmt.Errorf("me: %w", &api.HTTPError{StatusCode: 401})
	}
	return u, nil
}

func newStore(t *testing.T, auth Authenticator, opts Options) (*Store, *tokenstore.MemoryStore) {
	t.Helper()
	tokens := tokenstore.NewMemoryStore()
	opts.Logger = logging.Discard()
	return New(auth, tokens, opts), tokens
}

func persisted(t *testing.T, tokens tokenstore.Store) (string, bool) {
	t.Helper()
	v, err := tokens.Get(context.Background(), tokenstore.TokenKey)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return v, true
}

func TestInitializeWithoutToken(t *testing.T) {
	auth := newFakeAuth()
	s, _ := newStore(t, auth, Options{})

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, model.Session{}, s.Snapshot())
	assert.Zero(t, auth.meCalls)
}

func TestInitializeValidToken(t *testing.T) {
	auth := newFakeAuth()
	auth.users["good"] = admin
	s, tokens := newStore(t, auth, Options{})
	require.NoError(t, tokens.Set(context.Background(), tokenstore.TokenKey, "good"))

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, "good", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, admin, *s.User())
	assert.True(t, s.Snapshot().IsAdmin())
}

func TestInitializeRejectedToken(t *testing.T) {
	auth := newFakeAuth()
	s, tokens := newStore(t, auth, Options{})
	require.NoError(t, tokens.Set(context.Background(), tokenstore.TokenKey, "stale"))

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, model.Session{}, s.Snapshot())
	_, ok := persisted(t, tokens)
	assert.False(t, ok, "rejected token must be removed from storage")
}

// stickyStore is a token store whose Delete always fails.
type stickyStore struct {
	*tokenstore.MemoryStore
}

var errDiskFull = errors.New("disk full")

func (stickyStore) Delete(context.Context, string) error { return errDiskFull }

func TestInitializeReportsUndeletableToken(t *testing.T) {
	cases := []struct {
		name  string
		token string
		opts  Options
		meErr error
	}{
		{name: "rejected", token: "stale"},
		{name: "expired", token: expiredJWT(t)},
		{name: "unverified with clear", token: "abc", opts: Options{ClearOnInitError: true}, meErr: errors.New("connection refused")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := newFakeAuth()
			auth.meErr = tc.meErr
			tokens := stickyStore{tokenstore.NewMemoryStore()}
			tc.opts.Logger = logging.Discard()
			s := New(auth, tokens, tc.opts)
			require.NoError(t, tokens.Set(context.Background(), tokenstore.TokenKey, tc.token))

			err := s.Initialize(context.Background())
			require.ErrorIs(t, err, errDiskFull)
			assert.Equal(t, model.Session{}, s.Snapshot())
			v, ok := persisted(t, tokens)
			assert.True(t, ok)
			assert.Equal(t, tc.token, v)
		})
	}
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestInitializeExpiredJWTSkipsBackend(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	auth := newFakeAuth()
	auth.users[tok] = admin
	s, tokens := newStore(t, auth, Options{})
	require.NoError(t, tokens.Set(context.Background(), tokenstore.TokenKey, tok))

	require.NoError(t, s.Initialize(context.Background()))
	assert.Empty(t, s.Token())
	assert.Zero(t, auth.meCalls)
	_, ok := persisted(t, tokens)
	assert.False(t, ok)
}

func TestInitializeNetworkError(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")

	t.Run("keep token", func(t *testing.T) {
		auth := newFakeAuth()
		auth.meErr = netErr
		s, tokens := newStore(t, auth, Options{})
		require.NoError(t, tokens.Set(context.Background(), tokenstore.TokenKey, "abc"))

		err := s.Initialize(context.Background())
		require.ErrorIs(t, err, netErr)
		assert.Equal(t, "abc", s.Token())
		assert.Nil(t, s.User())
		assert.False(t, s.Snapshot().IsAuthenticated())
		v, ok := persisted(t, tokens)
		assert.True(t, ok)
		assert.Equal(t, "abc", v)
	})

	t.Run("clear token", func(t *testing.T) {
		auth := newFakeAuth()
		auth.meErr = netErr
		s, tokens := newStore(t, auth, Options{ClearOnInitError: true})
		require.NoError(t, tokens.Set(context.Background(), tokenstore.TokenKey, "abc"))

		err := s.Initialize(context.Background())
		require.ErrorIs(t, err, netErr)
		assert.Empty(t, s.Token())
		_, ok := persisted(t, tokens)
		assert.False(t, ok)
	})
}

func TestLoginLogout(t *testing.T) {
	auth := newFakeAuth()
	s, tokens := newStore(t, auth, Options{RevokeOnLogout: true})
	ctx := context.Background()

	u, err := s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, admin, u)
	assert.Equal(t, "abc", s.Token())
	v, ok := persisted(t, tokens)
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, model.Session{}, s.Snapshot())
	_, ok = persisted(t, tokens)
	assert.False(t, ok)
	assert.Equal(t, []string{"abc"}, auth.logouts)
}

func TestLogoutWithoutRevoke(t *testing.T) {
	auth := newFakeAuth()
	s, _ := newStore(t, auth, Options{RevokeOnLogout: false})
	ctx := context.Background()

	_, err := s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))
	assert.Empty(t, auth.logouts)
}

func TestLoginBadCredentialsLeavesSession(t *testing.T) {
	auth := newFakeAuth()
	s, tokens := newStore(t, auth, Options{})
	ctx := context.Background()

	_, err := s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.Login(ctx, "admin@example.com", "wrong")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, before, s.Snapshot())
	v, _ := persisted(t, tokens)
	assert.Equal(t, "abc", v)
}

func TestInvalidateCompareAndClear(t *testing.T) {
	auth := newFakeAuth()
	s, tokens := newStore(t, auth, Options{})
	ctx := context.Background()

	var events []model.Session
	s.Subscribe(func(snap model.Session) { events = append(events, snap) })

	_, err := s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)

	assert.False(t, s.Invalidate(ctx, "older-token"), "a superseded token must not clear the session")
	assert.Equal(t, "abc", s.Token())

	assert.True(t, s.Invalidate(ctx, "abc"))
	assert.False(t, s.Invalidate(ctx, "abc"), "second 401 for the same token is a no-op")
	assert.Empty(t, s.Token())
	_, ok := persisted(t, tokens)
	assert.False(t, ok)

	require.Len(t, events, 2, "login and one invalidation")
	assert.True(t, events[0].IsAdmin())
	assert.Equal(t, model.Session{}, events[1])
}

func TestSubscribeUnsubscribe(t *testing.T) {
	s, _ := newStore(t, newFakeAuth(), Options{})
	ctx := context.Background()

	var n int
	unsubscribe := s.Subscribe(func(model.Session) { n++ })
	_, err := s.Login(ctx, "admin@example.com", "secret")
	require.NoError(t, err)
	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, 1, n)
}

func TestListenerMayReadStore(t *testing.T) {
	s, _ := newStore(t, newFakeAuth(), Options{})

	var seen string
	s.Subscribe(func(model.Session) { seen = s.Token() })
	_, err := s.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", seen)
}

func TestSnapshotIsCopy(t *testing.T) {
	s, _ := newStore(t, newFakeAuth(), Options{})
	_, err := s.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.User.Role = model.RoleUser
	assert.True(t, s.Snapshot().IsAdmin())
}

func TestConcurrentInvalidateClearsOnce(t *testing.T) {
	s, _ := newStore(t, newFakeAuth(), Options{})
	_, err := s.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		cleared int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Invalidate(context.Background(), "abc") {
				mu.Lock()
				cleared++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cleared)
}

func TestExpired(t *testing.T) {
	sign := func(claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		require.NoError(t, err)
		return s
	}
	assert.False(t, expired("abc"), "opaque token")
	assert.False(t, expired(sign(jwt.RegisteredClaims{Subject: "u1"})), "no exp")
	assert.False(t, expired(sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})))
	assert.True(t, expired(sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))})))
}

func TestCurrent(t *testing.T) {
	s, _ := newStore(t, newFakeAuth(), Options{})
	_, err := s.Current()
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = s.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	u, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, admin, u)
}
