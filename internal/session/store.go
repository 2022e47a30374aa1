// Package session owns the console's authentication state.
//
// A Store holds the session token and the user it resolves to, persists the
// token through a tokenstore.Store and tells subscribers about every change.
// It is the only writer of the session; everyone else reads snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/me/adminportal/internal/api"
	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/internal/tokenstore"
	"github.com/me/adminportal/pkg/model"
)

// ErrNotAuthenticated is returned by operations that need a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Authenticator is the subset of the auth endpoints the store drives.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (model.User, error)
}

// Options tunes Store behavior.
type Options struct {
	// RevokeOnLogout asks the backend to revoke the token after a local
	// logout. Failures are logged only.
	RevokeOnLogout bool
	// ClearOnInitError drops the persisted token when Initialize cannot
	// verify it for a reason other than a 401.
	ClearOnInitError bool
	Logger           *slog.Logger
}

// Store is the session store.
type Store struct {
	auth   Authenticator
	tokens tokenstore.Store
	opts   Options
	logger *slog.Logger

	mu    sync.RWMutex
	token string
	user  *model.User

	lmu       sync.Mutex
	listeners map[int]func(model.Session)
	nextID    int
}

// New creates an empty Store. Call Initialize to restore a persisted session.
func New(auth Authenticator, tokens tokenstore.Store, opts Options) *Store {
	return &Store{
		auth:      auth,
		tokens:    tokens,
		opts:      opts,
		logger:    logging.Component(opts.Logger, "session"),
		listeners: make(map[int]func(model.Session)),
	}
}

// Token returns the current token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the resolved user, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// Current returns the resolved user or ErrNotAuthenticated.
func (s *Store) Current() (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.user == nil {
		return model.User{}, ErrNotAuthenticated
	}
	return *s.user, nil
}

// Snapshot returns a copy of the session.
func (s *Store) Snapshot() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Session {
	return model.Session{Token: s.token, User: copyUser(s.user)}
}

// Subscribe registers fn for session changes and returns a function that
// removes it. Listeners run on the goroutine that changed the session,
// after the store lock is released.
func (s *Store) Subscribe(fn func(model.Session)) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

func (s *Store) publish(snap model.Session) {
	s.lmu.Lock()
	fns := make([]func(model.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// set replaces the session and publishes the result.
func (s *Store) set(token string, user *model.User) {
	s.mu.Lock()
	s.token = token
	s.user = copyUser(user)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Initialize restores the persisted session.
//
// With no persisted token the session stays empty. A token whose JWT exp
// claim has passed is discarded without a request. Otherwise the token is
// resolved through the identity endpoint: success sets the user, a 401
// clears the token everywhere, and any other failure is returned with the
// token kept and the user absent unless Options.ClearOnInitError is set.
// Failing to remove a discarded token from storage is returned as well.
func (s *Store) Initialize(ctx context.Context) error {
	token, err := s.tokens.Get(ctx, tokenstore.TokenKey)
	if errors.Is(err, tokenstore.ErrNotFound) {
		s.logger.Debug("no persisted session")
		s.set("", nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}

	if expired(token) {
		s.logger.Info("persisted session expired")
		return s.clear(ctx)
	}

	user, err := s.auth.Me(ctx, token)
	switch {
	case err == nil:
		s.logger.Debug("session restored", "email", user.Email, "role", user.Role)
		s.set(token, &user)
		return nil
	case errors.Is(err, api.ErrUnauthorized):
		s.logger.Info("persisted session rejected by backend")
		return s.clear(ctx)
	case s.opts.ClearOnInitError:
		s.logger.Warn("could not verify session, discarding it", "error", err)
		return errors.Join(fmt.Errorf("verify session: %w", err), s.clear(ctx))
	default:
		s.logger.Warn("could not verify session", "error", err)
		s.set(token, nil)
		return fmt.Errorf("verify session: %w", err)
	}
}

// Login authenticates with the backend and replaces the session. On error
// the session is left unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (model.User, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	if err := s.tokens.Set(ctx, tokenstore.TokenKey, res.Token); err != nil {
		return model.User{}, fmt.Errorf("persist session token: %w", err)
	}

	s.logger.Info("logged in", "email", res.User.Email, "role", res.User.Role)
	s.set(res.Token, &res.User)
	return res.User, nil
}

// Logout clears the session locally, then revokes the old token on the
// backend when configured to. Only a local storage failure is returned.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.RLock()
	old := s.token
	s.mu.RUnlock()

	err := s.clear(ctx)
	s.logger.Info("logged out")

	if old != "" && s.opts.RevokeOnLogout {
		if rerr := s.auth.Logout(ctx, old); rerr != nil {
			s.logger.Warn("backend logout failed", "error", rerr)
		}
	}
	return err
}

// Invalidate clears the session if token is still the current one and
// reports whether it did. It is the handler for tokens rejected by the
// backend; a rejection of an older token leaves a newer session alone.
func (s *Store) Invalidate(ctx context.Context, token string) bool {
	s.mu.Lock()
	if token == "" || s.token != token {
		s.mu.Unlock()
		return false
	}
	s.token = ""
	s.user = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.tokens.Delete(ctx, tokenstore.TokenKey); err != nil {
		s.logger.Error("remove session token", "error", err)
	}
	s.logger.Info("session invalidated by backend")
	s.publish(snap)
	return true
}

// clear empties the session and the persisted token.
func (s *Store) clear(ctx context.Context) error {
	s.set("", nil)
	if err := s.tokens.Delete(ctx, tokenstore.TokenKey); err != nil {
		return fmt.Errorf("remove session token: %w", err)
	}
	return nil
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
