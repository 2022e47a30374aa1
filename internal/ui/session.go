package ui

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	// SessionCookieName is the cookie that ties a browser to the console
	// session it logged in.
	SessionCookieName = "adminportal_session"
	// SessionDuration is how long a browser cookie stays valid.
	SessionDuration = 24 * time.Hour
)

type browserSession struct {
	token     string
	expiresAt time.Time
}

// browsers records the cookies handed out by a successful login. A cookie
// is honored only while the console session token it was issued for is
// still the current one, so logging out, logging in again or losing the
// session to a 401 retires every outstanding cookie.
type browsers struct {
	mu       sync.Mutex
	sessions map[string]browserSession
	now      func() time.Time
}

func newBrowsers() *browsers {
	return &browsers{
		sessions: make(map[string]browserSession),
		now:      time.Now,
	}
}

// issue creates a cookie id bound to token and forgets cookies bound to
// any other token.
func (b *browsers) issue(token string) (string, time.Time, error) {
	id, err := generateSessionID()
	if err != nil {
		return "", time.Time{}, err
	}
	now := b.now()
	expiresAt := now.Add(SessionDuration)

	b.mu.Lock()
	defer b.mu.Unlock()
	for k, bs := range b.sessions {
		if bs.token != token || now.After(bs.expiresAt) {
			delete(b.sessions, k)
		}
	}
	b.sessions[id] = browserSession{token: token, expiresAt: expiresAt}
	return id, expiresAt, nil
}

// valid reports whether r carries a live cookie issued for token.
func (b *browsers) valid(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	bs, ok := b.sessions[c.Value]
	if !ok {
		return false
	}
	if bs.token != token || b.now().After(bs.expiresAt) {
		delete(b.sessions, c.Value)
		return false
	}
	return true
}

// revoke forgets the cookie carried by r, if any.
func (b *browsers) revoke(r *http.Request) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return
	}
	b.mu.Lock()
	delete(b.sessions, c.Value)
	b.mu.Unlock()
}

// SetSessionCookie sets the browser session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, id string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  expiresAt,
	})
}

// ClearSessionCookie removes the browser session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// generateSessionID creates a random cookie id.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return "sess_" + hex.EncodeToString(b), nil
}
