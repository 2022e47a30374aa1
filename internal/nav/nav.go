// Package nav tracks the console's current location and keeps it
// consistent with the session.
package nav

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/me/adminportal/internal/guard"
	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/pkg/model"
)

// ErrUnknownRoute is returned by Navigate for paths outside the route table.
var ErrUnknownRoute = errors.New("unknown route")

// Sessions is the part of the session store the navigator watches.
type Sessions interface {
	Snapshot() model.Session
	Subscribe(fn func(model.Session)) (unsubscribe func())
}

// Navigator holds the current location. Every navigation and every session
// change goes through the guard.
type Navigator struct {
	sessions Sessions
	logger   *slog.Logger

	mu       sync.Mutex
	location string
	from     string
	watchers []func(guard.Decision)

	unsubscribe func()
}

// New returns a Navigator with no location that follows sessions.
func New(sessions Sessions, logger *slog.Logger) *Navigator {
	n := &Navigator{
		sessions: sessions,
		logger:   logging.Component(logger, "nav"),
	}
	n.unsubscribe = sessions.Subscribe(n.sessionChanged)
	return n
}

// Close stops following the session.
func (n *Navigator) Close() {
	n.unsubscribe()
}

// Location returns the current route path, or "" before the first
// navigation.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// From returns the location a login redirect came from, if any.
func (n *Navigator) From() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.from
}

// OnChange registers fn to run after every location change.
func (n *Navigator) OnChange(fn func(guard.Decision)) {
	n.mu.Lock()
	n.watchers = append(n.watchers, fn)
	n.mu.Unlock()
}

// Navigate moves to p, or to wherever the guard redirects it.
func (n *Navigator) Navigate(p string) (guard.Decision, error) {
	d, ok := guard.Check(n.sessions.Snapshot(), p)
	if !ok {
		return guard.Decision{}, fmt.Errorf("%w: %s", ErrUnknownRoute, p)
	}
	n.apply(d)
	return d, nil
}

// AfterLogin moves to the location that sent the user to the login route,
// or home.
func (n *Navigator) AfterLogin() guard.Decision {
	d, _ := n.Navigate(guard.LoginTarget(n.From()))
	return d
}

func (n *Navigator) apply(d guard.Decision) {
	n.mu.Lock()
	changed := n.location != d.Location
	n.location = d.Location
	switch d.Outcome {
	case guard.RedirectLogin:
		n.from = d.From
	case guard.Allow:
		if d.Location != guard.LoginPath {
			n.from = ""
		}
	}
	watchers := slices.Clone(n.watchers)
	n.mu.Unlock()

	if d.Outcome != guard.Allow {
		n.logger.Debug("redirect", "from", d.From, "to", d.Location, "outcome", d.Outcome)
	}
	if !changed {
		return
	}
	for _, fn := range watchers {
		fn(d)
	}
}

// sessionChanged re-evaluates the current location for the new session.
func (n *Navigator) sessionChanged(s model.Session) {
	current := n.Location()
	if current == "" {
		return
	}
	d, ok := guard.Check(s, current)
	if !ok || d.Allowed() {
		return
	}
	n.apply(d)
}
