// Package guard decides whether a session may open a route.
package guard

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/me/adminportal/pkg/model"
)

// Requirement is the access level a route needs.
type Requirement int

const (
	// Public routes are open to everyone.
	Public Requirement = iota
	// Authenticated routes need a token with a resolved user.
	Authenticated
	// Admin routes additionally need the admin role.
	Admin
)

func (r Requirement) String() string {
	switch r {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Outcome is the result of evaluating a route.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectUnauthorized:
		return "redirect-unauthorized"
	default:
		return "unknown"
	}
}

// Errors reported for denied decisions by Decision.Err.
var (
	ErrLoginRequired = errors.New("not logged in")
	ErrAdminRequired = errors.New("admin role required")
)

// Decision says where a navigation ends up. From is the requested
// location, kept so that a login can return to it.
type Decision struct {
	Outcome  Outcome
	Location string
	From     string
}

// Allowed reports whether the requested route may be shown.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Err returns nil for Allow, otherwise ErrLoginRequired or ErrAdminRequired.
func (d Decision) Err() error {
	switch d.Outcome {
	case RedirectLogin:
		return ErrLoginRequired
	case RedirectUnauthorized:
		return ErrAdminRequired
	default:
		return nil
	}
}

// Evaluate applies requirement to the session for a navigation to
// requested.
//
// A session without a token or without a resolved user goes to the login
// route. A non-admin on an admin route goes to the unauthorized route.
func Evaluate(req Requirement, s model.Session, requested string) Decision {
	if req == Public {
		return Decision{Outcome: Allow, Location: requested}
	}
	if !s.IsAuthenticated() {
		return Decision{Outcome: RedirectLogin, Location: LoginPath, From: requested}
	}
	if req == Admin && !s.IsAdmin() {
		return Decision{Outcome: RedirectUnauthorized, Location: UnauthorizedPath, From: requested}
	}
	return Decision{Outcome: Allow, Location: requested}
}

// Check resolves p against the route table and evaluates it. ok is false
// for unknown routes.
func Check(s model.Session, p string) (d Decision, ok bool) {
	resolved := Resolve(p)
	r, ok := Lookup(resolved)
	if !ok {
		return Decision{}, false
	}
	return Evaluate(r.Requirement, s, resolved), true
}

// LoginTarget returns where to go after a successful login: from when it
// names a guarded route, else the home route.
func LoginTarget(from string) string {
	resolved := Resolve(from)
	r, ok := Lookup(resolved)
	if !ok || r.Requirement == Public || r.Path == UnauthorizedPath {
		return HomePath
	}
	return resolved
}

// Resolve cleans p, drops any query or fragment and follows aliases.
func Resolve(p string) string {
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	p = strings.TrimSpace(p)
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	if target, ok := aliases[p]; ok {
		return target
	}
	return p
}
