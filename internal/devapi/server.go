// Package devapi is an in-memory implementation of the admin backend's HTTP
// contract, for local trials of the console and for tests.
//
// Records are served with capitalized JSON keys, passwords are stored as
// bcrypt hashes and sessions are HS256 JWTs that can be revoked by logout.
// Every /api route requires the admin role.
package devapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/pkg/model"
)

// Config configures the fake backend.
type Config struct {
	// Secret signs session tokens. A random secret is generated when empty.
	Secret []byte
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration
	// HashCost is the bcrypt cost for stored passwords.
	HashCost int
	// AdminEmail and AdminPassword seed the first admin account when both
	// are set.
	AdminEmail    string
	AdminPassword string
}

// DefaultConfig returns the settings used by cmd/devapi.
func DefaultConfig() Config {
	return Config{
		TokenTTL:      time.Hour,
		HashCost:      bcrypt.DefaultCost,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin",
	}
}

// TestConfig returns DefaultConfig with the cheapest bcrypt cost, for
// tests that log in many times.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.HashCost = bcrypt.MinCost
	return cfg
}

// Server is the fake admin backend.
type Server struct {
	router chi.Router
	logger *slog.Logger
	cfg    Config
	now    func() time.Time

	mu         sync.RWMutex
	users      []*userRecord
	categories []*categoryRecord
	tags       []*tagRecord
	revoked    map[string]struct{} // token IDs
}

// Option configures optional Server behavior.
type Option func(*Server)

// WithClock replaces time.Now, e.g. to expire tokens in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server with all routes registered and the admin seeded.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	if len(cfg.Secret) == 0 {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Secret = secret
	}

	s := &Server{
		router:  chi.NewRouter(),
		logger:  logging.Component(logger, "devapi"),
		cfg:     cfg,
		now:     time.Now,
		revoked: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := s.AddUser(cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(adminMiddleware)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Put("/{id}", s.handleUpdateCategory)
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
			r.Put("/{id}", s.handleUpdateTag)
		})
	})
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
