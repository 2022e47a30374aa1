// Package app wires the console's collaborators together. Every front end
// (commands, interactive console, web console) works through one App.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/me/adminportal/internal/api"
	"github.com/me/adminportal/internal/config"
	"github.com/me/adminportal/internal/guard"
	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/internal/nav"
	"github.com/me/adminportal/internal/session"
	"github.com/me/adminportal/internal/tokenstore"
	"github.com/me/adminportal/internal/validate"
	"github.com/me/adminportal/pkg/model"
)

// App owns the session and the clients that act on its behalf.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Session *session.Store

	Auth       *api.AuthClient
	Users      *api.UsersClient
	Categories *api.CategoriesClient
	Tags       *api.TagsClient

	tokens tokenstore.Store
}

// Option configures optional App dependencies.
type Option func(*options)

type options struct {
	tokens     tokenstore.Store
	httpClient *http.Client
}

// WithTokenStore uses st instead of the configured storage backend. The App
// does not close it.
func WithTokenStore(st tokenstore.Store) Option {
	return func(o *options) { o.tokens = st }
}

// WithHTTPClient overrides the HTTP client used for the backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New builds an App from cfg. The session starts empty; call Start to
// restore it.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	tokens := o.tokens
	owned := false
	if tokens == nil {
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		tokens, err = tokenstore.Open(ctx, cfg.Storage.Backend, path, logger)
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
		owned = true
	}

	base := api.New(api.Options{
		BaseURL:    cfg.Server,
		Timeout:    cfg.Timeout,
		Logger:     logger,
		HTTPClient: o.httpClient,
	})
	auth := api.NewAuthClient(base)

	sess := session.New(auth, tokens, session.Options{
		RevokeOnLogout:   cfg.Auth.RevokeOnLogout,
		ClearOnInitError: cfg.Session.ClearOnInitError,
		Logger:           logger,
	})
	authed := base.WithSession(sess, func(ctx context.Context, token string) {
		sess.Invalidate(ctx, token)
	})

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Session:    sess,
		Auth:       auth,
		Users:      api.NewUsersClient(authed),
		Categories: api.NewCategoriesClient(authed),
		Tags:       api.NewTagsClient(authed),
	}
	if owned {
		a.tokens = tokens
	}
	return a, nil
}

// Start restores the persisted session.
func (a *App) Start(ctx context.Context) error {
	return a.Session.Initialize(ctx)
}

// Close releases the token store if the App opened it.
func (a *App) Close() error {
	if a.tokens == nil {
		return nil
	}
	return a.tokens.Close()
}

// Navigator returns a new Navigator following this App's session.
func (a *App) Navigator() *nav.Navigator {
	return nav.New(a.Session, a.Logger)
}

// Require checks the session against the route at path.
func (a *App) Require(path string) error {
	d, ok := guard.Check(a.Session.Snapshot(), path)
	if !ok {
		return fmt.Errorf("%w: %s", nav.ErrUnknownRoute, path)
	}
	return d.Err()
}

// Login validates the credentials and logs in.
func (a *App) Login(ctx context.Context, email, password string) (model.User, error) {
	req := model.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(req); err != nil {
		return model.User{}, err
	}
	return a.Session.Login(ctx, req.Email, req.Password)
}

// CreateUser validates req and creates the user.
func (a *App) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return model.User{}, err
	}
	return a.Users.Create(ctx, req)
}

// UpdateUser validates req and updates user id.
func (a *App) UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (model.User, error) {
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
	}
	if err := validate.Struct(req); err != nil {
		return model.User{}, err
	}
	return a.Users.Update(ctx, id, req)
}

// DeleteUser removes user id.
func (a *App) DeleteUser(ctx context.Context, id string) error {
	return a.Users.Delete(ctx, id)
}

// CreateCategory validates req and creates the category.
func (a *App) CreateCategory(ctx context.Context, req model.CreateCategoryRequest) (model.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return model.Category{}, err
	}
	return a.Categories.Create(ctx, req)
}

// UpdateCategory validates req and updates category id.
func (a *App) UpdateCategory(ctx context.Context, id string, req model.UpdateCategoryRequest) (model.Category, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validate.Struct(req); err != nil {
		return model.Category{}, err
	}
	return a.Categories.Update(ctx, id, req)
}

// CreateTag validates req and creates the tag.
func (a *App) CreateTag(ctx context.Context, req model.CreateTagRequest) (model.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return model.Tag{}, err
	}
	return a.Tags.Create(ctx, req)
}

// UpdateTag validates req and renames tag id.
func (a *App) UpdateTag(ctx context.Context, id string, req model.UpdateTagRequest) (model.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return model.Tag{}, err
	}
	return a.Tags.Update(ctx, id, req)
}
