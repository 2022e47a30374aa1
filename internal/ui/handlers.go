// Package ui serves the browser front end of the admin console.
package ui

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/me/adminportal/internal/api"
	"github.com/me/adminportal/internal/app"
	"github.com/me/adminportal/internal/guard"
	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/internal/validate"
	"github.com/me/adminportal/pkg/model"
)

// UI handles the web user interface. It acts for the single process-wide
// session owned by the App. Browsers reach that session only through the
// cookie handed out when they log in.
type UI struct {
	app      *app.App
	logger   *slog.Logger
	browsers *browsers
	secure   bool
}

// Config holds UI configuration.
type Config struct {
	// Secure sets the Secure flag on the session cookie.
	Secure bool
}

// New creates a new UI handler.
func New(a *app.App, logger *slog.Logger, cfg Config) *UI {
	if logger == nil {
		logger = a.Logger
	}
	return &UI{
		app:      a,
		logger:   logging.Component(logger, "ui"),
		browsers: newBrowsers(),
		secure:   cfg.Secure,
	}
}

// session returns the console session as seen by r. A request without a
// cookie issued for the current session sees an anonymous one.
func (ui *UI) session(r *http.Request) model.Session {
	s := ui.app.Session.Snapshot()
	if !ui.browsers.valid(r, s.Token) {
		return model.Session{}
	}
	return s
}

// HandleLogin renders the login page.
func (ui *UI) HandleLogin(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	if ui.session(r).IsAuthenticated() {
		http.Redirect(w, r, guard.LoginTarget(from), http.StatusSeeOther)
		return
	}

	ui.render(w, r, http.StatusOK, "login", map[string]any{
		"Title": "Login - Admin Portal",
		"From":  from,
	})
}

// HandleLoginPost processes the login form.
func (ui *UI) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ui.render(w, r, http.StatusBadRequest, "login", map[string]any{
			"Title": "Login - Admin Portal",
			"Error": "Invalid request",
		})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	from := r.FormValue("from")

	user, err := ui.app.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		status, msg := http.StatusBadGateway, "Login failed"
		var verrs validate.Errors
		switch {
		case errors.As(err, &verrs):
			status, msg = http.StatusBadRequest, verrs.Error()
		case errors.Is(err, api.ErrUnauthorized):
			status, msg = http.StatusUnauthorized, "Invalid email or password"
		default:
			ui.logger.Error("login failed", "email", email, "error", err)
		}
		ui.render(w, r, status, "login", map[string]any{
			"Title": "Login - Admin Portal",
			"Error": msg,
			"Email": email,
			"From":  from,
		})
		return
	}

	id, expiresAt, err := ui.browsers.issue(ui.app.Session.Token())
	if err != nil {
		ui.renderError(w, r, "Login failed", err)
		return
	}
	SetSessionCookie(w, id, expiresAt, ui.secure)

	ui.logger.Info("user logged in", "email", user.Email, "role", user.Role)
	http.Redirect(w, r, guard.LoginTarget(from), http.StatusSeeOther)
}

// HandleLogout ends the session and redirects to login. Only a browser
// holding the session cookie can end the session; any other request just
// loses its cookie.
func (ui *UI) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if s := ui.session(r); s.HasToken() {
		if err := ui.app.Session.Logout(r.Context()); err != nil {
			ui.logger.Warn("logout", "error", err)
		}
		ui.logger.Info("user logged out", "email", s.Email())
	}
	ui.browsers.revoke(r)
	ClearSessionCookie(w, ui.secure)
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

// HandleUnauthorized renders the page shown to non-admins.
func (ui *UI) HandleUnauthorized(w http.ResponseWriter, r *http.Request) {
	ui.render(w, r, http.StatusForbidden, "unauthorized", map[string]any{
		"Title": "Unauthorized - Admin Portal",
	})
}

// --- Users ---

// HandleUserList renders the users view.
func (ui *UI) HandleUserList(w http.ResponseWriter, r *http.Request) {
	users, err := ui.app.Users.List(r.Context())
	if err != nil {
		ui.fail(w, r, guard.UsersPath, "Failed to load users", err)
		return
	}
	ui.render(w, r, http.StatusOK, "users", map[string]any{
		"Title": "Users - Admin Portal",
		"Users": users,
	})
}

// HandleUserCreate processes the add user form.
func (ui *UI) HandleUserCreate(w http.ResponseWriter, r *http.Request) {
	req := model.CreateUserRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     model.UserRole(r.PostFormValue("role")),
	}
	if _, err := ui.app.CreateUser(r.Context(), req); err != nil {
		ui.fail(w, r, guard.UsersPath, "Failed to create user", err)
		return
	}
	redirectNotice(w, r, guard.UsersPath, "User created")
}

// HandleUserUpdate processes a user row's edit form. Empty fields are left
// unchanged.
func (ui *UI) HandleUserUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRequest
	if v := r.PostFormValue("email"); strings.TrimSpace(v) != "" {
		req.Email = &v
	}
	if v := r.PostFormValue("password"); v != "" {
		req.Password = &v
	}
	if v := r.PostFormValue("role"); v != "" {
		role := model.UserRole(v)
		req.Role = &role
	}
	if _, err := ui.app.UpdateUser(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		ui.fail(w, r, guard.UsersPath, "Failed to update user", err)
		return
	}
	redirectNotice(w, r, guard.UsersPath, "User updated")
}

// HandleUserDelete removes a user. The browser asks for confirmation
// before submitting.
func (ui *UI) HandleUserDelete(w http.ResponseWriter, r *http.Request) {
	if err := ui.app.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		ui.fail(w, r, guard.UsersPath, "Failed to delete user", err)
		return
	}
	redirectNotice(w, r, guard.UsersPath, "User deleted")
}

// --- Categories ---

// HandleCategoryList renders the categories view.
func (ui *UI) HandleCategoryList(w http.ResponseWriter, r *http.Request) {
	categories, err := ui.app.Categories.List(r.Context())
	if err != nil {
		ui.fail(w, r, guard.CategoriesPath, "Failed to load categories", err)
		return
	}
	ui.render(w, r, http.StatusOK, "categories", map[string]any{
		"Title":      "Categories - Admin Portal",
		"Categories": categories,
	})
}

// HandleCategoryCreate processes the add category form.
func (ui *UI) HandleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	req := model.CreateCategoryRequest{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	if _, err := ui.app.CreateCategory(r.Context(), req); err != nil {
		ui.fail(w, r, guard.CategoriesPath, "Failed to create category", err)
		return
	}
	redirectNotice(w, r, guard.CategoriesPath, "Category created")
}

// HandleCategoryUpdate processes a category row's edit form.
func (ui *UI) HandleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	description := r.PostFormValue("description")
	req := model.UpdateCategoryRequest{Name: &name, Description: &description}
	if _, err := ui.app.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		ui.fail(w, r, guard.CategoriesPath, "Failed to update category", err)
		return
	}
	redirectNotice(w, r, guard.CategoriesPath, "Category updated")
}

// --- Tags ---

// HandleTagList renders the tags view.
func (ui *UI) HandleTagList(w http.ResponseWriter, r *http.Request) {
	tags, err := ui.app.Tags.List(r.Context())
	if err != nil {
		ui.fail(w, r, guard.TagsPath, "Failed to load tags", err)
		return
	}
	ui.render(w, r, http.StatusOK, "tags", map[string]any{
		"Title": "Tags - Admin Portal",
		"Tags":  tags,
	})
}

// HandleTagCreate processes the add tag form.
func (ui *UI) HandleTagCreate(w http.ResponseWriter, r *http.Request) {
	req := model.CreateTagRequest{Name: r.PostFormValue("name")}
	if _, err := ui.app.CreateTag(r.Context(), req); err != nil {
		ui.fail(w, r, guard.TagsPath, "Failed to create tag", err)
		return
	}
	redirectNotice(w, r, guard.TagsPath, "Tag created")
}

// HandleTagUpdate processes a tag row's rename form.
func (ui *UI) HandleTagUpdate(w http.ResponseWriter, r *http.Request) {
	req := model.UpdateTagRequest{Name: r.PostFormValue("name")}
	if _, err := ui.app.UpdateTag(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		ui.fail(w, r, guard.TagsPath, "Failed to update tag", err)
		return
	}
	redirectNotice(w, r, guard.TagsPath, "Tag updated")
}

// --- Helpers ---

// fail reports a handler error for the view at view. Auth failures have
// already cleared the session through the client hook, so they go back to
// login with the view as origin. Validation errors return to the view.
func (ui *UI) fail(w http.ResponseWriter, r *http.Request, view, message string, err error) {
	var verrs validate.Errors
	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrNoSession):
		ui.logger.Info("session rejected", "path", r.URL.Path)
		http.Redirect(w, r, loginURL(view), http.StatusSeeOther)
	case errors.As(err, &verrs):
		redirectError(w, r, view, verrs.Error())
	case r.Method == http.MethodPost && api.StatusCode(err) >= 400 && api.StatusCode(err) < 500:
		redirectError(w, r, view, message+": "+errMessage(err))
	default:
		ui.renderError(w, r, message, err)
	}
}

func errMessage(err error) string {
	var he *api.HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	return err.Error()
}

func redirectError(w http.ResponseWriter, r *http.Request, to, msg string) {
	http.Redirect(w, r, to+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectNotice(w http.ResponseWriter, r *http.Request, to, msg string) {
	http.Redirect(w, r, to+"?notice="+url.QueryEscape(msg), http.StatusSeeOther)
}

func (ui *UI) render(w http.ResponseWriter, r *http.Request, status int, template string, data map[string]any) {
	data["Session"] = ui.session(r)
	data["Menu"] = guard.DashboardRoutes()
	data["Path"] = r.URL.Path
	if _, ok := data["Error"]; !ok {
		data["Error"] = r.URL.Query().Get("error")
	}
	data["Notice"] = r.URL.Query().Get("notice")

	var buf bytes.Buffer
	if err := renderTemplate(&buf, template, data); err != nil {
		ui.logger.Error("template render failed", "template", template, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (ui *UI) renderError(w http.ResponseWriter, r *http.Request, message string, err error) {
	ui.logger.Error(message, "error", err)
	ui.render(w, r, http.StatusInternalServerError, "error", map[string]any{
		"Title":   "Error - Admin Portal",
		"Message": message,
	})
}

func (ui *UI) renderNotFound(w http.ResponseWriter, r *http.Request, message string) {
	ui.render(w, r, http.StatusNotFound, "error", map[string]any{
		"Title":   "Not Found - Admin Portal",
		"Message": message,
	})
}
