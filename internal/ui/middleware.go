package ui

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/adminportal/internal/guard"
)

// Require evaluates the session against req for every request and
// redirects when access is denied. A request without the session cookie
// is treated as anonymous, so cross-site form posts land on the login
// page. The requested path rides along as ?from= on both redirects.
func (ui *UI) Require(req guard.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := guard.Evaluate(req, ui.session(r), r.URL.Path)
			switch d.Outcome {
			case guard.RedirectLogin:
				http.Redirect(w, r, loginURL(d.From), http.StatusSeeOther)
				return
			case guard.RedirectUnauthorized:
				http.Redirect(w, r, unauthorizedURL(d.From), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs each request at debug level.
func (ui *UI) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		ui.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func loginURL(from string) string {
	return withFrom(guard.LoginPath, from)
}

func unauthorizedURL(from string) string {
	return withFrom(guard.UnauthorizedPath, from)
}

func withFrom(path, from string) string {
	if from == "" {
		return path
	}
	return path + "?from=" + url.QueryEscape(from)
}
