package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/adminportal/internal/guard"
)

// Handler returns the web console's router.
func (ui *UI) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ui.RequestLogger)
	ui.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all UI routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	home := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, guard.HomePath, http.StatusSeeOther)
	}
	r.Get("/", home)
	r.Get("/dashboard", home)

	r.Get(guard.LoginPath, ui.HandleLogin)
	r.Post(guard.LoginPath, ui.HandleLoginPost)
	r.Post("/logout", ui.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(ui.Require(guard.Authenticated))
		r.Get(guard.UnauthorizedPath, ui.HandleUnauthorized)
	})

	r.Group(func(r chi.Router) {
		r.Use(ui.Require(guard.Admin))

		r.Route(guard.UsersPath, func(r chi.Router) {
			r.Get("/", ui.HandleUserList)
			r.Post("/", ui.HandleUserCreate)
			r.Post("/{id}", ui.HandleUserUpdate)
			r.Post("/{id}/delete", ui.HandleUserDelete)
		})
		r.Route(guard.CategoriesPath, func(r chi.Router) {
			r.Get("/", ui.HandleCategoryList)
			r.Post("/", ui.HandleCategoryCreate)
			r.Post("/{id}", ui.HandleCategoryUpdate)
		})
		r.Route(guard.TagsPath, func(r chi.Router) {
			r.Get("/", ui.HandleTagList)
			r.Post("/", ui.HandleTagCreate)
			r.Post("/{id}", ui.HandleTagUpdate)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ui.renderNotFound(w, r, "Page not found")
	})
}
