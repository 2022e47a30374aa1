package console

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/me/adminportal/internal/api"
	"github.com/me/adminportal/internal/guard"
	"github.com/me/adminportal/internal/output"
	"github.com/me/adminportal/internal/session"
	"github.com/me/adminportal/internal/validate"
	"github.com/me/adminportal/pkg/model"
)

// render shows the current view. Dashboard views are fetched fresh.
func (c *Console) render(ctx context.Context) {
	loc := c.nav.Location()
	switch loc {
	case guard.LoginPath:
		fmt.Fprintln(c.out, "Please log in with 'login'.")
	case guard.UnauthorizedPath:
		fmt.Fprintln(c.out, "You do not have permission to view this page.")
	case guard.UsersPath:
		users, err := c.app.Users.List(ctx)
		if err != nil {
			c.report(err)
			return
		}
		fmt.Fprintln(c.out, "== Users ==")
		output.Users(c.out, users)
	case guard.CategoriesPath:
		cats, err := c.app.Categories.List(ctx)
		if err != nil {
			c.report(err)
			return
		}
		fmt.Fprintln(c.out, "== Categories ==")
		output.Categories(c.out, cats)
	case guard.TagsPath:
		tags, err := c.app.Tags.List(ctx)
		if err != nil {
			c.report(err)
			return
		}
		fmt.Fprintln(c.out, "== Tags ==")
		output.Tags(c.out, tags)
	default:
		fmt.Fprintln(c.out, "Nothing to show here.")
	}
}

func (c *Console) create(ctx context.Context) {
	switch c.nav.Location() {
	case guard.UsersPath:
		email, err := c.ask("Email")
		if err != nil {
			c.report(err)
			return
		}
		password, err := c.askPassword()
		if err != nil {
			c.report(err)
			return
		}
		role, err := c.ask("Role (admin/user) [user]")
		if err != nil {
			c.report(err)
			return
		}
		if role == "" {
			role = string(model.RoleUser)
		}
		u, err := c.app.CreateUser(ctx, model.CreateUserRequest{Email: email, Password: password, Role: model.UserRole(role)})
		if err != nil {
			c.report(err)
			return
		}
		fmt.Fprintf(c.out, "Created user %s (%s).\n", u.Email, u.ID)
	case guard.CategoriesPath:
		name, err := c.ask("Name")
		if err != nil {
			c.report(err)
			return
		}
		desc, err := c.ask("Description")
		if err != nil {
			c.report(err)
			return
		}
		cat, err := c.app.CreateCategory(ctx, model.CreateCategoryRequest{Name: name, Description: desc})
		if err != nil {
			c.report(err)
			return
		}
		fmt.Fprintf(c.out, "Created category %s (%s).\n", cat.Name, cat.ID)
	case guard.TagsPath:
		name, err := c.ask("Name")
		if err != nil {
			c.report(err)
			return
		}
		tag, err := c.app.CreateTag(ctx, model.CreateTagRequest{Name: name})
		if err != nil {
			c.report(err)
			return
		}
		fmt.Fprintf(c.out, "Created tag %s (%s).\n", tag.Name, tag.ID)
	default:
		fmt.Fprintln(c.out, "Open users, categories or tags first.")
		return
	}
	c.render(ctx)
}

// edit prompts for new values; an empty answer keeps the current one.
func (c *Console) edit(ctx context.Context, id string) {
	switch c.nav.Location() {
	case guard.UsersPath:
		var req model.UpdateUserRequest
		email, err := c.ask("New email (empty keeps)")
		if err != nil {
			c.report(err)
			return
		}
		if email != "" {
			req.Email = &email
		}
		password, err := c.ask("New password (empty keeps)")
		if err != nil {
			c.report(err)
			return
		}
		if password != "" {
			req.Password = &password
		}
		role, err := c.ask("New role (empty keeps)")
		if err != nil {
			c.report(err)
			return
		}
		if role != "" {
			r := model.UserRole(role)
			req.Role = &r
		}
		if _, err := c.app.UpdateUser(ctx, id, req); err != nil {
			c.report(err)
			return
		}
		fmt.Fprintln(c.out, "User updated.")
	case guard.CategoriesPath:
		var req model.UpdateCategoryRequest
		name, err := c.ask("New name (empty keeps)")
		if err != nil {
			c.report(err)
			return
		}
		if name != "" {
			req.Name = &name
		}
		desc, err := c.ask("New description (empty keeps)")
		if err != nil {
			c.report(err)
			return
		}
		if desc != "" {
			req.Description = &desc
		}
		if _, err := c.app.UpdateCategory(ctx, id, req); err != nil {
			c.report(err)
			return
		}
		fmt.Fprintln(c.out, "Category updated.")
	case guard.TagsPath:
		name, err := c.ask("New name")
		if err != nil {
			c.report(err)
			return
		}
		if _, err := c.app.UpdateTag(ctx, id, model.UpdateTagRequest{Name: name}); err != nil {
			c.report(err)
			return
		}
		fmt.Fprintln(c.out, "Tag updated.")
	default:
		fmt.Fprintln(c.out, "Open users, categories or tags first.")
		return
	}
	c.render(ctx)
}

func (c *Console) delete(ctx context.Context, id string) {
	if c.nav.Location() != guard.UsersPath {
		fmt.Fprintln(c.out, "Only users can be deleted.")
		return
	}
	if !c.confirm(fmt.Sprintf("Delete user %s?", id)) {
		fmt.Fprintln(c.out, "Cancelled.")
		return
	}
	if err := c.app.DeleteUser(ctx, id); err != nil {
		c.report(err)
		return
	}
	fmt.Fprintln(c.out, "User deleted.")
	c.render(ctx)
}

// report prints err for the user. A rejected session has already been
// cleared and redirected by the time it gets here.
func (c *Console) report(err error) {
	var ve validate.Errors
	switch {
	case errors.As(err, &ve):
		fields := make([]string, 0, len(ve))
		for f := range ve {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(c.out, "  %s\n", ve[f])
		}
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintln(c.out, "Session expired. Please log in again.")
	case errors.Is(err, api.ErrNoSession), errors.Is(err, session.ErrNotAuthenticated):
		fmt.Fprintln(c.out, "Not logged in.")
	default:
		c.logger.Error("operation failed", "error", err)
		fmt.Fprintln(c.out, "Error:", err)
	}
}
