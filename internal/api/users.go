package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/me/adminportal/pkg/model"
)

// UsersClient manages /api/users.
type UsersClient struct {
	c *Client
}

// NewUsersClient returns a UsersClient on a session-bound client.
func NewUsersClient(c *Client) *UsersClient {
	return &UsersClient{c: c}
}

// List returns every user.
func (u *UsersClient) List(ctx context.Context) ([]model.User, error) {
	var raw []backendUser
	if err := u.c.do(ctx, http.MethodGet, "/api/users", nil, &raw); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]model.User, 0, len(raw))
	for _, r := range raw {
		users = append(users, r.toModel())
	}
	return users, nil
}

// Create adds a user.
func (u *UsersClient) Create(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	var raw backendUser
	if err := u.c.do(ctx, http.MethodPost, "/api/users", req, &raw); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return raw.toModel(), nil
}

// Update changes the non-nil fields of req on user id.
func (u *UsersClient) Update(ctx context.Context, id string, req model.UpdateUserRequest) (model.User, error) {
	var raw backendUser
	if err := u.c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), req, &raw); err != nil {
		return model.User{}, fmt.Errorf("update user %s: %w", id, err)
	}
	return raw.toModel(), nil
}

// Delete removes user id.
func (u *UsersClient) Delete(ctx context.Context, id string) error {
	if err := u.c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}
