package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/me/adminportal/pkg/model"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string
	User  model.User
}

// AuthClient calls the /auth endpoints. None of its calls reports to the
// session's UnauthorizedFunc: login has no session yet, and Me and Logout
// are driven by the session itself with an explicit token.
type AuthClient struct {
	c *Client
}

// NewAuthClient returns an AuthClient on c.
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

// Login exchanges credentials for a token. Bad credentials yield an error
// matching ErrUnauthorized.
func (a *AuthClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var resp struct {
		Token string      `json:"token"`
		User  backendUser `json:"user"`
	}
	req := model.LoginRequest{Email: email, Password: password}
	if err := a.c.send(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return LoginResult{}, errors.New("login: backend returned no token")
	}
	return LoginResult{Token: resp.Token, User: resp.User.toModel()}, nil
}

// Logout asks the backend to revoke token.
func (a *AuthClient) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("logout: %w", ErrNoSession)
	}
	if err := a.c.send(ctx, http.MethodPost, "/auth/logout", token, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Me resolves token to the user it belongs to. A 401 means the token is
// invalid or expired.
func (a *AuthClient) Me(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, fmt.Errorf("me: %w", ErrNoSession)
	}
	var u backendUser
	if err := a.c.send(ctx, http.MethodGet, "/auth/me", token, nil, &u); err != nil {
		return model.User{}, fmt.Errorf("me: %w", err)
	}
	return u.toModel(), nil
}
