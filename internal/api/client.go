// Package api is the console's HTTP layer and the resource clients built on
// it.
//
// A Client bound to a session (WithSession) attaches the session token to
// every call and reports every 401 to a single UnauthorizedFunc, so stale
// sessions are handled in one place for all resources.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/adminportal/internal/logging"
)

// TokenSource supplies the current session token. An empty string means
// no session.
type TokenSource interface {
	Token() string
}

// UnauthorizedFunc is called when the backend rejects token with 401 on an
// authenticated call.
type UnauthorizedFunc func(ctx context.Context, token string)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client is an HTTP client for the admin backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
	tokens         TokenSource
	onUnauthorized UnauthorizedFunc
}

// New creates a Client that is not bound to a session. It can serve
// unauthenticated calls and calls with an explicit token.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: hc,
		logger:     logging.Component(opts.Logger, "api"),
	}
}

// WithSession returns a copy of c that authenticates with tokens and calls
// onUnauthorized for every 401 on an authenticated call.
func (c *Client) WithSession(tokens TokenSource, onUnauthorized UnauthorizedFunc) *Client {
	cp := *c
	cp.tokens = tokens
	cp.onUnauthorized = onUnauthorized
	return &cp
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do performs an authenticated call with the session token.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var token string
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token == "" {
		return fmt.Errorf("%s %s: %w", method, path, ErrNoSession)
	}

	err := c.send(ctx, method, path, token, body, out)
	if err != nil && isUnauthorized(err) && c.onUnauthorized != nil {
		c.logger.Info("session token rejected", "method", method, "path", path)
		c.onUnauthorized(ctx, token)
	}
	return err
}

// send performs one request. token may be empty for unauthenticated calls.
// A 2xx body is decoded into out when out is non-nil.
func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("HTTP request", "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("HTTP response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

func isUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
