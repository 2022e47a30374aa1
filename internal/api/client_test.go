package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/pkg/model"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// hookRecorder counts UnauthorizedFunc calls and remembers the last token.
type hookRecorder struct {
	calls atomic.Int32
	token atomic.Value
}

func (h *hookRecorder) fn(_ context.Context, token string) {
	h.calls.Add(1)
	h.token.Store(token)
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Timeout: 5 * time.Second, Logger: logging.Discard()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestAuthenticatedCallSendsBearer(t *testing.T) {
	var gotAuth, gotCT, gotReqID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		gotReqID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, []any{})
	}))

	_, err := NewTagsClient(c.WithSession(staticToken("abc"), nil)).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "application/json", gotCT)
	assert.NotEmpty(t, gotReqID)
}

func TestNoSessionFailsWithoutRequest(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	for _, src := range []TokenSource{nil, staticToken("")} {
		_, err := NewUsersClient(c.WithSession(src, nil)).List(context.Background())
		require.ErrorIs(t, err, ErrNoSession)
	}
	assert.Zero(t, hits.Load())
}

func TestUnauthorizedTriggersHookOnEveryResource(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
	}))
	ctx := context.Background()

	calls := map[string]func(*Client) error{
		"users.list": func(c *Client) error { _, err := NewUsersClient(c).List(ctx); return err },
		"users.create": func(c *Client) error {
			_, err := NewUsersClient(c).Create(ctx, model.CreateUserRequest{Email: "a@b.c", Password: "x", Role: model.RoleUser})
			return err
		},
		"users.delete":      func(c *Client) error { return NewUsersClient(c).Delete(ctx, "1") },
		"categories.list":   func(c *Client) error { _, err := NewCategoriesClient(c).List(ctx); return err },
		"categories.update": func(c *Client) error { _, err := NewCategoriesClient(c).Update(ctx, "1", model.UpdateCategoryRequest{}); return err },
		"tags.list":         func(c *Client) error { _, err := NewTagsClient(c).List(ctx); return err },
		"tags.create":       func(c *Client) error { _, err := NewTagsClient(c).Create(ctx, model.CreateTagRequest{Name: "go"}); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			var rec hookRecorder
			err := call(c.WithSession(staticToken("abc"), rec.fn))

			require.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, 401, StatusCode(err))
			assert.Equal(t, int32(1), rec.calls.Load())
			assert.Equal(t, "abc", rec.token.Load())
		})
	}
}

func TestOtherErrorsDoNotTriggerHook(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "admin only"})
	}))

	var rec hookRecorder
	_, err := NewCategoriesClient(c.WithSession(staticToken("abc"), rec.fn)).List(context.Background())

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.StatusCode)
	assert.Equal(t, "admin only", he.Message)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, rec.calls.Load())
}

func TestAuthCallsNeverTriggerHook(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	var rec hookRecorder
	auth := NewAuthClient(c.WithSession(staticToken("abc"), rec.fn))
	ctx := context.Background()

	_, err := auth.Login(ctx, "a@b.c", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = auth.Me(ctx, "abc")
	require.ErrorIs(t, err, ErrUnauthorized)
	err = auth.Logout(ctx, "abc")
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Zero(t, rec.calls.Load())
}

func TestLogin(t *testing.T) {
	var body model.LoginRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "abc",
			"user":  map[string]string{"id": "u1", "email": "admin@example.com", "role": "admin"},
		})
	}))

	res, err := NewAuthClient(c).Login(context.Background(), "admin@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.LoginRequest{Email: "admin@example.com", Password: "pw"}, body)
	assert.Equal(t, "abc", res.Token)
	assert.Equal(t, model.User{ID: "u1", Email: "admin@example.com", Role: model.RoleAdmin}, res.User)
}

func TestLoginWithoutToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"id": "u1"}})
	}))
	_, err := NewAuthClient(c).Login(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
}

func TestMeAcceptsEitherKeyCase(t *testing.T) {
	bodies := map[string]string{
		"capitalized": `{"ID":"u1","Email":"e@x.io","Role":"user","CreatedAt":"2024-01-01","PasswordHash":"$2a$..."}`,
		"lower":       `{"id":"u1","email":"e@x.io","role":"user","createdAt":"2024-01-01"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				io.WriteString(w, body)
			}))
			u, err := NewAuthClient(c).Me(context.Background(), "tok")
			require.NoError(t, err)
			assert.Equal(t, model.User{ID: "u1", Email: "e@x.io", Role: model.RoleUser, CreatedAt: "2024-01-01"}, u)
		})
	}
}

func TestUsersMapping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `[{"ID":"1","Email":"a@x.io","Role":"admin","CreatedAt":"t1","PasswordHash":"h"},
				{"ID":"2","Email":"b@x.io","Role":"user","CreatedAt":"t2","PasswordHash":"h"}]`)
		case http.MethodPut:
			assert.Equal(t, "/api/users/2", r.URL.Path)
			var req map[string]any
			json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, map[string]any{"role": "admin"}, req, "nil fields are omitted")
			io.WriteString(w, `{"ID":"2","Email":"b@x.io","Role":"admin","CreatedAt":"t2","PasswordHash":"h"}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	users := NewUsersClient(c.WithSession(staticToken("abc"), nil))
	ctx := context.Background()

	list, err := users.List(ctx)
	require.NoError(t, err)
	want := []model.User{
		{ID: "1", Email: "a@x.io", Role: model.RoleAdmin, CreatedAt: "t1"},
		{ID: "2", Email: "b@x.io", Role: model.RoleUser, CreatedAt: "t2"},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	admin := model.RoleAdmin
	updated, err := users.Update(ctx, "2", model.UpdateUserRequest{Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: "2", Email: "b@x.io", Role: model.RoleAdmin, CreatedAt: "t2"}, updated)

	require.NoError(t, users.Delete(ctx, "2"))
}

func TestCategoriesAndTagsMapping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/categories":
			if r.Method == http.MethodPost {
				io.WriteString(w, `{"ID":"c1","Name":"A","Description":"B","CreatedAt":"t"}`)
				return
			}
			io.WriteString(w, `[{"ID":"c1","Name":"A","Description":"B","CreatedAt":"t"}]`)
		case "/api/tags/t1":
			io.WriteString(w, `{"ID":"t1","Name":"renamed","CreatedAt":"t"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	authed := c.WithSession(staticToken("abc"), nil)
	ctx := context.Background()

	created, err := NewCategoriesClient(authed).Create(ctx, model.CreateCategoryRequest{Name: "A", Description: "B"})
	require.NoError(t, err)
	assert.Equal(t, model.Category{ID: "c1", Name: "A", Description: "B", CreatedAt: "t"}, created)

	cats, err := NewCategoriesClient(authed).List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "A", cats[0].Name)
	assert.Equal(t, "B", cats[0].Description)

	tag, err := NewTagsClient(authed).Update(ctx, "t1", model.UpdateTagRequest{Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, model.Tag{ID: "t1", Name: "renamed", CreatedAt: "t"}, tag)

	_, err = NewTagsClient(authed).Update(ctx, "missing", model.UpdateTagRequest{Name: "x"})
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTagsClient(c.WithSession(staticToken("abc"), nil)).List(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"bad"}`, "bad"},
		{`{"error":"nope"}`, "nope"},
		{`{"error":{"code":"NOT_FOUND","message":"tag missing"}}`, "tag missing"},
		{`plain text`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorMessage([]byte(tt.body)), tt.body)
	}
}

func TestHTTPErrorString(t *testing.T) {
	assert.Equal(t, "HTTP 500: boom", (&HTTPError{StatusCode: 500, Body: "x", Message: "boom"}).Error())
	assert.Equal(t, "HTTP 502: bad gateway", (&HTTPError{StatusCode: 502, Body: "bad gateway"}).Error())
	assert.Equal(t, "HTTP 404 Not Found", (&HTTPError{StatusCode: 404}).Error())
}
