package console

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/adminportal/internal/app"
	"github.com/me/adminportal/internal/config"
	"github.com/me/adminportal/internal/devapi"
	"github.com/me/adminportal/internal/guard"
	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/internal/tokenstore"
	"github.com/me/adminportal/pkg/model"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newApp(t *testing.T, opts ...devapi.Option) (*app.App, *devapi.Server) {
	t.Helper()
	backend, err := devapi.New(devapi.TestConfig(), logging.Discard(), opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.Server = ts.URL
	cfg.Storage.Backend = tokenstore.BackendMemory
	a, err := app.New(context.Background(), cfg, logging.Discard(), app.WithTokenStore(tokenstore.NewMemoryStore()))
	require.NoError(t, err)
	return a, backend
}

// run feeds script to a fresh console and returns everything it printed.
func run(t *testing.T, a *app.App, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(a, Options{In: strings.NewReader(strings.Join(script, "\n") + "\n"), Out: &out})
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestLoginFlow(t *testing.T) {
	a, _ := newApp(t)

	out := run(t, a,
		"help",
		"login", "admin@example.com", "wrong",
		"login", "admin@example.com", "admin",
		"whoami",
		"exit",
	)

	assert.Contains(t, out, "Please log in with 'login'.")
	assert.Contains(t, out, "Available commands: login, where, help, exit")
	assert.Contains(t, out, "Invalid email or password")
	assert.Contains(t, out, "Logged in as admin@example.com (admin).")
	assert.Contains(t, out, "== Users ==", "login returns to the view that asked for it")
	assert.Contains(t, out, "admin@example.com (admin)\n")
	assert.True(t, strings.HasSuffix(out, "Bye!\n"))
}

func TestTagViews(t *testing.T) {
	a, _ := newApp(t)
	_, err := a.Login(context.Background(), "admin@example.com", "admin")
	require.NoError(t, err)

	out := run(t, a,
		"tags",
		"create", "   ",
		"create", "go",
		"where",
	)

	assert.Contains(t, out, "No tags found.")
	assert.Contains(t, out, "name must not be blank")
	assert.Contains(t, out, "Created tag go")
	assert.Contains(t, out, guard.TagsPath+"\n")

	tags, err := a.Tags.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "go", tags[0].Name)
}

func TestCategoryCreateAndEdit(t *testing.T) {
	a, _ := newApp(t)
	ctx := context.Background()
	_, err := a.Login(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	cat, err := a.CreateCategory(ctx, model.CreateCategoryRequest{Name: "A", Description: "B"})
	require.NoError(t, err)

	out := run(t, a,
		"categories",
		"edit "+cat.ID, "", "C",
		"exit",
	)
	assert.Contains(t, out, "== Categories ==")
	assert.Contains(t, out, "Category updated.")

	cats, err := a.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "A", cats[0].Name)
	assert.Equal(t, "C", cats[0].Description)
}

func TestDeleteUserNeedsConfirmation(t *testing.T) {
	a, backend := newApp(t)
	ctx := context.Background()
	id, err := backend.AddUser("victim@example.com", "pw", model.RoleUser)
	require.NoError(t, err)
	_, err = a.Login(ctx, "admin@example.com", "admin")
	require.NoError(t, err)

	out := run(t, a,
		"users",
		"delete "+id, "n",
		"delete "+id, "y",
		"exit",
	)
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, out, "User deleted.")

	users, err := a.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestNonAdminIsTurnedAway(t *testing.T) {
	a, backend := newApp(t)
	_, err := backend.AddUser("user@example.com", "pw", model.RoleUser)
	require.NoError(t, err)
	_, err = a.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)

	out := run(t, a, "tags", "where", "exit")
	assert.Contains(t, out, "-> /unauthorized")
	assert.Contains(t, out, "You do not have permission to view this page.")
	assert.Contains(t, out, guard.UnauthorizedPath+"\n")
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	clk := &clock{t: time.Now()}
	a, _ := newApp(t, devapi.WithClock(clk.Now))
	_, err := a.Login(context.Background(), "admin@example.com", "admin")
	require.NoError(t, err)

	var out bytes.Buffer
	in := &scriptReader{lines: []string{"tags", "list", "where", "exit"}, before: map[int]func(){
		1: func() { clk.Advance(2 * time.Hour) },
	}}
	c := New(a, Options{In: in, Out: &out})
	require.NoError(t, c.Run(context.Background()))

	assert.Contains(t, out.String(), "Session expired. Please log in again.")
	assert.Contains(t, out.String(), "-> /login (login required)")
	assert.Contains(t, out.String(), guard.LoginPath+"\n")
	assert.Equal(t, model.Session{}, a.Session.Snapshot())
}

func TestUnknownCommandAndRoute(t *testing.T) {
	a, _ := newApp(t)
	out := run(t, a, "frobnicate", "go /settings", "go")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Contains(t, out, "unknown route: /settings")
	assert.Contains(t, out, "usage: go <path>")
}

// scriptReader yields one line per Read and runs a hook before line i.
type scriptReader struct {
	lines  []string
	before map[int]func()
	i      int
}

func (r *scriptReader) Read(p []byte) (int, error) {
	if r.i >= len(r.lines) {
		return 0, io.EOF
	}
	if fn := r.before[r.i]; fn != nil {
		fn()
	}
	n := copy(p, r.lines[r.i]+"\n")
	r.i++
	return n, nil
}
