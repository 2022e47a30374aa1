// Package console is the interactive front end. Its views are the routes of
// the guard's route table; the prompt always shows the current one.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/me/adminportal/internal/api"
	"github.com/me/adminportal/internal/app"
	"github.com/me/adminportal/internal/guard"
	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/internal/nav"
)

// Options configures a Console.
type Options struct {
	In  io.Reader
	Out io.Writer
	// ReadPassword reads a password without echo. When nil, terminals are
	// read with golang.org/x/term and other inputs line by line.
	ReadPassword func() (string, error)
}

// Console is a read-eval-print loop over one App.
type Console struct {
	app    *app.App
	nav    *nav.Navigator
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger

	readPassword func() (string, error)
}

// New creates a Console. Stdin and stdout are used when In or Out are nil.
func New(a *app.App, opts Options) *Console {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	c := &Console{
		app:    a,
		nav:    a.Navigator(),
		in:     bufio.NewReader(in),
		out:    out,
		logger: logging.Component(a.Logger, "console"),
	}
	c.readPassword = opts.ReadPassword
	if c.readPassword == nil {
		c.readPassword = c.defaultReadPassword(in)
	}
	return c
}

// Run shows the home view and processes commands until exit, EOF or ctx
// is done.
func (c *Console) Run(ctx context.Context) error {
	defer c.nav.Close()

	c.nav.OnChange(func(d guard.Decision) {
		switch d.Outcome {
		case guard.RedirectLogin:
			fmt.Fprintf(c.out, "-> %s (login required)\n", d.Location)
		case guard.RedirectUnauthorized:
			fmt.Fprintf(c.out, "-> %s\n", d.Location)
		}
	})

	fmt.Fprintln(c.out, "adminportal console. Type 'help' for commands.")
	c.open(ctx, "/")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, c.prompt())

		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out)
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if quit := c.exec(ctx, fields[0], fields[1:]); quit {
			fmt.Fprintln(c.out, "Bye!")
			return nil
		}
	}
}

func (c *Console) prompt() string {
	loc := c.nav.Location()
	if email := c.app.Session.Snapshot().Email(); email != "" {
		return fmt.Sprintf("adminportal %s [%s]> ", loc, email)
	}
	return fmt.Sprintf("adminportal %s> ", loc)
}

// exec runs one command and reports whether the console should stop.
func (c *Console) exec(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "help", "?":
		c.help()
	case "where":
		fmt.Fprintln(c.out, c.nav.Location())
	case "go":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "usage: go <path>")
			return false
		}
		c.open(ctx, args[0])
	case "users":
		c.open(ctx, guard.UsersPath)
	case "categories":
		c.open(ctx, guard.CategoriesPath)
	case "tags":
		c.open(ctx, guard.TagsPath)
	case "login":
		c.login(ctx)
	case "logout":
		c.logout(ctx)
	case "whoami":
		c.whoami()
	case "list", "ls", "l":
		c.render(ctx)
	case "create", "add":
		c.create(ctx)
	case "edit":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "usage: edit <id>")
			return false
		}
		c.edit(ctx, args[0])
	case "delete", "rm":
		if len(args) != 1 {
			fmt.Fprintln(c.out, "usage: delete <id>")
			return false
		}
		c.delete(ctx, args[0])
	case "exit", "quit":
		return true
	default:
		fmt.Fprintln(c.out, "Unknown command:", cmd)
	}
	return false
}

func (c *Console) help() {
	if !c.app.Session.Snapshot().IsAuthenticated() {
		fmt.Fprintln(c.out, "Available commands: login, where, help, exit")
		return
	}
	fmt.Fprintln(c.out, `Available commands:
  users | categories | tags   open a view
  go <path>                   open a route, e.g. go /dashboard/tags
  list                        reload the current view
  create                      add a record to the current view
  edit <id>                   change a record in the current view
  delete <id>                 delete a user (users view)
  whoami                      show the logged in account
  logout                      end the session
  where                       show the current route
  exit | quit                 leave the console`)
}

// open navigates to p and renders wherever the guard lands.
func (c *Console) open(ctx context.Context, p string) {
	if _, err := c.nav.Navigate(p); err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	c.render(ctx)
}

func (c *Console) login(ctx context.Context) {
	if snap := c.app.Session.Snapshot(); snap.IsAuthenticated() {
		fmt.Fprintf(c.out, "Already logged in as %s. Use 'logout' first.\n", snap.Email())
		return
	}

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

	u, err := c.app.Login(ctx, email, password)
	if errors.Is(err, api.ErrUnauthorized) {
		fmt.Fprintln(c.out, "Invalid email or password")
		return
	}
	if err != nil {
		c.report(err)
		return
	}
	fmt.Fprintf(c.out, "Logged in as %s (%s).\n", u.Email, u.Role)
	c.nav.AfterLogin()
	c.render(ctx)
}

func (c *Console) logout(ctx context.Context) {
	if !c.app.Session.Snapshot().HasToken() {
		fmt.Fprintln(c.out, "Not logged in.")
		return
	}
	if err := c.app.Session.Logout(ctx); err != nil {
		c.report(err)
		return
	}
	fmt.Fprintln(c.out, "Logged out.")
}

func (c *Console) whoami() {
	snap := c.app.Session.Snapshot()
	if !snap.IsAuthenticated() {
		fmt.Fprintln(c.out, "Not logged in.")
		return
	}
	fmt.Fprintf(c.out, "%s (%s)\n", snap.User.Email, snap.User.Role)
}

// ask prints a prompt and reads one trimmed line.
func (c *Console) ask(prompt string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) askPassword() (string, error) {
	fmt.Fprint(c.out, "Password: ")
	return c.readPassword()
}

func (c *Console) confirm(prompt string) bool {
	answer, err := c.ask(prompt + " [y/N]")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (c *Console) defaultReadPassword(in io.Reader) func() (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return func() (string, error) {
			pw, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(c.out)
			if err != nil {
				return "", err
			}
			return string(pw), nil
		}
	}
	return func() (string, error) {
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
