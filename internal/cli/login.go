package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/me/adminportal/internal/api"
	"github.com/me/adminportal/internal/output"
	"github.com/me/adminportal/internal/session"
)

func newLoginCmd(s *state) *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the backend",
		Long:  "Authenticate with email and password and store the session token for later commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if email == "" {
				fmt.Fprint(out, "Email: ")
				line, err := readLine(in)
				if err != nil {
					return fmt.Errorf("read email: %w", err)
				}
				email = line
			}

			var password string
			var err error
			if passwordStdin {
				password, err = readLine(in)
			} else {
				fmt.Fprint(out, "Password: ")
				password, err = readPassword(cmd.InOrStdin(), in)
				fmt.Fprintln(out)
			}
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			a, err := s.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			user, err := a.Login(cmd.Context(), email, password)
			if errors.Is(err, api.ErrUnauthorized) {
				return errors.New("invalid email or password")
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Logged in as %s (%s)\n", user.Email, user.Role)
			if !user.IsAdmin() {
				fmt.Fprintln(out, "This account is not an admin; management commands are unavailable.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLogoutCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context(), true)
			if a == nil {
				return err
			}
			if err != nil {
				// The token is still held; log out anyway.
				s.logger.Warn("session not verified", "error", err)
			}
			if !a.Session.Snapshot().HasToken() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			if err := a.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			user, err := a.Session.Current()
			if errors.Is(err, session.ErrNotAuthenticated) {
				return errors.New("not logged in")
			}
			if err != nil {
				return err
			}
			if s.output == output.FormatTable {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Email, user.Role)
				return nil
			}
			return output.Write(cmd.OutOrStdout(), s.output, user)
		},
	}
}

// readLine reads one line without its terminator. A final line without a
// newline is accepted.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo when src is a terminal.
func readPassword(src io.Reader, buffered *bufio.Reader) (string, error) {
	if f, ok := src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return readLine(buffered)
}
