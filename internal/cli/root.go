// Package cli implements the adminportal command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/adminportal/internal/api"
	"github.com/me/adminportal/internal/app"
	"github.com/me/adminportal/internal/config"
	"github.com/me/adminportal/internal/logging"
	"github.com/me/adminportal/internal/output"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// state is shared by the commands of one invocation.
type state struct {
	configPath string
	debug      bool
	output     string

	cfg    config.Config
	logger *slog.Logger
	app    *app.App
}

// NewRootCmd creates the root cobra command for the adminportal CLI.
func NewRootCmd() *cobra.Command {
	s := &state{}

	root := &cobra.Command{
		Use:   "adminportal",
		Short: "Admin console for users, categories and tags",
		Long: "adminportal logs in to the content backend and manages its users, " +
			"categories and tags from the command line, an interactive console or a local web UI.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(s.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if s.debug {
				cfg.Log.Level = "debug"
			}
			format, err := output.ParseFormat(s.output)
			if err != nil {
				return err
			}
			s.cfg = cfg
			s.output = format
			s.logger = logging.New(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Writer: cmd.ErrOrStderr(),
			})
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if s.app == nil {
				return nil
			}
			return s.app.Close()
		},
		SilenceUsage: true,
	}

	d := config.Default()
	pf := root.PersistentFlags()
	pf.StringVar(&s.configPath, "config", "", "Config file (default ~/.adminportal/config.yaml)")
	pf.String("server", d.Server, "Backend URL (or ADMINPORTAL_SERVER env)")
	pf.Duration("timeout", d.Timeout, "HTTP request timeout")
	pf.BoolVar(&s.debug, "debug", false, "Enable debug logging")
	pf.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	pf.String("log-format", d.Log.Format, "Log format (text, json)")
	pf.StringVarP(&s.output, "output", "o", output.FormatTable, "Output format (table, json, yaml)")
	pf.String("storage", d.Storage.Backend, "Token storage backend (file, sqlite, memory)")
	pf.String("store-path", "", "Token storage path (default under ~/.adminportal)")

	root.AddCommand(
		newLoginCmd(s),
		newLogoutCmd(s),
		newWhoamiCmd(s),
		newUsersCmd(s),
		newCategoriesCmd(s),
		newTagsCmd(s),
		newConsoleCmd(s),
		newServeCmd(s),
		newVersionCmd(),
	)

	return root
}

// open builds the App. With restore set, the persisted session is
// resolved against the backend first.
func (s *state) open(ctx context.Context, restore bool) (*app.App, error) {
	a, err := app.New(ctx, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.app = a
	if restore {
		if err := a.Start(ctx); err != nil {
			return a, fmt.Errorf("restore session: %w", err)
		}
	}
	return a, nil
}

// authorize opens the App with its session restored and checks access to
// the view at path.
func (s *state) authorize(ctx context.Context, path string) (*app.App, error) {
	a, err := s.open(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := a.Require(path); err != nil {
		return nil, err
	}
	return a, nil
}

// explain rewrites errors caused by a rejected session.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, api.ErrUnauthorized):
		return errors.New("session expired, please log in again")
	case errors.Is(err, api.ErrNoSession):
		return errors.New("not logged in")
	default:
		return err
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "adminportal %s\n", Version)
		},
	}
}
