package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/adminportal/internal/console"
	"github.com/me/adminportal/internal/ui"
)

func newConsoleCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Start the interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context(), true)
			if a == nil {
				return err
			}
			if err != nil {
				s.logger.Warn("session not verified", "error", err)
			}
			c := console.New(a, console.Options{
				In:  cmd.InOrStdin(),
				Out: cmd.OutOrStdout(),
			})
			return c.Run(cmd.Context())
		},
	}
}

func newServeCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web console",
		Long:  "Serve the admin console in the browser. The server acts for one session shared by all of its visitors, so bind it to a local address.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := s.open(ctx, true)
			if a == nil {
				return err
			}
			if err != nil {
				s.logger.Warn("session not verified", "error", err)
			}

			httpServer := &http.Server{
				Addr:              s.cfg.UI.Listen,
				Handler:           ui.New(a, s.logger, ui.Config{Secure: s.cfg.UI.SecureCookie}).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				s.logger.Info("web console starting", "addr", s.cfg.UI.Listen, "backend", s.cfg.Server)
				fmt.Fprintf(cmd.OutOrStdout(), "Web console on http://%s\n", s.cfg.UI.Listen)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			s.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			s.logger.Info("web console stopped")
			return nil
		},
	}

	cmd.Flags().String("listen", "", "Listen address (default 127.0.0.1:3000)")
	return cmd
}
