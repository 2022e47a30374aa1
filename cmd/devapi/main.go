// Command devapi runs an in-memory content backend for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/adminportal/internal/devapi"
	"github.com/me/adminportal/internal/logging"
)

func main() {
	cfg := devapi.DefaultConfig()

	addr := flag.String("addr", ":8080", "Listen address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "Log format (text, json)")
	flag.StringVar(&cfg.AdminEmail, "admin-email", cfg.AdminEmail, "Seed admin email")
	flag.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Seed admin password")
	secret := flag.String("secret", os.Getenv("DEVAPI_SECRET"), "Token signing secret (random when empty)")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Token lifetime")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	if *debug {
		*logLevel = "debug"
	}
	cfg.Secret = []byte(*secret)
	logger := logging.New(logging.Options{Level: *logLevel, Format: *logFormat})

	srv, err := devapi.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devapi: %v\n", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("devapi starting", "addr", *addr, "admin", cfg.AdminEmail)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
