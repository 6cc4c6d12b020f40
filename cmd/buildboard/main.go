package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/waabox/buildboard/internal/config"
	"github.com/waabox/buildboard/internal/gateway"
	"github.com/waabox/buildboard/internal/session"
	"github.com/waabox/buildboard/internal/upstream"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:     "buildboard",
		Short:   "Session-guarded web gateway for the Constructum CI API",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", config.DefaultConfigPath(), "path to config file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	godotenv.Load(".env")

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.OAuth.RedirectURL == "" {
		cfg.OAuth.RedirectURL = "http://localhost" + cfg.ListenOrDefault() + "/auth/callback"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	provider, err := session.Discover(ctx, cfg.OAuth.IssuerURL, cfg.OAuth.ClientID, cfg.OAuth.ClientSecret, cfg.OAuth.RedirectURL)
	if err != nil {
		return fmt.Errorf("resolving identity provider: %w", err)
	}

	store := session.NewStore(cfg.SessionTTL())

	mux := http.NewServeMux()
	session.NewHandler(store, provider, logger).Mount(mux)
	gateway.New(store, upstream.NewClient(cfg.Upstream.URL), logger).Mount(mux)

	srv := &http.Server{
		Addr:              cfg.ListenOrDefault(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "upstream", cfg.Upstream.URL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
