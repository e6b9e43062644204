// syncd runs the content sync engine as a daemon: webhook endpoint, manual
// trigger route, and health check behind one HTTP server.
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

	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	contentsync "github.com/goliatone/go-content-sync"
	pkgconfig "github.com/goliatone/go-content-sync/pkg/config"
)

const shutdownGrace = 10 * time.Second

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := contentsync.DefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), &cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyEnv(&cfg)

	engine, err := contentsync.New(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.DB().Close()

	if err := engine.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Mount("/", engine.Handler())

	server := &http.Server{
		Addr:    cmd.String("addr"),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("syncd listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("syncd shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// applyEnv overlays credentials that belong in the environment rather than
// the config file.
func applyEnv(cfg *contentsync.Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.Webhook.Secret = v
	}
	if v := os.Getenv("STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "syncd",
		Usage:  "Mirror GitHub-hosted articles and settings into a durable content store",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "config/syncd.yaml",
				Sources: cli.EnvVars("SYNCD_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "HTTP listen address",
				Value:   ":8080",
				Sources: cli.EnvVars("SYNCD_ADDR"),
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("syncd failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
