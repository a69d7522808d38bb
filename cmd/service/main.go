// cmd/service/main.go
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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github-portfolio-api/internal/api"
	"github-portfolio-api/internal/buildinfo"
	"github-portfolio-api/internal/cache"
	"github-portfolio-api/internal/config"
	"github-portfolio-api/internal/github"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "service",
		Short:        "Serve GitHub repository metadata as a simplified JSON API",
		Version:      buildinfo.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v)
		},
	}
	cmd.SetVersionTemplate(buildinfo.Template())

	flags := cmd.Flags()
	flags.Int("port", 5001, "port to listen on (PORT)")
	flags.Bool("debug", false, "enable debug logging (DEBUG)")
	flags.String("log-level", "info", "log level: debug, info, warn, error (LOG_LEVEL)")
	_ = v.BindPFlag("PORT", flags.Lookup("port"))
	_ = v.BindPFlag("DEBUG", flags.Lookup("debug"))
	_ = v.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully", "port", cfg.Port)

	// 3. Initialize application components
	var upstream api.Upstream
	if cfg.GithubConfigured() {
		ghClient, err := github.NewClient(cfg.GithubToken, cfg.GithubUsername, cfg.UpstreamTimeout, logger).
			WithEnterpriseURLs(cfg.GithubAPIURL, cfg.GithubGraphQLURL)
		if err != nil {
			return fmt.Errorf("failed to create github client: %w", err)
		}
		upstream = ghClient
		logger.Info("GitHub client initialized", "username", ghClient.Username())
	} else {
		logger.Warn("GITHUB_TOKEN and GITHUB_USERNAME must be set in environment variables; upstream routes are disabled")
	}
	listing := cache.NewListing(cfg.CacheTTL, time.Now)
	logger.Info("Repository listing cache ready", "ttl", listing.TTL().String())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(upstream, listing, cfg.CORSAllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. Serve until a shutdown signal arrives
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received. Exiting.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
