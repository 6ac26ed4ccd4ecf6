package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kudos/internal/config"
	"kudos/internal/db"
	"kudos/internal/server"
	"kudos/internal/store"
	"kudos/internal/upload"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kudos",
		Short:         "Kudos feed and avatar upload service",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running the bare binary serves, which is what the container does.
		RunE: runServe,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE:  runMigrate,
	})
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newLogger writes console output in development and JSON otherwise.
// Unknown levels fall back to info.
func newLogger(env, level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "kudos").Logger()
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env, cfg.LogLevel, os.Stdout)

	conn, err := db.OpenDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	logger.Info().Msg("running migrations")
	if err := db.RunMigrations(conn); err != nil {
		return err
	}
	version, dirty, err := db.SchemaVersion(conn)
	if err != nil {
		return err
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations complete")
	return nil
}

// openStore returns the Postgres store, wrapped in the Redis cache when
// REDIS_URL is set. Development without DATABASE_URL gets an empty
// in-memory store. The returned func releases connections.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		if !cfg.IsDevelopment() {
			return nil, nil, errors.New("DATABASE_URL is required outside development")
		}
		logger.Warn().Msg("DATABASE_URL not set, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}

	conn, err := db.OpenDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}

	logger.Info().Msg("running migrations")
	if err := db.RunMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	logger.Info().Msg("migrations complete")

	var st store.Store = store.NewPostgres(conn)
	closers := []func(){func() { _ = conn.Close() }}

	if cfg.RedisURL != "" {
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		st = store.NewCached(st, client, logger)
		logger.Info().Msg("connected to Redis")
	}

	return st, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env, cfg.LogLevel, os.Stdout)
	build := server.BuildInfo{Version: cfg.Version, Commit: cfg.Commit}

	shutdownTracing, err := server.InitTracing(ctx, cfg.OTLPEndpoint, cfg.Env, build)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	objects, err := upload.NewMinioStore(ctx, cfg.Minio())
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}
	logger.Info().Str("bucket", objects.Bucket()).Msg("object storage ready")

	srv := server.New(server.Config{
		Addr:           cfg.Addr,
		Build:          build,
		Logger:         logger,
		Store:          st,
		Relay:          upload.NewRelay(upload.NewBreaker(objects, 5, 30*time.Second, logger)),
		Objects:        objects,
		IdentityHeader: cfg.IdentityHeader,
		MaxUploadBytes: cfg.MaxUploadBytes,
		UploadRate:     cfg.UploadRate,
		CORSOrigins:    cfg.CORSOrigins,
		TrustProxy:     cfg.TrustProxy,
	})

	// Start the HTTP server in a background goroutine so we can wait for
	// either a signal or a server failure.
	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("env", cfg.Env).
			Str("version", build.Version).
			Str("commit", build.Commit).
			Msg("starting")
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info().Msg("shutdown complete")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
