package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/bilgisen/pubserve/internal/api"
	"github.com/bilgisen/pubserve/internal/assets"
	"github.com/bilgisen/pubserve/internal/config"
	"github.com/bilgisen/pubserve/internal/logger"
	"github.com/bilgisen/pubserve/internal/storage"
)

func main() {
	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.LogPretty,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting pubserve...")

	// Stop on interrupt or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}

	log.Info().Msg("Server exited properly")
}

// run binds the listener, prepares the public root and serves until ctx is
// done. A bind failure is returned before anything else happens.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// Bind first so address problems fail fast
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", cfg.Addr(), err)
	}
	defer ln.Close()

	// Populate the public root from the asset bucket
	if cfg.MirrorEnabled() {
		mirrorAssets(ctx, cfg)
	}

	// Open the public root; it does not change while serving
	store, err := storage.NewStorage(cfg.PublicRoot, cfg.IndexFile)
	if err != nil {
		log.Warn().Err(err).Str("public_root", cfg.PublicRoot).Msg("Public root unavailable, every request will be a 404")
	}
	defer store.Close()

	app := api.NewApp(store)

	// Start server in a goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", ln.Addr().String()).
			Str("public_root", store.BasePath()).
			Msg("Starting server")
		serveErr <- app.Listener(ln)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return errors.New("server stopped unexpectedly")
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	// Create a deadline for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

func mirrorAssets(ctx context.Context, cfg *config.Config) {
	log := logger.Get()

	client, err := assets.NewS3Client(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create asset bucket client, serving what is on disk")
		return
	}

	if _, err := assets.NewMirror(client, cfg.AssetsBucket, cfg.AssetsPrefix).Sync(ctx, cfg.PublicRoot); err != nil {
		log.Error().Err(err).Str("bucket", cfg.AssetsBucket).Msg("Asset mirror failed, serving what is on disk")
	}
}
