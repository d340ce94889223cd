package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sendloop/sendloop/internal/auth"
	"github.com/sendloop/sendloop/internal/billing"
	"github.com/sendloop/sendloop/internal/config"
	"github.com/sendloop/sendloop/internal/metrics"
	"github.com/sendloop/sendloop/internal/secrets"
	"github.com/sendloop/sendloop/internal/server"
	"github.com/sendloop/sendloop/internal/store/postgres"
	redisstore "github.com/sendloop/sendloop/internal/store/redis"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	// Initialize structured logging from environment.
	logLevel := os.Getenv("SENDLOOP_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("SENDLOOP_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis for the limit-snapshot cache.
	cache, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer cache.Close()

	// Vault for WABA access tokens.
	vault, err := secrets.NewVault(cfg.VaultKey())
	if err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	// Services.
	authSvc := auth.NewService(store.Users(), cfg.Session.Secret, cfg.Session.TTL)
	limits := billing.NewService(store.Companies(), store.Users(), store.Workflows(), cache, cfg.Redis.SnapshotTTL)
	gateway := whatsapp.NewClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.Timeout)
	m := metrics.New()

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, authSvc, limits, gateway, vault, m)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
