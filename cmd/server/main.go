// Command server runs the MyDuka web front-end: session cookies, role-gated
// navigation and the dashboard shell in front of the MyDuka backend API.
//
// @title        MyDuka web API
// @version      1.0
// @description  Session, navigation and dashboard endpoints of the MyDuka web front-end.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/myduka/web-frontend/internal/api"
	"github.com/myduka/web-frontend/internal/api/middleware"
	"github.com/myduka/web-frontend/internal/core/ports"
	"github.com/myduka/web-frontend/internal/core/service"
	"github.com/myduka/web-frontend/internal/infrastructure/backend"
	"github.com/myduka/web-frontend/internal/infrastructure/db/memory"
	mongostore "github.com/myduka/web-frontend/internal/infrastructure/db/mongo"
	redisstore "github.com/myduka/web-frontend/internal/infrastructure/db/redis"
	"github.com/myduka/web-frontend/internal/pkg/config"
	"github.com/myduka/web-frontend/pkg/logger"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "myduka-web",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("session storage unavailable")
	}

	client := backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, log.With().Str("component", "backend").Logger())

	registry := service.NewRegistry(client, storage, log.With().Str("component", "session").Logger())
	go registry.RunSweeper(ctx, sweepInterval, cfg.Session.IdleTTL)

	gate := service.NewGate()
	dashboard := service.NewDashboardService(client, log.With().Str("component", "dashboard").Logger())

	e := api.NewRouter(api.Deps{
		Session: middleware.SessionConfig{
			Secret: cfg.Session.Secret,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.CookieSecure,
		},
		Registry:      registry,
		Gate:          gate,
		Dashboard:     dashboard,
		Storage:       storage,
		Backend:       client,
		AuthRateLimit: cfg.RateLimit.AuthPerSecond,
		AuthRateBurst: cfg.RateLimit.AuthBurst,
		Log:           log,
	})

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("storage", storage.Name()).
			Str("backend", cfg.Backend.URL).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := closeStorage(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("storage shutdown")
	}
}

// openStorage connects the configured durable storage for session slots.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.StorageProvider, func(context.Context) error, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "myduka-web",
		})
		if err != nil {
			return nil, nil, err
		}
		store, err := mongostore.NewIdentityStore(ctx, db, cfg.Session.TTL)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return store, client.Disconnect, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory session storage; sessions are lost on restart")
		return memory.NewIdentityStore(), func(context.Context) error { return nil }, nil

	default:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		store := redisstore.NewIdentityStore(client, cfg.Redis.KeyPrefix, cfg.Session.TTL)
		return store, func(context.Context) error { return client.Close() }, nil
	}
}
