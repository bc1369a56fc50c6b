package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/reviewquest/progression/internal/config"
	"github.com/reviewquest/progression/internal/server"
	"github.com/reviewquest/progression/pkg/notify"
	"github.com/reviewquest/progression/pkg/progression"
	"github.com/reviewquest/progression/pkg/store"
)

// App holds all application dependencies and manages the lifecycle.
type App struct {
	cfg               *config.Config
	httpServer        *server.HTTPServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	hub               *notify.Hub
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes the application. Components are initialized
// in dependency order: Redis, catalog, store, engine, notification hub,
// servers, telemetry.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	if err := app.initRedis(ctx); err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	snapshotStore := store.NewRedisStore(app.redisClient, store.RedisStoreConfig{
		TTL: time.Duration(cfg.SnapshotTTLDays) * 24 * time.Hour,
	})

	engine := progression.NewEngine(snapshotStore, catalog, progression.EngineConfig{
		MaxAttempts:    cfg.AwardMaxAttempts,
		InitialBackoff: time.Duration(cfg.AwardBackoffMs) * time.Millisecond,
	})

	app.hub = notify.NewHub(time.Duration(cfg.CoalesceWindowMs) * time.Millisecond)

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, engine, app.hub, snapshotStore)
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup http server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, cfg.ZipkinEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")
	return app, nil
}

// loadCatalog loads the achievement catalog from the configured path,
// falling back to the compiled-in defaults when the file does not exist.
func loadCatalog(path string) (*progression.Catalog, error) {
	catalog, err := progression.LoadCatalog(path)
	if err == nil {
		return catalog, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("catalog file %s not found, using built-in catalog", path)
		return progression.DefaultCatalog(), nil
	}
	return nil, fmt.Errorf("failed to load catalog: %w", err)
}

// initRedis initializes the Redis client, retrying the initial ping with
// exponential backoff.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	maxRetries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		maxRetries,
	)
	if err != nil {
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}
