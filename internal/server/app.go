// Package server initializes and runs the authentication server: it wires
// the storage backends, the challenge store, the auth service and the HTTP
// API, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/zkauth/internal/logging"
	"github.com/dmitrijs2005/zkauth/internal/schnorr"
	"github.com/dmitrijs2005/zkauth/internal/server/auth"
	"github.com/dmitrijs2005/zkauth/internal/server/challenges"
	"github.com/dmitrijs2005/zkauth/internal/server/config"
	"github.com/dmitrijs2005/zkauth/internal/server/events"
	"github.com/dmitrijs2005/zkauth/internal/server/httpapi"
	"github.com/dmitrijs2005/zkauth/internal/server/metrics"
	"github.com/dmitrijs2005/zkauth/internal/server/shared/db"
	"github.com/dmitrijs2005/zkauth/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repoManager db.RepositoryManager
	store       challenges.Store
	sweeper     *challenges.MemoryStore
	dispatcher  *events.Dispatcher
	authService *auth.Service
	metrics     *metrics.Metrics
	redisClient *redis.Client
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	group := schnorr.NewGroup()
	if err := group.Validate(); err != nil {
		// miswired group parameters must never serve requests
		return nil, fmt.Errorf("group parameter validation failed: %w", err)
	}

	app := &App{config: c, logger: logger, metrics: metrics.New()}

	var rm db.RepositoryManager
	if c.DatabaseDSN != "" {
		var err error
		rm, err = db.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no database DSN configured, using in-memory user registry")
		rm = db.NewInMemoryRepositoryManager()
	}
	app.repoManager = rm

	if c.RedisAddr != "" {
		app.redisClient = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		app.store = challenges.NewRedisStore(app.redisClient, c.ChallengeRetention)
	} else {
		ms := challenges.NewMemoryStore(c.ChallengeRetention)
		ms.OnSweep(app.metrics.Swept)
		app.store = ms
		app.sweeper = ms
	}

	app.dispatcher = events.NewDispatcher(events.NewLogSink(logger), 256, logger)

	us := users.NewService(rm.Users(), group, c.MaxUsernameLen)
	app.authService = auth.NewService(us, app.store, group, app.dispatcher, logger,
		c.SecretKey, c.TokenValidityDuration, c.ChallengeTTL, c.OpaqueVerifyErrors)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// healthCheck pings the configured backends.
func (app *App) healthCheck(ctx context.Context) error {
	if err := app.repoManager.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if app.redisClient != nil {
		if err := app.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.authService, app.metrics, app.healthCheck)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := metrics.NewServer(app.config.MetricsAddr, app.metrics, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	if app.sweeper != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.sweeper.Run(ctx, app.config.SweepInterval, app.logger)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.dispatcher.Run(ctx)
	}()

	wg.Wait()

	if err := app.repoManager.Close(); err != nil {
		app.logger.Error(ctx, "closing database failed", "error", err)
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error(ctx, "closing redis failed", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}
