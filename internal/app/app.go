package app

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

	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/eventix/internal/config"
	"github.com/kirinyoku/eventix/internal/postgres"
	"github.com/kirinyoku/eventix/internal/queue"
	redisx "github.com/kirinyoku/eventix/internal/redis"
	postgresrepo "github.com/kirinyoku/eventix/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/eventix/internal/repository/redis"
	"github.com/kirinyoku/eventix/internal/service"
	"github.com/kirinyoku/eventix/internal/service/events"
	"github.com/kirinyoku/eventix/internal/sweep"
	httpgin "github.com/kirinyoku/eventix/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	publisher  *queue.Publisher
	consumer   *queue.Consumer
	sweeper    *sweep.Sweeper
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	publisher, err := queue.NewPublisher(cfg.AMQP.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize amqp publisher: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, redisx.KeyRateLimit("book"), 10, 1*time.Minute)
	idem := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Initialize services
	services := service.NewServices(store, cache, limiter, idem, publisher, service.Config{
		Events: events.Config{SummaryTTL: 30 * time.Second},
	}, logger)

	consumer := queue.NewConsumer(cfg.AMQP.URL, services.Notification.HandleJob, logger)

	sweeper := sweep.New(sweep.Config{
		StatusInterval:   cfg.Sweep.StatusInterval,
		ReminderInterval: cfg.Sweep.ReminderInterval,
	}, services.Events, services.Notification, logger)

	// Initialize Gin router
	router := httpgin.NewRouter(services, cfg.Auth.JWTSecret, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		publisher: publisher,
		consumer:  consumer,
		sweeper:   sweeper,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Start notification consumer
	g.Go(func() error {
		a.logger.Info("notification consumer starting")
		if err := a.consumer.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	// Start sweep scheduler
	g.Go(func() error {
		return a.sweeper.Run(gCtx)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			return err
		}
		return a.publisher.Close()
	})

	return g.Wait()
}
