package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/opquiz/meteor-crash/internal/battle"
	battlequeue "github.com/opquiz/meteor-crash/internal/battle/queue"
	"github.com/opquiz/meteor-crash/internal/config"
	"github.com/opquiz/meteor-crash/internal/logging"
	"github.com/opquiz/meteor-crash/internal/question"
	"github.com/opquiz/meteor-crash/internal/server"
	ws "github.com/opquiz/meteor-crash/pkg/http/ws"
)

// Application aggregates shared infrastructure (cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Redis and the battle engine.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	questionClient := question.NewClient(cfg.Question.SourceURL, nil)
	questionCache := question.NewCache(redisClient, cfg.Question.CacheTTL)
	questionSvc := question.NewService(questionClient, questionCache, cfg.Question.BatchSize)

	wsHub := ws.NewHub(logger)
	registry := battle.NewRegistry()
	metrics := battle.NewMetrics(prometheus.DefaultRegisterer)
	queueMgr := battlequeue.NewManager(logger)

	battleSvc := battle.NewService(
		questionSvc,
		registry,
		wsHub,
		metrics,
		battle.ServiceOptions{
			Mode:         cfg.Question.Mode,
			FetchTimeout: cfg.Question.FetchTimeout,
		},
		logger,
	)

	battleHandler := battle.NewHandler(battleSvc, queueMgr, registry, wsHub, metrics, logger)

	apiServer := server.NewHTTPServer(cfg, logger, redisClient, battleHandler.HandleWebSocket)

	return &Application{
		cfg:    cfg,
		logger: logger,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
