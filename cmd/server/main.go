package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/worldscrystal/prediction-api/internal/config"
	"github.com/worldscrystal/prediction-api/internal/handlers"
	"github.com/worldscrystal/prediction-api/internal/logic"
	"github.com/worldscrystal/prediction-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pg.Close()

	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("failed to parse clickhouse url: %w", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	defer ch.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	eloCfg := logic.EloConfig{
		K:             cfg.EloK,
		HomeAdvantage: cfg.EloHomeAdvantage,
		Base:          cfg.EloBase,
	}

	scheduleSvc := logic.NewScheduleService(pg)
	ratingSvc := logic.NewRatingService(pg, eloCfg)
	outcomeSvc := logic.NewOutcomeService(scheduleSvc, ratingSvc, eloCfg)
	pickSvc := logic.NewPickService(pg, ch, outcomeSvc, scheduleSvc)
	snapshotSvc := logic.NewSnapshotService(pg, rdb, cfg.SnapshotCacheTTL, logger)

	refresher := worker.NewRefresher(worker.RefresherConfig{
		Interval:  cfg.RefreshInterval,
		Workers:   cfg.RefreshWorkers,
		Picks:     pickSvc,
		Snapshots: snapshotSvc,
		Logger:    logger,
	})
	refresher.Start(ctx)
	defer refresher.Stop()

	h := handlers.New(handlers.Config{
		Postgres:   pg,
		ClickHouse: ch,
		Redis:      rdb,
		Logger:     logger,
		EloConfig:  eloCfg,
		Picks:      pickSvc,
		Snapshots:  snapshotSvc,
		Outcome:    outcomeSvc,
		Ratings:    ratingSvc,
		Schedule:   scheduleSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Prediction API listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
