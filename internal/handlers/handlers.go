package handlers

import (
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/worldscrystal/prediction-api/internal/logic"
)

type Config struct {
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	EloConfig  logic.EloConfig
	// Services
	Picks     logic.PickService
	Snapshots logic.SnapshotService
	Outcome   logic.OutcomeService
	Ratings   logic.RatingService
	Schedule  logic.ScheduleService
}

type Handler struct {
	pg        *pgxpool.Pool
	ch        driver.Conn
	redis     *redis.Client
	logger    *zap.SugaredLogger
	validator *validator.Validate
	eloCfg    logic.EloConfig
	picks     logic.PickService
	snapshots logic.SnapshotService
	outcome   logic.OutcomeService
	ratings   logic.RatingService
	schedule  logic.ScheduleService
}

func New(cfg Config) *Handler {
	return &Handler{
		pg:        cfg.Postgres,
		ch:        cfg.ClickHouse,
		redis:     cfg.Redis,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
		eloCfg:    cfg.EloConfig,
		picks:     cfg.Picks,
		snapshots: cfg.Snapshots,
		outcome:   cfg.Outcome,
		ratings:   cfg.Ratings,
		schedule:  cfg.Schedule,
	}
}
