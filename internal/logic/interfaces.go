package logic

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/worldscrystal/prediction-api/internal/models"
)

// Sentinel errors surfaced as not-found by the HTTP layer
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrQuestionNotFound   = errors.New("question not found")
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RedisClient defines the interface for Redis client
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ScheduleService loads the bracket graph and derives game counts from it
type ScheduleService interface {
	GetTournamentSchedule(ctx context.Context, tournamentID int64) (*models.TournamentSchedule, error)
	GetTournamentScheduleBySlug(ctx context.Context, slug string) (*models.TournamentSchedule, error)
	RemainingGameCount(ctx context.Context, tournamentID int64) (int, error)
}

// RatingService reads and writes the append-only Elo history
type RatingService interface {
	GetRating(ctx context.Context, teamID int64) (float64, error)
	GetRatings(ctx context.Context, teamIDs []int64) (map[int64]float64, error)
	SetRating(ctx context.Context, teamID int64, rating float64, source string) error
	RebuildTournamentElo(ctx context.Context, tournamentID int64) (*models.RebuildResult, error)
}

// OutcomeService propagates series win probabilities through the bracket
type OutcomeService interface {
	ComputeTournamentOutcome(ctx context.Context, tournamentID int64) (*models.TournamentOutcome, error)
}

// PickService turns questions into probability distributions
type PickService interface {
	CalculatePickProbabilities(ctx context.Context, questionID int64) ([]models.PickProbability, error)
	ActiveQuestionIDs(ctx context.Context) ([]int64, error)
}

// SnapshotService persists computed distributions and serves the latest batch
type SnapshotService interface {
	SaveSnapshots(ctx context.Context, questionID int64, entries []models.PickProbability) error
	LatestSnapshots(ctx context.Context, questionID int64) ([]models.ProbabilitySnapshot, error)
}
