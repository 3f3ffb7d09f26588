package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/worldscrystal/prediction-api/internal/models"
)

type snapshotService struct {
	pg       PgPool
	redis    RedisClient
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
}

func NewSnapshotService(pg PgPool, rdb RedisClient, cacheTTL time.Duration, logger *zap.Logger) SnapshotService {
	return &snapshotService{pg: pg, redis: rdb, cacheTTL: cacheTTL, logger: logger.Sugar()}
}

func snapshotCacheKey(questionID int64) string {
	return fmt.Sprintf("snapshots:latest:%d", questionID)
}

// SaveSnapshots persists one computed distribution as a single batch inside
// one transaction, so a question never exposes a half-written batch. The
// latest-batch cache entry is invalidated afterward; a failed invalidation
// only delays freshness by the TTL.
func (s *snapshotService) SaveSnapshots(ctx context.Context, questionID int64, entries []models.PickProbability) error {
	if len(entries) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	asOf := time.Now().UTC()

	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, entry := range entries {
		details, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot details: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO probability_snapshots (question_id, batch_id, answer_key, probability, details, as_of)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, questionID, batchID, entry.AnswerKey, entry.Probability, details, asOf)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshots: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, snapshotCacheKey(questionID)).Err(); err != nil {
			s.logger.Warnw("Failed to invalidate snapshot cache", "question_id", questionID, "error", err)
		}
	}

	return nil
}

// LatestSnapshots returns the most recent batch for a question, highest
// probability first, read through the cache.
func (s *snapshotService) LatestSnapshots(ctx context.Context, questionID int64) ([]models.ProbabilitySnapshot, error) {
	key := snapshotCacheKey(questionID)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var snapshots []models.ProbabilitySnapshot
			if err := json.Unmarshal([]byte(cached), &snapshots); err == nil {
				return snapshots, nil
			}
		} else if err != redis.Nil {
			s.logger.Warnw("Snapshot cache read failed", "question_id", questionID, "error", err)
		}
	}

	rows, err := s.pg.Query(ctx, `
		SELECT id, question_id, batch_id, answer_key, probability, COALESCE(details, '{}'), as_of
		FROM probability_snapshots
		WHERE question_id = $1
		  AND batch_id = (
			SELECT batch_id FROM probability_snapshots
			WHERE question_id = $1
			ORDER BY as_of DESC, id DESC
			LIMIT 1
		  )
		ORDER BY probability DESC, answer_key ASC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.ProbabilitySnapshot
	for rows.Next() {
		var snap models.ProbabilitySnapshot
		var details []byte
		err := rows.Scan(&snap.ID, &snap.QuestionID, &snap.BatchID,
			&snap.AnswerKey, &snap.Probability, &details, &snap.AsOf)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &snap.Details); err != nil {
				return nil, fmt.Errorf("failed to decode snapshot details: %w", err)
			}
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows: %w", err)
	}

	if s.redis != nil && len(snapshots) > 0 {
		if payload, err := json.Marshal(snapshots); err == nil {
			if err := s.redis.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warnw("Snapshot cache write failed", "question_id", questionID, "error", err)
			}
		}
	}

	return snapshots, nil
}
