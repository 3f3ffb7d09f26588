package logic

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/worldscrystal/prediction-api/internal/models"
)

type ratingService struct {
	pg  PgPool
	cfg EloConfig
}

func NewRatingService(pg PgPool, cfg EloConfig) RatingService {
	return &ratingService{pg: pg, cfg: cfg}
}

// GetRating returns a team's current rating: the most recent history entry,
// or the configured base for unseen teams. First reads seed the history so
// subsequent rebuild deletes have a row to preserve.
func (s *ratingService) GetRating(ctx context.Context, teamID int64) (float64, error) {
	var rating float64
	err := s.pg.QueryRow(ctx, `
		SELECT rating FROM team_ratings
		WHERE team_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, teamID).Scan(&rating)
	if err == pgx.ErrNoRows {
		if err := s.SetRating(ctx, teamID, s.cfg.Base, models.RatingSourceSeed); err != nil {
			return 0, err
		}
		return s.cfg.Base, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rating for team %d: %w", teamID, err)
	}
	return rating, nil
}

// GetRatings returns current ratings for a set of teams in one query.
// Teams with no history fall back to the base rating and get seeded.
func (s *ratingService) GetRatings(ctx context.Context, teamIDs []int64) (map[int64]float64, error) {
	ratings := make(map[int64]float64, len(teamIDs))
	if len(teamIDs) == 0 {
		return ratings, nil
	}

	rows, err := s.pg.Query(ctx, `
		SELECT DISTINCT ON (team_id) team_id, rating
		FROM team_ratings
		WHERE team_id = ANY($1)
		ORDER BY team_id, created_at DESC, id DESC
	`, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var teamID int64
		var rating float64
		if err := rows.Scan(&teamID, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings[teamID] = rating
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rating rows: %w", err)
	}

	for _, teamID := range teamIDs {
		if _, ok := ratings[teamID]; ok {
			continue
		}
		ratings[teamID] = s.cfg.Base
		if err := s.SetRating(ctx, teamID, s.cfg.Base, models.RatingSourceSeed); err != nil {
			return nil, err
		}
	}

	return ratings, nil
}

// SetRating appends one entry to a team's rating history
func (s *ratingService) SetRating(ctx context.Context, teamID int64, rating float64, source string) error {
	_, err := s.pg.Exec(ctx, `
		INSERT INTO team_ratings (team_id, rating, source)
		VALUES ($1, $2, $3)
	`, teamID, rating, source)
	if err != nil {
		return fmt.Errorf("failed to write rating for team %d: %w", teamID, err)
	}
	return nil
}

// RebuildTournamentElo replays every completed match of a tournament in
// strict chronological order (completion time, then start time, then id)
// and rewrites the involved teams' rating histories. Elo updates are
// path-dependent, so the ordering is load-bearing. Prior rebuild-tagged and
// local rows are cleared first, which makes the operation idempotent; seed
// rows survive so team histories never go empty.
func (s *ratingService) RebuildTournamentElo(ctx context.Context, tournamentID int64) (*models.RebuildResult, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT COALESCE(m.blue_team_id, 0), COALESCE(m.red_team_id, 0), COALESCE(m.winner_team_id, 0)
		FROM matches m
		JOIN series s ON s.id = m.series_id
		JOIN stages st ON st.id = s.stage_id
		WHERE st.tournament_id = $1
		  AND m.status = 'completed'
		  AND m.winner_team_id IS NOT NULL
		ORDER BY m.completed_at ASC NULLS LAST, m.started_at ASC NULLS LAST, m.id ASC
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed matches: %w", err)
	}
	defer rows.Close()

	var matches []replayMatch
	for rows.Next() {
		var m replayMatch
		if err := rows.Scan(&m.BlueTeamID, &m.RedTeamID, &m.WinnerTeamID); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match rows: %w", err)
	}

	finalRatings, writes := replayMatches(matches, s.cfg)

	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rebuild transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if len(finalRatings) > 0 {
		teamIDs := make([]int64, 0, len(finalRatings))
		for teamID := range finalRatings {
			teamIDs = append(teamIDs, teamID)
		}
		_, err = tx.Exec(ctx, `
			DELETE FROM team_ratings
			WHERE team_id = ANY($1) AND source = ANY($2)
		`, teamIDs, []string{models.RatingSourceRebuild, models.RatingSourceLocal})
		if err != nil {
			return nil, fmt.Errorf("failed to clear prior rebuild ratings: %w", err)
		}
	}

	for _, w := range writes {
		_, err = tx.Exec(ctx, `
			INSERT INTO team_ratings (team_id, rating, source)
			VALUES ($1, $2, $3)
		`, w.TeamID, w.Rating, models.RatingSourceRebuild)
		if err != nil {
			return nil, fmt.Errorf("failed to write rebuild rating: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit rebuild: %w", err)
	}

	return &models.RebuildResult{
		TeamsUpdated:     len(finalRatings),
		MatchesProcessed: len(matches),
	}, nil
}

type replayMatch struct {
	BlueTeamID   int64
	RedTeamID    int64
	WinnerTeamID int64
}

type ratingWrite struct {
	TeamID int64
	Rating float64
}

// replayMatches folds the Elo update over an ordered match list, starting
// every team at the base rating. Returns the final rating per team and the
// full sequence of history writes, one pair per match.
func replayMatches(matches []replayMatch, cfg EloConfig) (map[int64]float64, []ratingWrite) {
	ratings := make(map[int64]float64)
	var writes []ratingWrite

	current := func(teamID int64) float64 {
		if r, ok := ratings[teamID]; ok {
			return r
		}
		return cfg.Base
	}

	for _, match := range matches {
		if match.BlueTeamID == 0 || match.RedTeamID == 0 || match.WinnerTeamID == 0 {
			continue
		}
		newBlue, newRed := UpdateRatings(
			current(match.BlueTeamID),
			current(match.RedTeamID),
			match.WinnerTeamID == match.BlueTeamID,
			cfg,
		)
		ratings[match.BlueTeamID] = newBlue
		ratings[match.RedTeamID] = newRed
		writes = append(writes,
			ratingWrite{TeamID: match.BlueTeamID, Rating: newBlue},
			ratingWrite{TeamID: match.RedTeamID, Rating: newRed},
		)
	}

	return ratings, writes
}
