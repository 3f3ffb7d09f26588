package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"

	"github.com/worldscrystal/prediction-api/internal/models"
)

// Projection heuristics: future pick behavior is assumed to mirror the
// historical share, at a flat rate per game. Placeholder estimators with no
// confidence modeling; tune against real data before trusting them.
const (
	picksPerGame         = 10
	expectedCountPerGame = 1.0
)

type pickService struct {
	pg       PgPool
	ch       driver.Conn
	outcome  OutcomeService
	schedule ScheduleService
}

func NewPickService(pg PgPool, ch driver.Conn, outcome OutcomeService, schedule ScheduleService) PickService {
	return &pickService{pg: pg, ch: ch, outcome: outcome, schedule: schedule}
}

// CalculatePickProbabilities maps a question onto a probability distribution
// over its answer set. Unknown question ids are a not-found error; a
// malformed or unsupported configuration yields an empty list, since that is
// a product gap rather than an engine failure.
func (s *pickService) CalculatePickProbabilities(ctx context.Context, questionID int64) ([]models.PickProbability, error) {
	question, err := s.loadQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	switch question.Type {
	case models.QuestionBinary:
		return s.calculateBinary(ctx, question)
	case models.QuestionCategorical:
		return s.calculateCategorical(ctx, question)
	case models.QuestionNumeric:
		return s.calculateNumeric(ctx, question)
	}
	return []models.PickProbability{}, nil
}

// ActiveQuestionIDs lists questions the refresh worker should recompute
func (s *pickService) ActiveQuestionIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pg.Query(ctx, `SELECT id FROM questions WHERE active = true ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active questions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *pickService) loadQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	question := &models.Question{}
	var configJSON []byte
	err := s.pg.QueryRow(ctx, `
		SELECT q.id, q.tournament_id, t.slug, q.type, q.title, COALESCE(q.config, '{}'), q.active
		FROM questions q
		JOIN tournaments t ON t.id = q.tournament_id
		WHERE q.id = $1
	`, questionID).Scan(&question.ID, &question.TournamentID, &question.TournamentSlug,
		&question.Type, &question.Title, &configJSON, &question.Active)
	if err == pgx.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load question %d: %w", questionID, err)
	}

	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &question.Config); err != nil {
			return nil, fmt.Errorf("failed to decode question %d config: %w", questionID, err)
		}
	}
	return question, nil
}

// calculateBinary copies the bracket propagator's champion distribution,
// keyed by team slug, sorted by probability descending.
func (s *pickService) calculateBinary(ctx context.Context, question *models.Question) ([]models.PickProbability, error) {
	if question.Config.AnswerPool != models.AnswerPoolTeamsActive {
		return []models.PickProbability{}, nil
	}

	outcome, err := s.outcome.ComputeTournamentOutcome(ctx, question.TournamentID)
	if err != nil {
		return nil, err
	}
	if len(outcome.TeamWinProb) == 0 {
		return []models.PickProbability{}, nil
	}

	teamIDs := make([]int64, 0, len(outcome.TeamWinProb))
	for teamID := range outcome.TeamWinProb {
		teamIDs = append(teamIDs, teamID)
	}
	slugs, err := s.teamSlugs(ctx, teamIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]models.PickProbability, 0, len(teamIDs))
	for teamID, prob := range outcome.TeamWinProb {
		key, ok := slugs[teamID]
		if !ok {
			key = strconv.FormatInt(teamID, 10)
		}
		entries = append(entries, models.PickProbability{
			AnswerKey:   key,
			Probability: prob,
			Details: map[string]interface{}{
				"teamId":     teamID,
				"questionId": question.ID,
			},
		})
	}
	sortByProbabilityDesc(entries)
	return entries, nil
}

// calculateCategorical projects observed pick shares over the games still to
// be played and normalizes. A zero total weight produces an all-zero
// distribution: "no data yet", not a uniform guess.
func (s *pickService) calculateCategorical(ctx context.Context, question *models.Question) ([]models.PickProbability, error) {
	if question.Config.AnswerPool != models.AnswerPoolChampionsAll {
		return []models.PickProbability{}, nil
	}

	remainingGames, err := s.schedule.RemainingGameCount(ctx, question.TournamentID)
	if err != nil {
		return nil, err
	}

	counts, err := s.championPickCounts(ctx, question.TournamentSlug)
	if err != nil {
		return nil, err
	}

	totalPicks := 0.0
	for _, c := range counts {
		totalPicks += c.Count
	}

	type projected struct {
		key            string
		value          float64
		current        float64
		expectedFuture float64
	}

	rows := make([]projected, 0, len(counts))
	totalValue := 0.0
	for _, c := range counts {
		share := 0.0
		if totalPicks > 0 {
			share = c.Count / totalPicks
		}
		expectedFuture := share * float64(remainingGames) * picksPerGame
		value := c.Count + expectedFuture
		totalValue += value
		rows = append(rows, projected{
			key:            c.ChampionKey,
			value:          value,
			current:        c.Count,
			expectedFuture: expectedFuture,
		})
	}

	entries := make([]models.PickProbability, 0, len(rows))
	for _, row := range rows {
		prob := 0.0
		if totalValue > 0 {
			prob = row.value / totalValue
		}
		entries = append(entries, models.PickProbability{
			AnswerKey:   row.key,
			Probability: prob,
			Details: map[string]interface{}{
				"current":        row.current,
				"expectedFuture": row.expectedFuture,
			},
		})
	}
	sortByProbabilityDesc(entries)
	return entries, nil
}

// calculateNumeric places a flat-rate point estimate into exactly one
// declared bucket. An estimate matching no bucket falls back to a uniform
// spread, so malformed bucket lists never produce an empty or lopsided
// answer silently.
func (s *pickService) calculateNumeric(ctx context.Context, question *models.Question) ([]models.PickProbability, error) {
	buckets := question.Config.Buckets
	if len(buckets) == 0 {
		return []models.PickProbability{}, nil
	}

	schedule, err := s.schedule.GetTournamentSchedule(ctx, question.TournamentID)
	if err != nil {
		return nil, err
	}

	completed := CompletedGameCount(schedule)
	remaining := TotalPotentialGames(schedule)
	estimate := float64(completed+remaining) * expectedCountPerGame

	entries := make([]models.PickProbability, len(buckets))
	matched := -1
	for i, bucket := range buckets {
		entries[i] = models.PickProbability{
			AnswerKey:   bucket,
			Probability: 0,
			Details:     map[string]interface{}{"estimate": estimate},
		}
		if matched < 0 && InBucket(bucket, estimate) {
			matched = i
		}
	}

	if matched >= 0 {
		entries[matched].Probability = 1
	} else {
		share := 1 / float64(len(entries))
		for i := range entries {
			entries[i].Probability = share
		}
	}
	return entries, nil
}

type championPickCount struct {
	ChampionKey string
	Count       float64
}

// championPickCounts aggregates observed champion picks for a tournament
// from the analytics store.
func (s *pickService) championPickCounts(ctx context.Context, tournamentSlug string) ([]championPickCount, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT champion_key, count() AS picks
		FROM game_champ_stats
		WHERE tournament = ?
		GROUP BY champion_key
		ORDER BY picks DESC, champion_key ASC
	`, tournamentSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to query pick counts: %w", err)
	}
	defer rows.Close()

	var counts []championPickCount
	for rows.Next() {
		var key string
		var picks uint64
		if err := rows.Scan(&key, &picks); err != nil {
			return nil, fmt.Errorf("failed to scan pick count: %w", err)
		}
		counts = append(counts, championPickCount{ChampionKey: key, Count: float64(picks)})
	}
	return counts, rows.Err()
}

func (s *pickService) teamSlugs(ctx context.Context, teamIDs []int64) (map[int64]string, error) {
	rows, err := s.pg.Query(ctx, `SELECT id, slug FROM teams WHERE id = ANY($1)`, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load team slugs: %w", err)
	}
	defer rows.Close()

	slugs := make(map[int64]string, len(teamIDs))
	for rows.Next() {
		var id int64
		var slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, fmt.Errorf("failed to scan team slug: %w", err)
		}
		slugs[id] = slug
	}
	return slugs, rows.Err()
}

var bucketPattern = regexp.MustCompile(`^(\d+)(?:-(\d+)|\+)$`)

// InBucket reports whether value falls inside a declared numeric bucket.
// Bounds are inclusive; "N+" is open-ended above N.
func InBucket(bucket string, value float64) bool {
	m := bucketPattern.FindStringSubmatch(bucket)
	if m == nil {
		return false
	}
	low, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	if m[2] == "" {
		return value >= float64(low)
	}
	high, err := strconv.Atoi(m[2])
	if err != nil {
		return false
	}
	return value >= float64(low) && value <= float64(high)
}

// sortByProbabilityDesc orders a distribution highest-first, with answer key
// as a deterministic tiebreak.
func sortByProbabilityDesc(entries []models.PickProbability) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Probability != entries[j].Probability {
			return entries[i].Probability > entries[j].Probability
		}
		return entries[i].AnswerKey < entries[j].AnswerKey
	})
}
