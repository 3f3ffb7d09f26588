package logic

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/worldscrystal/prediction-api/internal/models"
)

type scheduleService struct {
	pg PgPool
}

func NewScheduleService(pg PgPool) ScheduleService {
	return &scheduleService{pg: pg}
}

// GetTournamentSchedule loads the full bracket graph for a tournament:
// stages in order, series in (round, index) order, matches in game order.
func (s *scheduleService) GetTournamentSchedule(ctx context.Context, tournamentID int64) (*models.TournamentSchedule, error) {
	return s.loadSchedule(ctx, "id = $1", tournamentID)
}

func (s *scheduleService) GetTournamentScheduleBySlug(ctx context.Context, slug string) (*models.TournamentSchedule, error) {
	return s.loadSchedule(ctx, "slug = $1", slug)
}

func (s *scheduleService) loadSchedule(ctx context.Context, where string, arg any) (*models.TournamentSchedule, error) {
	schedule := &models.TournamentSchedule{}

	err := s.pg.QueryRow(ctx,
		"SELECT id, slug, name FROM tournaments WHERE "+where, arg,
	).Scan(&schedule.Tournament.ID, &schedule.Tournament.Slug, &schedule.Tournament.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	stageRows, err := s.pg.Query(ctx, `
		SELECT id, tournament_id, name, stage_order
		FROM stages
		WHERE tournament_id = $1
		ORDER BY stage_order ASC
	`, schedule.Tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages: %w", err)
	}
	defer stageRows.Close()

	stageIndex := make(map[int64]int)
	for stageRows.Next() {
		var st models.Stage
		if err := stageRows.Scan(&st.ID, &st.TournamentID, &st.Name, &st.Order); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stageIndex[st.ID] = len(schedule.Stages)
		schedule.Stages = append(schedule.Stages, st)
	}
	if err := stageRows.Err(); err != nil {
		return nil, fmt.Errorf("stage rows: %w", err)
	}

	seriesRows, err := s.pg.Query(ctx, `
		SELECT s.id, s.stage_id, st.stage_order, s.round, s.index_in_round, s.best_of, s.status,
		       COALESCE(s.blue_team_id, 0), COALESCE(s.red_team_id, 0), COALESCE(s.winner_team_id, 0),
		       COALESCE(s.feeds_winner_to_id, 0), COALESCE(s.feeds_loser_to_id, 0)
		FROM series s
		JOIN stages st ON st.id = s.stage_id
		WHERE st.tournament_id = $1
		ORDER BY st.stage_order ASC, s.round ASC, s.index_in_round ASC
	`, schedule.Tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	defer seriesRows.Close()

	seriesIndex := make(map[int64][2]int) // series id -> (stage idx, series idx)
	var seriesIDs []int64
	for seriesRows.Next() {
		var sr models.Series
		err := seriesRows.Scan(&sr.ID, &sr.StageID, &sr.StageOrder, &sr.Round, &sr.IndexInRound,
			&sr.BestOf, &sr.Status, &sr.BlueTeamID, &sr.RedTeamID, &sr.WinnerTeamID,
			&sr.FeedsWinnerTo, &sr.FeedsLoserTo)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		si, ok := stageIndex[sr.StageID]
		if !ok {
			continue
		}
		seriesIndex[sr.ID] = [2]int{si, len(schedule.Stages[si].Series)}
		schedule.Stages[si].Series = append(schedule.Stages[si].Series, sr)
		seriesIDs = append(seriesIDs, sr.ID)
	}
	if err := seriesRows.Err(); err != nil {
		return nil, fmt.Errorf("series rows: %w", err)
	}

	if len(seriesIDs) == 0 {
		return schedule, nil
	}

	matchRows, err := s.pg.Query(ctx, `
		SELECT id, series_id, game_index, status,
		       COALESCE(blue_team_id, 0), COALESCE(red_team_id, 0), COALESCE(winner_team_id, 0),
		       started_at, completed_at
		FROM matches
		WHERE series_id = ANY($1)
		ORDER BY series_id ASC, game_index ASC
	`, seriesIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	defer matchRows.Close()

	for matchRows.Next() {
		var m models.Match
		err := matchRows.Scan(&m.ID, &m.SeriesID, &m.GameIndex, &m.Status,
			&m.BlueTeamID, &m.RedTeamID, &m.WinnerTeamID, &m.StartedAt, &m.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		loc, ok := seriesIndex[m.SeriesID]
		if !ok {
			continue
		}
		sr := &schedule.Stages[loc[0]].Series[loc[1]]
		sr.Matches = append(sr.Matches, m)
	}
	if err := matchRows.Err(); err != nil {
		return nil, fmt.Errorf("match rows: %w", err)
	}

	return schedule, nil
}

// RemainingGameCount returns the number of games that could still be played
// across every unresolved series of the tournament.
func (s *scheduleService) RemainingGameCount(ctx context.Context, tournamentID int64) (int, error) {
	schedule, err := s.GetTournamentSchedule(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	return TotalPotentialGames(schedule), nil
}

// CountSeriesScore tallies completed games won by each slot of a series.
// Games won by a team occupying neither slot are ignored.
func CountSeriesScore(series *models.Series) (blueWins, redWins int) {
	for _, match := range series.Matches {
		if match.Status != models.StatusCompleted || match.WinnerTeamID == 0 {
			continue
		}
		switch match.WinnerTeamID {
		case series.BlueTeamID:
			blueWins++
		case series.RedTeamID:
			redWins++
		}
	}
	return blueWins, redWins
}

// RemainingGamesInSeries returns how many scheduled games are left assuming
// the series runs its full length.
func RemainingGamesInSeries(series *models.Series) int {
	played := 0
	for _, match := range series.Matches {
		if match.Status == models.StatusCompleted {
			played++
		}
	}
	if remaining := series.BestOf - played; remaining > 0 {
		return remaining
	}
	return 0
}

// PotentialUpcomingGames returns the uncompleted matches of a series that
// could still be played before one side reaches the majority threshold.
func PotentialUpcomingGames(series *models.Series) []models.Match {
	blueWins, redWins := CountSeriesScore(series)
	need := GamesNeededToWin(series.BestOf)
	if blueWins >= need || redWins >= need {
		return nil
	}

	remainingSlots := need*2 - (blueWins + redWins)
	if remainingSlots < 0 {
		remainingSlots = 0
	}

	var upcoming []models.Match
	for _, match := range series.Matches {
		if match.Status != models.StatusCompleted {
			upcoming = append(upcoming, match)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].GameIndex < upcoming[j].GameIndex
	})
	if len(upcoming) > remainingSlots {
		upcoming = upcoming[:remainingSlots]
	}
	return upcoming
}

// TotalPotentialGames sums potential upcoming games across the whole bracket
func TotalPotentialGames(schedule *models.TournamentSchedule) int {
	total := 0
	for _, series := range schedule.AllSeries() {
		total += len(PotentialUpcomingGames(series))
	}
	return total
}

// CompletedGameCount counts completed matches across the whole bracket
func CompletedGameCount(schedule *models.TournamentSchedule) int {
	total := 0
	for _, series := range schedule.AllSeries() {
		for _, match := range series.Matches {
			if match.Status == models.StatusCompleted {
				total++
			}
		}
	}
	return total
}
