package logic

import (
	"context"
	"sort"

	"github.com/worldscrystal/prediction-api/internal/models"
)

type outcomeService struct {
	schedule ScheduleService
	ratings  RatingService
	cfg      EloConfig
}

func NewOutcomeService(schedule ScheduleService, ratings RatingService, cfg EloConfig) OutcomeService {
	return &outcomeService{schedule: schedule, ratings: ratings, cfg: cfg}
}

// ComputeTournamentOutcome resolves, for every series in the bracket, the
// probability distribution over teams that win it, and unions the terminal
// series' distributions into a champion distribution.
//
// A completed series resolves to its recorded winner with probability 1.
// An open series crosses the occupant distributions of its two slots: a
// concrete team is a singleton, an empty slot takes the distribution of the
// next series feeding its winner here (feeders ordered by stage, round,
// index for determinism), and a slot with no feeder leaves a bye, passing
// the other side's distribution through unchanged.
//
// The memo table is keyed by series id and lives only for this call, so
// results never outlive the match data they were computed from. Acyclic
// feed pointers guarantee each series is solved exactly once.
func (s *outcomeService) ComputeTournamentOutcome(ctx context.Context, tournamentID int64) (*models.TournamentOutcome, error) {
	schedule, err := s.schedule.GetTournamentSchedule(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	allSeries := schedule.AllSeries()

	feeders := make(map[int64][]*models.Series)
	for _, series := range allSeries {
		if series.FeedsWinnerTo != 0 {
			feeders[series.FeedsWinnerTo] = append(feeders[series.FeedsWinnerTo], series)
		}
	}
	for _, list := range feeders {
		sort.Slice(list, func(i, j int) bool {
			if list[i].StageOrder != list[j].StageOrder {
				return list[i].StageOrder < list[j].StageOrder
			}
			if list[i].Round != list[j].Round {
				return list[i].Round < list[j].Round
			}
			return list[i].IndexInRound < list[j].IndexInRound
		})
	}

	ratings, err := s.prefetchRatings(ctx, allSeries)
	if err != nil {
		return nil, err
	}

	memo := make(map[int64]map[int64]float64)

	var resolveSeries func(series *models.Series) map[int64]float64
	resolveSeries = func(series *models.Series) map[int64]float64 {
		if dist, ok := memo[series.ID]; ok {
			return dist
		}

		if series.Status == models.StatusCompleted && series.WinnerTeamID != 0 {
			dist := map[int64]float64{series.WinnerTeamID: 1}
			memo[series.ID] = dist
			return dist
		}

		// Feeders fill empty slots in order: the first unclaimed feeder
		// fills blue, the next fills red.
		entrants := append([]*models.Series(nil), feeders[series.ID]...)

		slotDistribution := func(teamID int64) map[int64]float64 {
			if teamID != 0 {
				return map[int64]float64{teamID: 1}
			}
			if len(entrants) == 0 {
				return nil
			}
			feeder := entrants[0]
			entrants = entrants[1:]
			return resolveSeries(feeder)
		}

		blueDist := slotDistribution(series.BlueTeamID)
		redDist := slotDistribution(series.RedTeamID)

		if len(blueDist) == 0 && len(redDist) == 0 {
			memo[series.ID] = map[int64]float64{}
			return memo[series.ID]
		}
		if len(blueDist) == 0 {
			memo[series.ID] = redDist
			return redDist
		}
		if len(redDist) == 0 {
			memo[series.ID] = blueDist
			return blueDist
		}

		outcomes := make(map[int64]float64)
		blueWins, redWins := CountSeriesScore(series)

		for blueTeam, blueProb := range blueDist {
			for redTeam, redProb := range redDist {
				if blueTeam == redTeam {
					continue
				}
				weight := blueProb * redProb
				if weight == 0 {
					continue
				}
				pGame := s.gameWinProbability(ratings, blueTeam, redTeam)
				pBlue := SeriesWinProbability(pGame, series.BestOf, blueWins, redWins)
				outcomes[blueTeam] += weight * pBlue
				outcomes[redTeam] += weight * (1 - pBlue)
			}
		}

		memo[series.ID] = outcomes
		return outcomes
	}

	result := make(map[int64]float64)
	for _, series := range allSeries {
		if series.FeedsWinnerTo != 0 {
			continue
		}
		for teamID, prob := range resolveSeries(series) {
			result[teamID] += prob
		}
	}

	return &models.TournamentOutcome{
		TournamentID: schedule.Tournament.ID,
		TeamWinProb:  result,
	}, nil
}

// prefetchRatings pulls current ratings for every team referenced by the
// bracket in one adapter call.
func (s *outcomeService) prefetchRatings(ctx context.Context, allSeries []*models.Series) (map[int64]float64, error) {
	seen := make(map[int64]bool)
	var teamIDs []int64
	add := func(id int64) {
		if id != 0 && !seen[id] {
			seen[id] = true
			teamIDs = append(teamIDs, id)
		}
	}
	for _, series := range allSeries {
		add(series.BlueTeamID)
		add(series.RedTeamID)
		add(series.WinnerTeamID)
	}
	if len(teamIDs) == 0 {
		return map[int64]float64{}, nil
	}
	return s.ratings.GetRatings(ctx, teamIDs)
}

// gameWinProbability is the per-game probability that blueTeam beats
// redTeam, with the configured side advantage applied to blue.
func (s *outcomeService) gameWinProbability(ratings map[int64]float64, blueTeam, redTeam int64) float64 {
	ratingBlue, ok := ratings[blueTeam]
	if !ok {
		ratingBlue = s.cfg.Base
	}
	ratingRed, ok := ratings[redTeam]
	if !ok {
		ratingRed = s.cfg.Base
	}
	return ExpectedScore(ratingBlue+s.cfg.HomeAdvantage, ratingRed)
}
