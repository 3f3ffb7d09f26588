package handlers

import (
	"context"

	"github.com/worldscrystal/prediction-api/internal/models"
)

// MockPickService
type MockPickService struct {
	CalculatePickProbabilitiesFunc func(ctx context.Context, questionID int64) ([]models.PickProbability, error)
	ActiveQuestionIDsFunc          func(ctx context.Context) ([]int64, error)
}

func (m *MockPickService) CalculatePickProbabilities(ctx context.Context, questionID int64) ([]models.PickProbability, error) {
	if m.CalculatePickProbabilitiesFunc != nil {
		return m.CalculatePickProbabilitiesFunc(ctx, questionID)
	}
	return nil, nil
}

func (m *MockPickService) ActiveQuestionIDs(ctx context.Context) ([]int64, error) {
	if m.ActiveQuestionIDsFunc != nil {
		return m.ActiveQuestionIDsFunc(ctx)
	}
	return nil, nil
}

// MockSnapshotService
type MockSnapshotService struct {
	SaveSnapshotsFunc   func(ctx context.Context, questionID int64, entries []models.PickProbability) error
	LatestSnapshotsFunc func(ctx context.Context, questionID int64) ([]models.ProbabilitySnapshot, error)
	SaveCalls           int
}

func (m *MockSnapshotService) SaveSnapshots(ctx context.Context, questionID int64, entries []models.PickProbability) error {
	m.SaveCalls++
	if m.SaveSnapshotsFunc != nil {
		return m.SaveSnapshotsFunc(ctx, questionID, entries)
	}
	return nil
}

func (m *MockSnapshotService) LatestSnapshots(ctx context.Context, questionID int64) ([]models.ProbabilitySnapshot, error) {
	if m.LatestSnapshotsFunc != nil {
		return m.LatestSnapshotsFunc(ctx, questionID)
	}
	return nil, nil
}

// MockOutcomeService
type MockOutcomeService struct {
	ComputeTournamentOutcomeFunc func(ctx context.Context, tournamentID int64) (*models.TournamentOutcome, error)
}

func (m *MockOutcomeService) ComputeTournamentOutcome(ctx context.Context, tournamentID int64) (*models.TournamentOutcome, error) {
	if m.ComputeTournamentOutcomeFunc != nil {
		return m.ComputeTournamentOutcomeFunc(ctx, tournamentID)
	}
	return &models.TournamentOutcome{TournamentID: tournamentID, TeamWinProb: map[int64]float64{}}, nil
}

// MockRatingService
type MockRatingService struct {
	RebuildTournamentEloFunc func(ctx context.Context, tournamentID int64) (*models.RebuildResult, error)
}

func (m *MockRatingService) GetRating(ctx context.Context, teamID int64) (float64, error) {
	return 1500, nil
}

func (m *MockRatingService) GetRatings(ctx context.Context, teamIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(teamIDs))
	for _, id := range teamIDs {
		out[id] = 1500
	}
	return out, nil
}

func (m *MockRatingService) SetRating(ctx context.Context, teamID int64, rating float64, source string) error {
	return nil
}

func (m *MockRatingService) RebuildTournamentElo(ctx context.Context, tournamentID int64) (*models.RebuildResult, error) {
	if m.RebuildTournamentEloFunc != nil {
		return m.RebuildTournamentEloFunc(ctx, tournamentID)
	}
	return &models.RebuildResult{}, nil
}

// MockScheduleService
type MockScheduleService struct {
	RemainingGameCountFunc func(ctx context.Context, tournamentID int64) (int, error)
}

func (m *MockScheduleService) GetTournamentSchedule(ctx context.Context, tournamentID int64) (*models.TournamentSchedule, error) {
	return &models.TournamentSchedule{}, nil
}

func (m *MockScheduleService) GetTournamentScheduleBySlug(ctx context.Context, slug string) (*models.TournamentSchedule, error) {
	return &models.TournamentSchedule{}, nil
}

func (m *MockScheduleService) RemainingGameCount(ctx context.Context, tournamentID int64) (int, error) {
	if m.RemainingGameCountFunc != nil {
		return m.RemainingGameCountFunc(ctx, tournamentID)
	}
	return 0, nil
}
