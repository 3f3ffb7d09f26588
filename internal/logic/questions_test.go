package logic

import (
	"context"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/worldscrystal/prediction-api/internal/models"
)

func TestInBucket(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		value  float64
		want   bool
	}{
		{"Inside Range", "10-20", 15, true},
		{"Lower Bound Inclusive", "10-20", 10, true},
		{"Upper Bound Inclusive", "10-20", 20, true},
		{"Below Range", "10-20", 9, false},
		{"Above Range", "10-20", 21, false},
		{"Open Ended Match", "50+", 120, true},
		{"Open Ended Boundary", "50+", 50, true},
		{"Open Ended Below", "50+", 49, false},
		{"Malformed Bucket", "lots", 10, false},
		{"Malformed Range", "10-", 10, false},
		{"Negative Not Supported", "-5-5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InBucket(tt.bucket, tt.value); got != tt.want {
				t.Errorf("InBucket(%q, %v) = %v, want %v", tt.bucket, tt.value, got, tt.want)
			}
		})
	}
}

func TestCalculateNumeric(t *testing.T) {
	// One scheduled Bo1: 0 completed + 1 remaining game, estimate 1 per game
	schedule := singleStageSchedule(
		models.Series{ID: 1, Round: 1, IndexInRound: 1, BestOf: 1, Status: models.StatusScheduled,
			BlueTeamID: 10, RedTeamID: 20,
			Matches: []models.Match{{ID: 1, SeriesID: 1, GameIndex: 1, Status: models.StatusScheduled}}},
	)

	svc := &pickService{schedule: &stubScheduleService{schedule: schedule}}

	question := &models.Question{
		ID: 7, TournamentID: 1, Type: models.QuestionNumeric,
		Config: models.QuestionConfig{Buckets: []string{"0-0", "1-2", "3+"}},
	}

	entries, err := svc.calculateNumeric(context.Background(), question)
	if err != nil {
		t.Fatalf("calculateNumeric failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// estimate = 1.0 falls in "1-2"
	wantProbs := []float64{0, 1, 0}
	for i, entry := range entries {
		if entry.Probability != wantProbs[i] {
			t.Errorf("bucket %q probability = %v, want %v", entry.AnswerKey, entry.Probability, wantProbs[i])
		}
	}
}

func TestCalculateNumericUniformFallback(t *testing.T) {
	schedule := singleStageSchedule(
		models.Series{ID: 1, Round: 1, IndexInRound: 1, BestOf: 1, Status: models.StatusScheduled,
			BlueTeamID: 10, RedTeamID: 20,
			Matches: []models.Match{{ID: 1, SeriesID: 1, GameIndex: 1, Status: models.StatusScheduled}}},
	)
	svc := &pickService{schedule: &stubScheduleService{schedule: schedule}}

	// No bucket covers estimate 1: fall back to uniform
	question := &models.Question{
		ID: 7, TournamentID: 1, Type: models.QuestionNumeric,
		Config: models.QuestionConfig{Buckets: []string{"5-9", "10+"}},
	}

	entries, err := svc.calculateNumeric(context.Background(), question)
	if err != nil {
		t.Fatalf("calculateNumeric failed: %v", err)
	}
	for _, entry := range entries {
		if math.Abs(entry.Probability-0.5) > 1e-9 {
			t.Errorf("bucket %q probability = %v, want uniform 0.5", entry.AnswerKey, entry.Probability)
		}
	}
}

func TestCalculateNumericEmptyBuckets(t *testing.T) {
	svc := &pickService{schedule: &stubScheduleService{schedule: singleStageSchedule()}}
	question := &models.Question{ID: 7, TournamentID: 1, Type: models.QuestionNumeric}

	entries, err := svc.calculateNumeric(context.Background(), question)
	if err != nil {
		t.Fatalf("calculateNumeric failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries for empty bucket config, want 0", len(entries))
	}
}

func TestCalculateCategorical(t *testing.T) {
	// 3 picks of ahri, 1 of zed; no games remaining, so the distribution
	// is just the observed shares.
	schedule := singleStageSchedule(
		models.Series{ID: 1, Round: 1, IndexInRound: 1, BestOf: 1, Status: models.StatusCompleted,
			BlueTeamID: 10, RedTeamID: 20, WinnerTeamID: 10,
			Matches: []models.Match{{ID: 1, SeriesID: 1, GameIndex: 1, Status: models.StatusCompleted, WinnerTeamID: 10}}},
	)

	ch := &fakeCHConn{data: [][]any{
		{"ahri", uint64(3)},
		{"zed", uint64(1)},
	}}
	svc := &pickService{ch: ch, schedule: &stubScheduleService{schedule: schedule}}

	question := &models.Question{
		ID: 5, TournamentID: 1, TournamentSlug: "worlds-2025",
		Type:   models.QuestionCategorical,
		Config: models.QuestionConfig{AnswerPool: models.AnswerPoolChampionsAll},
	}

	entries, err := svc.calculateCategorical(context.Background(), question)
	if err != nil {
		t.Fatalf("calculateCategorical failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].AnswerKey != "ahri" || math.Abs(entries[0].Probability-0.75) > 1e-9 {
		t.Errorf("top entry = %+v, want ahri at 0.75", entries[0])
	}
	if entries[1].AnswerKey != "zed" || math.Abs(entries[1].Probability-0.25) > 1e-9 {
		t.Errorf("second entry = %+v, want zed at 0.25", entries[1])
	}
}

func TestCalculateCategoricalZeroWeight(t *testing.T) {
	// Zero observed picks: every candidate gets probability 0 and the list
	// sums to 0, the intentional "no data" signal.
	ch := &fakeCHConn{data: [][]any{
		{"ahri", uint64(0)},
		{"zed", uint64(0)},
	}}
	svc := &pickService{ch: ch, schedule: &stubScheduleService{schedule: singleStageSchedule()}}

	question := &models.Question{
		ID: 5, TournamentID: 1, TournamentSlug: "worlds-2025",
		Type:   models.QuestionCategorical,
		Config: models.QuestionConfig{AnswerPool: models.AnswerPoolChampionsAll},
	}

	entries, err := svc.calculateCategorical(context.Background(), question)
	if err != nil {
		t.Fatalf("calculateCategorical failed: %v", err)
	}
	sum := 0.0
	for _, entry := range entries {
		if entry.Probability != 0 {
			t.Errorf("%q probability = %v, want 0", entry.AnswerKey, entry.Probability)
		}
		sum += entry.Probability
	}
	if sum != 0 {
		t.Errorf("distribution sum = %v, want 0", sum)
	}
}

func TestCalculateCategoricalWrongPool(t *testing.T) {
	svc := &pickService{}
	question := &models.Question{
		ID: 5, Type: models.QuestionCategorical,
		Config: models.QuestionConfig{AnswerPool: "something_else"},
	}
	entries, err := svc.calculateCategorical(context.Background(), question)
	if err != nil {
		t.Fatalf("calculateCategorical failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries for unsupported pool, want 0", len(entries))
	}
}

func TestCalculateBinary(t *testing.T) {
	outcome := &models.TournamentOutcome{
		TournamentID: 1,
		TeamWinProb:  map[int64]float64{10: 0.6, 20: 0.4},
	}
	pg := &fakePgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &fakeRows{data: [][]any{
				{int64(10), "t1-esports"},
				{int64(20), "gen-g"},
			}}, nil
		},
	}
	svc := &pickService{pg: pg, outcome: &stubOutcomeService{outcome: outcome}}

	question := &models.Question{
		ID: 3, TournamentID: 1, Type: models.QuestionBinary,
		Config: models.QuestionConfig{AnswerPool: models.AnswerPoolTeamsActive},
	}

	entries, err := svc.calculateBinary(context.Background(), question)
	if err != nil {
		t.Fatalf("calculateBinary failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].AnswerKey != "t1-esports" || entries[0].Probability != 0.6 {
		t.Errorf("top entry = %+v, want t1-esports at 0.6", entries[0])
	}
	if entries[1].AnswerKey != "gen-g" || entries[1].Probability != 0.4 {
		t.Errorf("second entry = %+v, want gen-g at 0.4", entries[1])
	}
}

func TestCalculateBinaryWrongPool(t *testing.T) {
	svc := &pickService{}
	question := &models.Question{ID: 3, Type: models.QuestionBinary}
	entries, err := svc.calculateBinary(context.Background(), question)
	if err != nil {
		t.Fatalf("calculateBinary failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries for unsupported pool, want 0", len(entries))
	}
}

func TestCalculatePickProbabilitiesUnknownQuestion(t *testing.T) {
	svc := &pickService{pg: &fakePgPool{}}
	if _, err := svc.CalculatePickProbabilities(context.Background(), 404); err != ErrQuestionNotFound {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestCalculatePickProbabilitiesUnknownType(t *testing.T) {
	pg := &fakePgPool{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &fakeRow{values: []any{int64(9), int64(1), "worlds-2025", "essay", "who knows", []byte(`{}`), true}}
		},
	}
	svc := &pickService{pg: pg}

	entries, err := svc.CalculatePickProbabilities(context.Background(), 9)
	if err != nil {
		t.Fatalf("CalculatePickProbabilities failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries for unknown type, want 0", len(entries))
	}
}
