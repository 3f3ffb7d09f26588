package logic

import (
	"math"
	"testing"
)

func TestExpectedScoreSymmetry(t *testing.T) {
	pairs := [][2]float64{
		{1500, 1500},
		{1500, 1100},
		{1234, 1876},
		{900, 2400},
		{1500.5, 1499.5},
	}

	for _, pair := range pairs {
		sum := ExpectedScore(pair[0], pair[1]) + ExpectedScore(pair[1], pair[0])
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("ExpectedScore(%v,%v) complement sum = %v, want 1", pair[0], pair[1], sum)
		}
	}
}

func TestExpectedScoreValues(t *testing.T) {
	if got := ExpectedScore(1500, 1500); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("equal ratings: got %v, want 0.5", got)
	}

	// 400-point gap is 10:1 odds in the logistic model
	if got := ExpectedScore(1900, 1500); math.Abs(got-10.0/11.0) > 1e-12 {
		t.Errorf("400 point gap: got %v, want %v", got, 10.0/11.0)
	}

	if got := ExpectedScore(1100, 1500); got >= 0.5 {
		t.Errorf("underdog expected score %v, want < 0.5", got)
	}
}

func TestUpdateRatingsZeroSum(t *testing.T) {
	cfg := DefaultEloConfig()

	tests := []struct {
		name string
		a, b float64
		aWon bool
	}{
		{"Even Ratings A Wins", 1500, 1500, true},
		{"Even Ratings B Wins", 1500, 1500, false},
		{"Favorite Wins", 1700, 1400, true},
		{"Upset", 1400, 1700, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newA, newB := UpdateRatings(tt.a, tt.b, tt.aWon, cfg)
			deltaA := newA - tt.a
			deltaB := newB - tt.b

			if math.Abs(deltaA+deltaB) > 1e-9 {
				t.Errorf("deltas not zero-sum: %v + %v = %v", deltaA, deltaB, deltaA+deltaB)
			}
			if tt.aWon && deltaA <= 0 {
				t.Errorf("winner delta %v, want > 0", deltaA)
			}
			if !tt.aWon && deltaA >= 0 {
				t.Errorf("loser delta %v, want < 0", deltaA)
			}
		})
	}
}

func TestUpdateRatingsSurpriseScaling(t *testing.T) {
	cfg := DefaultEloConfig()

	// An upset moves ratings further than an expected result
	_, _ = UpdateRatings(1500, 1500, true, cfg)
	favA, _ := UpdateRatings(1800, 1400, true, cfg)
	upsetA, _ := UpdateRatings(1400, 1800, true, cfg)

	favGain := favA - 1800
	upsetGain := upsetA - 1400
	if upsetGain <= favGain {
		t.Errorf("upset gain %v should exceed favorite gain %v", upsetGain, favGain)
	}

	// Even matchup with K=32 moves exactly 16 points
	newA, newB := UpdateRatings(1500, 1500, true, cfg)
	if math.Abs(newA-1516) > 1e-9 || math.Abs(newB-1484) > 1e-9 {
		t.Errorf("even matchup update = (%v, %v), want (1516, 1484)", newA, newB)
	}
}
