package logic

import "math"

// EloConfig tunes the rating model. K is the update step size,
// HomeAdvantage is added to side A's effective rating before computing
// the expectation, Base seeds teams with no rating history.
type EloConfig struct {
	K             float64
	HomeAdvantage float64
	Base          float64
}

// DefaultEloConfig returns the standard tuning: K=32, no side advantage,
// 1500 base rating.
func DefaultEloConfig() EloConfig {
	return EloConfig{K: 32, HomeAdvantage: 0, Base: 1500}
}

// ExpectedScore returns the probability that a team rated ratingA beats a
// team rated ratingB in a single game, as a logistic function of the rating
// difference. ExpectedScore(a, b) + ExpectedScore(b, a) == 1.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// UpdateRatings applies one completed game to both ratings. Each rating
// moves toward the observed outcome proportionally to the surprise
// (actual - expected) scaled by K; the two deltas are equal in magnitude
// and opposite in sign, so the update is zero-sum.
func UpdateRatings(ratingA, ratingB float64, aWon bool, cfg EloConfig) (newA, newB float64) {
	expA := ExpectedScore(ratingA, ratingB)
	scoreA := 0.0
	if aWon {
		scoreA = 1.0
	}
	newA = ratingA + cfg.K*(scoreA-expA)
	newB = ratingB + cfg.K*((1-scoreA)-(1-expA))
	return newA, newB
}
