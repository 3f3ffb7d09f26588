package logic

// GamesNeededToWin returns the majority threshold of a best-of-N series
func GamesNeededToWin(bestOf int) int {
	return bestOf/2 + 1
}

// SeriesWinProbability returns the probability that side A wins a
// best-of-N series given a constant per-game win probability pGame and the
// current score. Terminal scores resolve to exactly 1 or 0; A's count is
// checked first. Win counts beyond the threshold are clamped before
// solving, a defensive guard against corrupt match data.
//
// The recursion combines the two possible next-game outcomes and is
// memoized on the (winsA, winsB) pair, so each distinct score is solved
// once and depth is bounded by the series length.
func SeriesWinProbability(pGame float64, bestOf, winsA, winsB int) float64 {
	need := GamesNeededToWin(bestOf)

	if winsA >= need {
		return 1
	}
	if winsB >= need {
		return 0
	}

	clamp := func(wins int) int {
		if wins < 0 {
			return 0
		}
		if wins > need {
			return need
		}
		return wins
	}

	memo := make(map[[2]int]float64)

	var solve func(a, b int) float64
	solve = func(a, b int) float64 {
		if a >= need {
			return 1
		}
		if b >= need {
			return 0
		}
		key := [2]int{a, b}
		if p, ok := memo[key]; ok {
			return p
		}

		p := pGame*solve(clamp(a+1), b) + (1-pGame)*solve(a, clamp(b+1))
		memo[key] = p
		return p
	}

	return solve(clamp(winsA), clamp(winsB))
}
