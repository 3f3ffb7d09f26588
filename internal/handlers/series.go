package handlers

import (
	"net/http"
	"strconv"

	"github.com/worldscrystal/prediction-api/internal/logic"
)

// ============================================================================
// SERIES ENDPOINTS
// ============================================================================

type seriesWinProbRequest struct {
	RatingA float64 `validate:"required,gt=0"`
	RatingB float64 `validate:"required,gt=0"`
	BestOf  int     `validate:"required,oneof=1 3 5 7"`
	WinsA   int     `validate:"gte=0"`
	WinsB   int     `validate:"gte=0"`
}

// GetSeriesWinProbability evaluates the series calculator for two ratings
// @Summary Series Win Probability
// @Description Probability that side A wins a best-of-N series from the given score
// @Tags Series
// @Produce json
// @Param ratingA query number true "Side A rating"
// @Param ratingB query number true "Side B rating"
// @Param bestOf query int true "Series length (odd)"
// @Param winsA query int false "Current wins for side A" default(0)
// @Param winsB query int false "Current wins for side B" default(0)
// @Success 200 {object} map[string]float64
// @Failure 400 {object} map[string]string "Validation Error"
// @Router /series/winprob [get]
func (h *Handler) GetSeriesWinProbability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := seriesWinProbRequest{
		RatingA: parseFloatParam(query.Get("ratingA")),
		RatingB: parseFloatParam(query.Get("ratingB")),
		BestOf:  parseIntParam(query.Get("bestOf")),
		WinsA:   parseIntParam(query.Get("winsA")),
		WinsB:   parseIntParam(query.Get("winsB")),
	}

	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid series parameters: "+err.Error())
		return
	}

	pGame := logic.ExpectedScore(req.RatingA+h.eloCfg.HomeAdvantage, req.RatingB)
	prob := logic.SeriesWinProbability(pGame, req.BestOf, req.WinsA, req.WinsB)

	h.jsonResponse(w, http.StatusOK, map[string]float64{
		"game_win_probability":   pGame,
		"series_win_probability": prob,
	})
}

func parseFloatParam(raw string) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseIntParam(raw string) int {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return i
}
