package handlers

import (
	"errors"
	"net/http"

	"github.com/worldscrystal/prediction-api/internal/logic"
)

// ============================================================================
// TOURNAMENT ENDPOINTS
// ============================================================================

// GetTournamentOutcome returns each team's championship probability
// @Summary Tournament Outcome Distribution
// @Tags Tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.TournamentOutcome
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tournaments/{tournamentID}/outcome [get]
func (h *Handler) GetTournamentOutcome(w http.ResponseWriter, r *http.Request) {
	tournamentID := idParam(r, "tournamentID")
	if tournamentID == 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid tournament ID")
		return
	}

	outcome, err := h.outcome.ComputeTournamentOutcome(r.Context(), tournamentID)
	if err != nil {
		if errors.Is(err, logic.ErrTournamentNotFound) {
			h.errorResponse(w, http.StatusNotFound, "Tournament not found")
			return
		}
		h.logger.Errorw("Failed to compute tournament outcome", "tournament_id", tournamentID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute outcome")
		return
	}
	h.jsonResponse(w, http.StatusOK, outcome)
}

// RebuildRatings replays a tournament's completed matches into fresh ratings
// @Summary Rebuild Elo Ratings
// @Tags Tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.RebuildResult
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /tournaments/{tournamentID}/ratings/rebuild [post]
func (h *Handler) RebuildRatings(w http.ResponseWriter, r *http.Request) {
	tournamentID := idParam(r, "tournamentID")
	if tournamentID == 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid tournament ID")
		return
	}

	result, err := h.ratings.RebuildTournamentElo(r.Context(), tournamentID)
	if err != nil {
		h.logger.Errorw("Failed to rebuild ratings", "tournament_id", tournamentID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to rebuild ratings")
		return
	}
	h.jsonResponse(w, http.StatusOK, result)
}

// GetRemainingGames returns the potential game count left in the bracket
// @Summary Remaining Game Count
// @Tags Tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tournaments/{tournamentID}/remaining [get]
func (h *Handler) GetRemainingGames(w http.ResponseWriter, r *http.Request) {
	tournamentID := idParam(r, "tournamentID")
	if tournamentID == 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid tournament ID")
		return
	}

	remaining, err := h.schedule.RemainingGameCount(r.Context(), tournamentID)
	if err != nil {
		if errors.Is(err, logic.ErrTournamentNotFound) {
			h.errorResponse(w, http.StatusNotFound, "Tournament not found")
			return
		}
		h.logger.Errorw("Failed to count remaining games", "tournament_id", tournamentID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to count remaining games")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]int{"remaining_games": remaining})
}
