package handlers

import (
	"errors"
	"net/http"

	"github.com/worldscrystal/prediction-api/internal/logic"
	"github.com/worldscrystal/prediction-api/internal/models"
)

// ============================================================================
// PROBABILITY ENDPOINTS
// ============================================================================

type probabilityResponse struct {
	QuestionID int64                    `json:"question_id"`
	Entries    []models.PickProbability `json:"entries"`
}

// GetPickProbabilities returns the latest published distribution for a question
// @Summary Latest Pick Probabilities
// @Tags Probability
// @Produce json
// @Param questionID path int true "Question ID"
// @Success 200 {object} probabilityResponse
// @Failure 404 {object} map[string]string "Not Found"
// @Router /probability/{questionID} [get]
func (h *Handler) GetPickProbabilities(w http.ResponseWriter, r *http.Request) {
	questionID := idParam(r, "questionID")
	if questionID == 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid question ID")
		return
	}

	snapshots, err := h.snapshots.LatestSnapshots(r.Context(), questionID)
	if err != nil {
		h.logger.Errorw("Failed to read snapshots", "question_id", questionID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to read snapshots")
		return
	}

	if len(snapshots) > 0 {
		entries := make([]models.PickProbability, 0, len(snapshots))
		for _, snap := range snapshots {
			entries = append(entries, models.PickProbability{
				AnswerKey:   snap.AnswerKey,
				Probability: snap.Probability,
				Details:     snap.Details,
			})
		}
		h.jsonResponse(w, http.StatusOK, probabilityResponse{QuestionID: questionID, Entries: entries})
		return
	}

	// Nothing published yet: compute on demand and persist the first batch
	entries, err := h.computeAndPersist(r, questionID)
	if err != nil {
		h.writePickError(w, questionID, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, probabilityResponse{QuestionID: questionID, Entries: entries})
}

// RefreshPickProbabilities recomputes and persists a question's distribution
// @Summary Refresh Pick Probabilities
// @Tags Probability
// @Produce json
// @Param questionID path int true "Question ID"
// @Success 200 {object} probabilityResponse
// @Failure 404 {object} map[string]string "Not Found"
// @Router /probability/{questionID}/refresh [post]
func (h *Handler) RefreshPickProbabilities(w http.ResponseWriter, r *http.Request) {
	questionID := idParam(r, "questionID")
	if questionID == 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid question ID")
		return
	}

	entries, err := h.computeAndPersist(r, questionID)
	if err != nil {
		h.writePickError(w, questionID, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, probabilityResponse{QuestionID: questionID, Entries: entries})
}

func (h *Handler) computeAndPersist(r *http.Request, questionID int64) ([]models.PickProbability, error) {
	entries, err := h.picks.CalculatePickProbabilities(r.Context(), questionID)
	if err != nil {
		return nil, err
	}
	if err := h.snapshots.SaveSnapshots(r.Context(), questionID, entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.PickProbability{}
	}
	return entries, nil
}

func (h *Handler) writePickError(w http.ResponseWriter, questionID int64, err error) {
	if errors.Is(err, logic.ErrQuestionNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	h.logger.Errorw("Failed to compute pick probabilities", "question_id", questionID, "error", err)
	h.errorResponse(w, http.StatusInternalServerError, "Failed to compute probabilities")
}
