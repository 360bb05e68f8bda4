package api

import (
	"net/http"

	"github.com/kakomon/kakomon/internal/studyset"
)

type historyResponse struct {
	Exams []studyset.ExamGroup `json:"exams"`
}

// GET /api/history/incorrect
func (h *Handler) incorrectHistory(w http.ResponseWriter, r *http.Request) {
	groups, err := h.composer.Incorrect(r.Context(), UserID(r.Context()))
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, historyResponse{Exams: groups})
}

// GET /api/history/favorite
func (h *Handler) favoriteHistory(w http.ResponseWriter, r *http.Request) {
	groups, err := h.composer.Favorites(r.Context(), UserID(r.Context()))
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, historyResponse{Exams: groups})
}
