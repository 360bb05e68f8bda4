package api

import "net/http"

type toggleRequest struct {
	Level int `json:"level"`
}

type settingsRequest struct {
	Level1Enabled bool   `json:"level1Enabled"`
	Level2Enabled bool   `json:"level2Enabled"`
	Level3Enabled bool   `json:"level3Enabled"`
	CombineMode   string `json:"combineMode"`
}

// GET /api/questions/{id}/favorite
func (h *Handler) favoriteStatus(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r)
	if !ok {
		return
	}
	flags, err := h.mastery.FavoriteStatus(r.Context(), UserID(r.Context()), questionID)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, flags)
}

// POST /api/questions/{id}/favorite
func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	flags, err := h.mastery.ToggleFavorite(r.Context(), UserID(r.Context()), questionID, req.Level)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, flags)
}

// GET /api/settings/favorite
func (h *Handler) getFavoriteSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.GetOrDefault(r.Context(), UserID(r.Context()))
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// PUT /api/settings/favorite
func (h *Handler) putFavoriteSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.settings.Upsert(r.Context(), UserID(r.Context()),
		req.Level1Enabled, req.Level2Enabled, req.Level3Enabled, req.CombineMode)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, s)
}
