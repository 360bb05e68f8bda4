package api

import (
	"net/http"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/studyset"
)

type answerRequest struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

type answerResponse struct {
	IsCorrect     bool              `json:"isCorrect"`
	CorrectAnswer catalog.OptionKey `json:"correctAnswer"`
	Explanation   string            `json:"explanation,omitempty"`
}

type resetRequest struct {
	Scope      string `json:"scope"`
	QuestionID int    `json:"questionId,omitempty"`
}

// GET /api/sections/{id}/study?mode=
func (h *Handler) composeStudySet(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathID(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("mode")
	if raw == "" {
		raw = studyset.ModeNormal.String()
	}
	mode, err := studyset.ParseMode(raw)
	if h.handleError(w, r, err) {
		return
	}
	set, err := h.composer.Compose(r.Context(), UserID(r.Context()), sectionID, mode)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, set)
}

// POST /api/sections/{id}/answers
func (h *Handler) recordAnswer(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	key, err := catalog.ParseOptionKey(req.Answer)
	if h.handleError(w, r, err) {
		return
	}
	q, err := h.repos.CatalogRepo().Question(ctx, req.QuestionID)
	if h.handleError(w, r, err) {
		return
	}
	correct := q.IsCorrect(key)
	if err := h.mastery.RecordAnswer(ctx, UserID(ctx), sectionID, q.ID, key, correct); h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, answerResponse{
		IsCorrect:     correct,
		CorrectAnswer: q.Answer,
		Explanation:   q.Explanation,
	})
}

// POST /api/sections/{id}/finish
func (h *Handler) finishPass(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathID(w, r)
	if !ok {
		return
	}
	tally, err := h.mastery.FinishPass(r.Context(), UserID(r.Context()), sectionID)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, tally)
}

// POST /api/sections/{id}/reset
func (h *Handler) resetSection(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req resetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	userID := UserID(ctx)

	var err error
	switch req.Scope {
	case "full":
		err = h.mastery.FullReset(ctx, userID, sectionID)
	case "incorrect":
		err = h.mastery.IncorrectOnlyReset(ctx, userID, sectionID)
	case "question":
		if req.QuestionID == 0 {
			err = apperr.Invalid("questionId", "required for scope question")
			break
		}
		err = h.mastery.ResetQuestion(ctx, userID, sectionID, req.QuestionID)
	default:
		err = apperr.Invalid("scope", "%q is not one of full, incorrect, question", req.Scope)
	}
	if h.handleError(w, r, err) {
		return
	}

	progress, err := h.mastery.SectionProgress(ctx, userID, sectionID)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, progress)
}
