package api

import (
	"net/http"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/mastery"
)

type examsResponse struct {
	Exams []catalog.Exam `json:"exams"`
}

type sectionResponse struct {
	mastery.SectionProgress
	QuestionCount int  `json:"questionCount"`
	PreviousID    *int `json:"previousSectionId"`
	NextID        *int `json:"nextSectionId"`
}

// GET /api/exams
func (h *Handler) listExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.repos.CatalogRepo().Exams(r.Context())
	if h.handleError(w, r, err) {
		return
	}
	if exams == nil {
		exams = []catalog.Exam{}
	}
	respondJSON(w, http.StatusOK, examsResponse{Exams: exams})
}

// GET /api/exams/{id}/sections
func (h *Handler) listSections(w http.ResponseWriter, r *http.Request) {
	examID, ok := pathID(w, r)
	if !ok {
		return
	}
	progress, err := h.mastery.ExamProgress(r.Context(), UserID(r.Context()), examID)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// GET /api/sections/{id}
func (h *Handler) getSection(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	progress, err := h.mastery.SectionProgress(ctx, UserID(ctx), sectionID)
	if h.handleError(w, r, err) {
		return
	}
	questions, err := h.repos.CatalogRepo().SectionQuestions(ctx, sectionID)
	if h.handleError(w, r, err) {
		return
	}
	adj, err := h.repos.CatalogRepo().AdjacentSections(ctx, sectionID)
	if h.handleError(w, r, err) {
		return
	}

	resp := sectionResponse{SectionProgress: progress, QuestionCount: len(questions)}
	if adj.Previous != nil {
		resp.PreviousID = &adj.Previous.ID
	}
	if adj.Next != nil {
		resp.NextID = &adj.Next.ID
	}
	respondJSON(w, http.StatusOK, resp)
}
