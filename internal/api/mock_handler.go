package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/mocktest"
)

// mockQuestion is a question without its answer key.
type mockQuestion struct {
	ID        int                          `json:"id"`
	SectionID int                          `json:"sectionId"`
	Body      string                       `json:"body"`
	Options   map[catalog.OptionKey]string `json:"options"`
}

type mockQuestionsResponse struct {
	Questions []mockQuestion `json:"questions"`
}

type submitRequest struct {
	ExamID  *int              `json:"examId,omitempty"`
	Answers []mocktest.Answer `json:"answers"`
}

type attemptsResponse struct {
	Attempts []mocktest.Attempt `json:"attempts"`
}

// GET /api/mock/questions?count=&examId=
func (h *Handler) sampleMock(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count")
	if h.handleError(w, r, err) {
		return
	}
	examID, err := queryInt(r, "examId")
	if h.handleError(w, r, err) {
		return
	}
	n := mocktest.DefaultCount
	if count != nil {
		n = *count
	}

	qs, err := h.scorer.Sample(r.Context(), n, examID)
	if h.handleError(w, r, err) {
		return
	}
	out := make([]mockQuestion, 0, len(qs))
	for _, q := range qs {
		opts := make(map[catalog.OptionKey]string, len(catalog.OptionKeys))
		for _, k := range catalog.OptionKeys {
			opts[k] = q.Option(k)
		}
		out = append(out, mockQuestion{ID: q.ID, SectionID: q.SectionID, Body: q.Body, Options: opts})
	}
	respondJSON(w, http.StatusOK, mockQuestionsResponse{Questions: out})
}

// POST /api/mock/submissions
func (h *Handler) submitMock(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	attempt, err := h.scorer.Submit(r.Context(), UserID(r.Context()), req.ExamID, req.Answers)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusCreated, attempt)
}

// GET /api/mock/attempts?limit=
func (h *Handler) listMockAttempts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if h.handleError(w, r, err) {
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	attempts, err := h.scorer.History(r.Context(), UserID(r.Context()), n)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, attemptsResponse{Attempts: attempts})
}

// GET /api/mock/attempts/{id}
func (h *Handler) getMockAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.scorer.Details(r.Context(), UserID(r.Context()), mux.Vars(r)["id"])
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, attempt)
}
