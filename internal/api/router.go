package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

var (
	notFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "no such route")
	})
	methodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
)

// NewRouter registers every route. Routes under /api require a bearer
// token signed with secret.
func NewRouter(h *Handler, secret []byte) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = methodNotAllowed

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Subrouters do not inherit the parent's error handlers.
	s := r.PathPrefix("/api").Subrouter()
	s.NotFoundHandler = notFound
	s.MethodNotAllowedHandler = methodNotAllowed
	s.Use(AuthMiddleware(secret, h.repos.UserRepo(), h.log))

	// Catalog
	s.HandleFunc("/exams", h.listExams).Methods("GET")
	s.HandleFunc("/exams/{id:[0-9]+}/sections", h.listSections).Methods("GET")
	s.HandleFunc("/sections/{id:[0-9]+}", h.getSection).Methods("GET")

	// Study
	s.HandleFunc("/sections/{id:[0-9]+}/study", h.composeStudySet).Methods("GET")
	s.HandleFunc("/sections/{id:[0-9]+}/answers", h.recordAnswer).Methods("POST")
	s.HandleFunc("/sections/{id:[0-9]+}/finish", h.finishPass).Methods("POST")
	s.HandleFunc("/sections/{id:[0-9]+}/reset", h.resetSection).Methods("POST")

	// Favorites
	s.HandleFunc("/questions/{id:[0-9]+}/favorite", h.favoriteStatus).Methods("GET")
	s.HandleFunc("/questions/{id:[0-9]+}/favorite", h.toggleFavorite).Methods("POST")
	s.HandleFunc("/settings/favorite", h.getFavoriteSettings).Methods("GET")
	s.HandleFunc("/settings/favorite", h.putFavoriteSettings).Methods("PUT")

	// History
	s.HandleFunc("/history/incorrect", h.incorrectHistory).Methods("GET")
	s.HandleFunc("/history/favorite", h.favoriteHistory).Methods("GET")

	// Mock tests
	s.HandleFunc("/mock/questions", h.sampleMock).Methods("GET")
	s.HandleFunc("/mock/submissions", h.submitMock).Methods("POST")
	s.HandleFunc("/mock/attempts", h.listMockAttempts).Methods("GET")
	s.HandleFunc("/mock/attempts/{id}", h.getMockAttempt).Methods("GET")

	return Logging(h.log)(r)
}
