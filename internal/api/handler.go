// Package api serves the study engine over JSON HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/logger"
	"github.com/kakomon/kakomon/internal/mastery"
	"github.com/kakomon/kakomon/internal/mocktest"
	"github.com/kakomon/kakomon/internal/store"
	"github.com/kakomon/kakomon/internal/studyset"
)

const maxBodyBytes = 1 << 20

// Handler holds the services every endpoint works through.
type Handler struct {
	repos    store.Backend
	mastery  *mastery.Service
	composer *studyset.Composer
	settings *favorite.Service
	scorer   *mocktest.Scorer
	log      *logger.Logger
}

// NewHandler wires the services over backend.
func NewHandler(backend store.Backend, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		repos:    backend,
		mastery:  mastery.NewService(backend, log),
		composer: studyset.NewComposer(backend),
		settings: favorite.NewService(backend.SettingsRepo()),
		scorer:   mocktest.NewScorer(backend, log),
		log:      log,
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v as JSON with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// handleError maps err to a response. It returns true when err was non-nil
// and the caller should stop.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	switch {
	case apperr.IsValidation(err):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case apperr.IsNotFound(err):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
	return true
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid json"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return false
	}
	return true
}

// pathID reads the integer route variable "id". Routes constrain it to
// digits, so only overflow can fail.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Invalid(name, "%q is not an integer", raw)
	}
	return &n, nil
}
