// Package mastery records answers and favorite tags, finishes study
// passes and clears section progress on request.
package mastery

import (
	"context"
	"time"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/logger"
	"github.com/kakomon/kakomon/internal/store"
)

// Tally is the outcome of a finished pass.
type Tally struct {
	CorrectCount int `json:"correctCount"`
	TotalCount   int `json:"totalCount"`
}

// Service owns session progress, section aggregates and history records.
type Service struct {
	backend store.Backend
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a mastery service over backend. A nil log discards
// output.
func NewService(backend store.Backend, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{backend: backend, log: log, now: time.Now}
}

// RecordAnswer stores the latest answer for a question in a section and
// overwrites the question's permanent correctness. The section aggregate
// is left alone until FinishPass.
func (s *Service) RecordAnswer(ctx context.Context, userID string, sectionID, questionID int, answer catalog.OptionKey, isCorrect bool) error {
	key, err := catalog.ParseOptionKey(string(answer))
	if err != nil {
		return err
	}
	now := s.now()

	err = s.backend.InTx(ctx, func(r store.Repos) error {
		if err := checkMembership(ctx, r.CatalogRepo(), sectionID, questionID); err != nil {
			return err
		}
		if err := r.ProgressRepo().UpsertAnswer(ctx, store.SessionAnswer{
			UserID:     userID,
			SectionID:  sectionID,
			QuestionID: questionID,
			Answer:     key,
			IsCorrect:  isCorrect,
			UpdatedAt:  now,
		}); err != nil {
			return apperr.Storage("upsert session answer", err)
		}
		if err := r.HistoryRepo().RecordOutcome(ctx, userID, questionID, isCorrect, now); err != nil {
			return apperr.Storage("upsert history", err)
		}
		return nil
	})
	if err != nil {
		return apperr.Storage("record answer", err)
	}

	s.log.Debug("answer recorded",
		"user_id", userID, "section", sectionID, "question", questionID, "correct", isCorrect)
	return nil
}

// FinishPass recomputes the section aggregate from the session rows.
// Calling it again without new answers writes the same counts.
func (s *Service) FinishPass(ctx context.Context, userID string, sectionID int) (Tally, error) {
	var tally Tally
	now := s.now()

	err := s.backend.InTx(ctx, func(r store.Repos) error {
		if _, err := r.CatalogRepo().Section(ctx, sectionID); err != nil {
			return err
		}
		t, err := r.ProgressRepo().TallyAnswers(ctx, userID, sectionID)
		if err != nil {
			return apperr.Storage("tally answers", err)
		}
		if err := r.ProgressRepo().PutAggregate(ctx, store.SectionAggregate{
			UserID:        userID,
			SectionID:     sectionID,
			CorrectCount:  t.Correct,
			TotalCount:    t.Total,
			LastStudiedAt: now,
			UpdatedAt:     now,
		}); err != nil {
			return apperr.Storage("upsert aggregate", err)
		}
		tally = Tally{CorrectCount: t.Correct, TotalCount: t.Total}
		return nil
	})
	if err != nil {
		return Tally{}, apperr.Storage("finish pass", err)
	}

	s.log.Info("pass finished",
		"user_id", userID, "section", sectionID, "correct", tally.CorrectCount, "total", tally.TotalCount)
	return tally, nil
}

// ToggleFavorite flips one favorite level on the question's history
// record and returns all three flags. Correctness is never touched.
func (s *Service) ToggleFavorite(ctx context.Context, userID string, questionID, level int) (favorite.Flags, error) {
	lv, err := favorite.ParseLevel(level)
	if err != nil {
		return favorite.Flags{}, err
	}
	now := s.now()

	var flags favorite.Flags
	err = s.backend.InTx(ctx, func(r store.Repos) error {
		if _, err := r.CatalogRepo().Question(ctx, questionID); err != nil {
			return err
		}
		rec, err := r.HistoryRepo().Get(ctx, userID, questionID)
		if err != nil {
			return apperr.Storage("read history", err)
		}
		if rec != nil {
			flags = rec.Favorites
		}
		flags = flags.Toggle(lv)
		if err := r.HistoryRepo().PutFavorites(ctx, userID, questionID, flags, now); err != nil {
			return apperr.Storage("upsert favorites", err)
		}
		return nil
	})
	if err != nil {
		return favorite.Flags{}, apperr.Storage("toggle favorite", err)
	}
	return flags, nil
}

// FavoriteStatus returns the question's favorite flags, all false when
// the user has no record for it.
func (s *Service) FavoriteStatus(ctx context.Context, userID string, questionID int) (favorite.Flags, error) {
	if _, err := s.backend.CatalogRepo().Question(ctx, questionID); err != nil {
		return favorite.Flags{}, apperr.Storage("read question", err)
	}
	rec, err := s.backend.HistoryRepo().Get(ctx, userID, questionID)
	if err != nil {
		return favorite.Flags{}, apperr.Storage("read history", err)
	}
	if rec == nil {
		return favorite.Flags{}, nil
	}
	return rec.Favorites, nil
}

// checkMembership verifies that both ids exist and that the question is
// part of the section.
func checkMembership(ctx context.Context, cat store.CatalogRepo, sectionID, questionID int) error {
	if _, err := cat.Section(ctx, sectionID); err != nil {
		return err
	}
	q, err := cat.Question(ctx, questionID)
	if err != nil {
		return err
	}
	if q.SectionID != sectionID {
		return apperr.Invalid("questionId", "question %d does not belong to section %d", questionID, sectionID)
	}
	return nil
}
