package mastery

import (
	"context"
	"errors"
	"fmt"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/store"
)

// ErrAggregateInvariant reports an aggregate whose counts disagree with
// the session rows it was rebuilt from.
var ErrAggregateInvariant = errors.New("aggregate invariant violated")

// FullReset removes every session row and the aggregate for the section.
// History records are kept.
func (s *Service) FullReset(ctx context.Context, userID string, sectionID int) error {
	var removed int64
	err := s.backend.InTx(ctx, func(r store.Repos) error {
		if _, err := r.CatalogRepo().Section(ctx, sectionID); err != nil {
			return err
		}
		n, err := r.ProgressRepo().DeleteAnswers(ctx, userID, sectionID, false)
		if err != nil {
			return apperr.Storage("delete session answers", err)
		}
		removed = n
		if _, err := r.ProgressRepo().DeleteAggregate(ctx, userID, sectionID); err != nil {
			return apperr.Storage("delete aggregate", err)
		}
		return nil
	})
	if err != nil {
		return apperr.Storage("full reset", err)
	}

	s.log.Info("section reset", "user_id", userID, "section", sectionID, "scope", "full", "removed", removed)
	return nil
}

// IncorrectOnlyReset removes the incorrect session rows and rebuilds the
// aggregate from the remaining, all-correct rows.
func (s *Service) IncorrectOnlyReset(ctx context.Context, userID string, sectionID int) error {
	var removed int64
	err := s.backend.InTx(ctx, func(r store.Repos) error {
		if _, err := r.CatalogRepo().Section(ctx, sectionID); err != nil {
			return err
		}
		progress := r.ProgressRepo()
		n, err := progress.DeleteAnswers(ctx, userID, sectionID, true)
		if err != nil {
			return apperr.Storage("delete incorrect answers", err)
		}
		removed = n

		t, err := progress.TallyAnswers(ctx, userID, sectionID)
		if err != nil {
			return apperr.Storage("tally answers", err)
		}
		if t.Correct != t.Total {
			return apperr.Storage("verify aggregate",
				fmt.Errorf("%w: correct %d, total %d after removing incorrect rows", ErrAggregateInvariant, t.Correct, t.Total))
		}
		return s.rebuildAggregate(ctx, progress, userID, sectionID, t, false)
	})
	if err != nil {
		return apperr.Storage("incorrect-only reset", err)
	}

	s.log.Info("section reset", "user_id", userID, "section", sectionID, "scope", "incorrect", "removed", removed)
	return nil
}

// ResetQuestion removes one session row and rebuilds an existing aggregate
// from the rows that remain.
func (s *Service) ResetQuestion(ctx context.Context, userID string, sectionID, questionID int) error {
	err := s.backend.InTx(ctx, func(r store.Repos) error {
		if err := checkMembership(ctx, r.CatalogRepo(), sectionID, questionID); err != nil {
			return err
		}
		progress := r.ProgressRepo()
		if _, err := progress.DeleteAnswer(ctx, userID, sectionID, questionID); err != nil {
			return apperr.Storage("delete session answer", err)
		}
		t, err := progress.TallyAnswers(ctx, userID, sectionID)
		if err != nil {
			return apperr.Storage("tally answers", err)
		}
		return s.rebuildAggregate(ctx, progress, userID, sectionID, t, true)
	})
	if err != nil {
		return apperr.Storage("question reset", err)
	}

	s.log.Info("section reset", "user_id", userID, "section", sectionID, "scope", "question", "question", questionID)
	return nil
}

// rebuildAggregate writes t as the section aggregate. An absent aggregate
// is created only when rows remain and existingOnly is false; the previous
// last-studied time is carried over when there is one.
func (s *Service) rebuildAggregate(ctx context.Context, progress store.ProgressRepo, userID string, sectionID int, t store.AnswerTally, existingOnly bool) error {
	prev, err := progress.Aggregate(ctx, userID, sectionID)
	if err != nil {
		return apperr.Storage("read aggregate", err)
	}
	if prev == nil && (existingOnly || t.Total == 0) {
		return nil
	}

	now := s.now()
	agg := store.SectionAggregate{
		UserID:        userID,
		SectionID:     sectionID,
		CorrectCount:  t.Correct,
		TotalCount:    t.Total,
		LastStudiedAt: now,
		UpdatedAt:     now,
	}
	if prev != nil {
		agg.LastStudiedAt = prev.LastStudiedAt
	}
	if err := progress.PutAggregate(ctx, agg); err != nil {
		return apperr.Storage("upsert aggregate", err)
	}
	return nil
}
