// Package mocktest samples random questions and scores submitted mock
// exams. Attempts are immutable once stored.
package mocktest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/logger"
	"github.com/kakomon/kakomon/internal/store"
)

const (
	DefaultCount   = 50
	MaxCount       = 200
	DefaultHistory = 10
)

// Answer is one submitted answer. The key is compared verbatim with the
// stored answer key.
type Answer struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

// Result is one scored answer.
type Result struct {
	QuestionID    int               `json:"questionId"`
	UserAnswer    string            `json:"userAnswer"`
	CorrectAnswer catalog.OptionKey `json:"correctAnswer"`
	IsCorrect     bool              `json:"isCorrect"`
	AnsweredAt    time.Time         `json:"answeredAt"`
}

// Attempt is a stored mock exam with its scored answers.
type Attempt struct {
	ID             string    `json:"id"`
	ExamID         *int      `json:"examId,omitempty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	TakenAt        time.Time `json:"takenAt"`
	Results        []Result  `json:"results,omitempty"`
}

// Percent is the score as a rounded-down percentage.
func (a *Attempt) Percent() int {
	if a.TotalQuestions == 0 {
		return 0
	}
	return a.Score * 100 / a.TotalQuestions
}

// Scorer samples and scores mock exams.
type Scorer struct {
	backend store.Backend
	log     *logger.Logger
	now     func() time.Time
	newID   func() string
}

// NewScorer creates a Scorer over backend. A nil log discards output.
func NewScorer(backend store.Backend, log *logger.Logger) *Scorer {
	if log == nil {
		log = logger.Nop()
	}
	return &Scorer{
		backend: backend,
		log:     log,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Sample returns up to n random questions, optionally from one exam.
// Callers without a preference pass DefaultCount.
func (s *Scorer) Sample(ctx context.Context, n int, examID *int) ([]catalog.Question, error) {
	if n <= 0 || n > MaxCount {
		return nil, apperr.Invalid("count", "must be between 1 and %d, got %d", MaxCount, n)
	}
	if examID != nil {
		if _, err := s.backend.CatalogRepo().Exam(ctx, *examID); err != nil {
			return nil, apperr.Storage("read exam", err)
		}
	}
	qs, err := s.backend.CatalogRepo().RandomQuestions(ctx, n, examID)
	if err != nil {
		return nil, apperr.Storage("sample questions", err)
	}
	return qs, nil
}

// Submit scores answers and stores the attempt with one detail row per
// answer.
func (s *Scorer) Submit(ctx context.Context, userID string, examID *int, answers []Answer) (*Attempt, error) {
	if len(answers) == 0 {
		return nil, apperr.Invalid("answers", "at least one answer is required")
	}
	seen := make(map[int]bool, len(answers))
	for _, a := range answers {
		if seen[a.QuestionID] {
			return nil, apperr.Invalid("answers", "question %d is answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = true
	}

	now := s.now()
	attempt := &Attempt{
		ID:             s.newID(),
		ExamID:         examID,
		TotalQuestions: len(answers),
		TakenAt:        now,
	}

	err := s.backend.InTx(ctx, func(r store.Repos) error {
		ids := make([]int, len(answers))
		for i, a := range answers {
			ids[i] = a.QuestionID
		}
		questions, err := r.CatalogRepo().QuestionsByID(ctx, ids)
		if err != nil {
			return apperr.Storage("read questions", err)
		}

		details := make([]store.MockAnswer, 0, len(answers))
		for _, a := range answers {
			q, ok := questions[a.QuestionID]
			if !ok {
				return apperr.NotFound("question", a.QuestionID)
			}
			given := strings.TrimSpace(a.Answer)
			correct := given == string(q.Answer)
			if correct {
				attempt.Score++
			}
			attempt.Results = append(attempt.Results, Result{
				QuestionID:    q.ID,
				UserAnswer:    given,
				CorrectAnswer: q.Answer,
				IsCorrect:     correct,
				AnsweredAt:    now,
			})
			details = append(details, store.MockAnswer{
				QuestionID: q.ID,
				UserAnswer: given,
				IsCorrect:  correct,
				AnsweredAt: now,
			})
		}

		if err := r.MockRepo().CreateAttempt(ctx, store.MockAttempt{
			ID:             attempt.ID,
			UserID:         userID,
			ExamID:         examID,
			Score:          attempt.Score,
			TotalQuestions: attempt.TotalQuestions,
			TakenAt:        now,
		}, details); err != nil {
			return apperr.Storage("insert attempt", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("submit mock", err)
	}

	s.log.Info("mock submitted",
		"user_id", userID, "attempt", attempt.ID, "score", attempt.Score, "total", attempt.TotalQuestions)
	return attempt, nil
}

// History returns the user's attempts newest first, without results. A
// non-positive limit means DefaultHistory.
func (s *Scorer) History(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = DefaultHistory
	}
	rows, err := s.backend.MockRepo().Attempts(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Storage("read attempts", err)
	}
	out := make([]Attempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Details returns one of the user's attempts with its results. Attempts of
// other users are reported as not found.
func (s *Scorer) Details(ctx context.Context, userID, attemptID string) (*Attempt, error) {
	repo := s.backend.MockRepo()
	row, err := repo.Attempt(ctx, attemptID)
	if err != nil {
		return nil, apperr.Storage("read attempt", err)
	}
	if row == nil || row.UserID != userID {
		return nil, apperr.NotFound("mock attempt", attemptID)
	}
	answers, err := repo.Answers(ctx, attemptID)
	if err != nil {
		return nil, apperr.Storage("read attempt answers", err)
	}

	ids := make([]int, len(answers))
	for i, a := range answers {
		ids[i] = a.QuestionID
	}
	questions, err := s.backend.CatalogRepo().QuestionsByID(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("read questions", err)
	}

	a := fromRow(*row)
	for _, ans := range answers {
		a.Results = append(a.Results, Result{
			QuestionID:    ans.QuestionID,
			UserAnswer:    ans.UserAnswer,
			CorrectAnswer: questions[ans.QuestionID].Answer,
			IsCorrect:     ans.IsCorrect,
			AnsweredAt:    ans.AnsweredAt,
		})
	}
	return &a, nil
}

func fromRow(r store.MockAttempt) Attempt {
	return Attempt{
		ID:             r.ID,
		ExamID:         r.ExamID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		TakenAt:        r.TakenAt,
	}
}
