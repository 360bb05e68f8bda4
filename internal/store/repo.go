package store

import (
	"context"
	"time"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/favorite"
)

// Repos gives access to every repository over one connection or
// transaction.
type Repos interface {
	CatalogRepo() CatalogRepo
	UserRepo() UserRepo
	ProgressRepo() ProgressRepo
	HistoryRepo() HistoryRepo
	SettingsRepo() SettingsRepo
	MockRepo() MockRepo
}

// Backend is a Repos that can also open transactions.
type Backend interface {
	Repos
	InTx(ctx context.Context, fn func(Repos) error) error
}

var _ Backend = (*Store)(nil)

// CatalogRepo reads and appends reference data.
type CatalogRepo interface {
	catalog.Reader
	catalog.Writer

	// RandomQuestions samples up to n questions uniformly, optionally
	// restricted to one exam.
	RandomQuestions(ctx context.Context, n int, examID *int) ([]catalog.Question, error)
}

// User is a learner identity supplied by the auth layer.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// UserRepo tracks known learners.
type UserRepo interface {
	// Ensure inserts the user when absent and refreshes email and name
	// when they are non-empty.
	Ensure(ctx context.Context, u User) error

	// Get returns the user, or nil when unknown.
	Get(ctx context.Context, id string) (*User, error)
}

// SessionAnswer is the latest answer to a question within a section.
type SessionAnswer struct {
	UserID     string
	SectionID  int
	QuestionID int
	Answer     catalog.OptionKey
	IsCorrect  bool
	UpdatedAt  time.Time
}

// SectionAggregate is the per-section pass summary.
type SectionAggregate struct {
	UserID        string
	SectionID     int
	CorrectCount  int
	TotalCount    int
	LastStudiedAt time.Time
	UpdatedAt     time.Time
}

// AnswerTally counts session answers for one section.
type AnswerTally struct {
	Correct int
	Total   int
}

// ProgressRepo manages session answers and section aggregates.
type ProgressRepo interface {
	// UpsertAnswer inserts or overwrites the row for
	// (user, section, question).
	UpsertAnswer(ctx context.Context, a SessionAnswer) error

	// SectionAnswers returns all session rows for a section.
	SectionAnswers(ctx context.Context, userID string, sectionID int) ([]SessionAnswer, error)

	// TallyAnswers counts session rows and correct ones for a section.
	TallyAnswers(ctx context.Context, userID string, sectionID int) (AnswerTally, error)

	// DeleteAnswers removes a section's session rows, or only the
	// incorrect ones when onlyIncorrect is set. It returns the number
	// of rows removed.
	DeleteAnswers(ctx context.Context, userID string, sectionID int, onlyIncorrect bool) (int64, error)

	// DeleteAnswer removes one session row.
	DeleteAnswer(ctx context.Context, userID string, sectionID, questionID int) (int64, error)

	// PutAggregate overwrites the aggregate row for (user, section).
	PutAggregate(ctx context.Context, a SectionAggregate) error

	// Aggregate returns the aggregate row, or nil when none exists.
	Aggregate(ctx context.Context, userID string, sectionID int) (*SectionAggregate, error)

	// Aggregates returns every aggregate row for the user.
	Aggregates(ctx context.Context, userID string) ([]SectionAggregate, error)

	// DeleteAggregate removes the aggregate row.
	DeleteAggregate(ctx context.Context, userID string, sectionID int) (int64, error)
}

// HistoryRecord is the permanent, section-independent record for a
// question. IsCorrect is nil until the question has been answered.
type HistoryRecord struct {
	UserID     string
	QuestionID int
	IsCorrect  *bool
	Favorites  favorite.Flags
	UpdatedAt  time.Time
}

// HistoryRepo manages history records. Records are never deleted.
type HistoryRepo interface {
	// RecordOutcome upserts is_correct, creating the row with all
	// favorite flags false when absent. Favorite flags are untouched.
	RecordOutcome(ctx context.Context, userID string, questionID int, isCorrect bool, at time.Time) error

	// PutFavorites upserts the favorite flags, creating the row with a
	// NULL is_correct when absent. is_correct is untouched.
	PutFavorites(ctx context.Context, userID string, questionID int, f favorite.Flags, at time.Time) error

	// Get returns one record, or nil when absent.
	Get(ctx context.Context, userID string, questionID int) (*HistoryRecord, error)

	// ForQuestions returns the records among questionIDs keyed by id.
	ForQuestions(ctx context.Context, userID string, questionIDs []int) (map[int]HistoryRecord, error)

	// Incorrect returns every record whose latest outcome is incorrect.
	Incorrect(ctx context.Context, userID string) ([]HistoryRecord, error)

	// Favorited returns every record with at least one favorite flag.
	Favorited(ctx context.Context, userID string) ([]HistoryRecord, error)
}

// SettingsRepo persists favorite filter settings.
type SettingsRepo interface {
	favorite.Repo
}

// MockAttempt is an immutable mock test result.
type MockAttempt struct {
	ID             string
	UserID         string
	ExamID         *int
	Score          int
	TotalQuestions int
	TakenAt        time.Time
}

// MockAnswer is one scored answer within a MockAttempt.
type MockAnswer struct {
	QuestionID int
	UserAnswer string
	IsCorrect  bool
	AnsweredAt time.Time
}

// MockRepo stores mock test attempts. Rows are append-only.
type MockRepo interface {
	// CreateAttempt inserts the attempt and its answers.
	CreateAttempt(ctx context.Context, a MockAttempt, answers []MockAnswer) error

	// Attempts returns the user's attempts, newest first.
	Attempts(ctx context.Context, userID string, limit int) ([]MockAttempt, error)

	// Attempt returns one attempt, or nil when absent.
	Attempt(ctx context.Context, id string) (*MockAttempt, error)

	// Answers returns the answers recorded for an attempt in insert order.
	Answers(ctx context.Context, attemptID string) ([]MockAnswer, error)
}
