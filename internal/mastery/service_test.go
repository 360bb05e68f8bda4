package mastery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/store"
	"github.com/kakomon/kakomon/internal/store/storetest"
)

const user = "learner-1"

func newTestService(t *testing.T) (*Service, *store.Store, *storetest.Fixture) {
	t.Helper()
	s := storetest.Open(t)
	f := storetest.Seed(t, s)
	svc := NewService(s, nil)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, s, f
}

// answer records q as answered correctly or with a wrong key.
func answer(t *testing.T, svc *Service, sectionID int, q catalog.Question, correct bool) {
	t.Helper()
	key := q.Answer
	if !correct {
		key = storetest.WrongKey(q)
	}
	if err := svc.RecordAnswer(context.Background(), user, sectionID, q.ID, key, q.IsCorrect(key)); err != nil {
		t.Fatalf("record answer for question %d: %v", q.ID, err)
	}
}

func TestRecordAnswer_IdempotentUpsert(t *testing.T) {
	svc, s, f := newTestService(t)
	ctx := context.Background()
	sec := f.Section(0)
	q := f.Question(0, 0)

	answer(t, svc, sec.ID, q, false)
	answer(t, svc, sec.ID, q, false)

	rows, err := s.ProgressRepo().SectionAnswers(ctx, user, sec.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsCorrect)
	assert.Equal(t, storetest.WrongKey(q), rows[0].Answer)

	answer(t, svc, sec.ID, q, true)
	rows, err = s.ProgressRepo().SectionAnswers(ctx, user, sec.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsCorrect)

	rec, err := s.HistoryRepo().Get(ctx, user, q.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.IsCorrect)
	assert.True(t, *rec.IsCorrect, "a correct answer overwrites an earlier incorrect outcome")
	assert.Equal(t, favorite.Flags{}, rec.Favorites)
}

func TestRecordAnswer_DoesNotTouchAggregate(t *testing.T) {
	svc, s, f := newTestService(t)
	sec := f.Section(0)

	answer(t, svc, sec.ID, f.Question(0, 0), true)

	agg, err := s.ProgressRepo().Aggregate(context.Background(), user, sec.ID)
	require.NoError(t, err)
	assert.Nil(t, agg)
}

func TestRecordAnswer_Validation(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()
	sec := f.Section(0)
	q := f.Question(0, 0)
	other := f.Question(1, 0)

	tests := []struct {
		name    string
		section int
		qID     int
		answer  catalog.OptionKey
		check   func(error) bool
	}{
		{"bad key", sec.ID, q.ID, "E", apperr.IsValidation},
		{"empty key", sec.ID, q.ID, "", apperr.IsValidation},
		{"unknown section", 9999, q.ID, catalog.OptionA, apperr.IsNotFound},
		{"unknown question", sec.ID, 9999, catalog.OptionA, apperr.IsNotFound},
		{"question from another section", sec.ID, other.ID, catalog.OptionA, apperr.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RecordAnswer(ctx, user, tt.section, tt.qID, tt.answer, false)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestRecordAnswer_LowercaseKey(t *testing.T) {
	svc, s, f := newTestService(t)
	ctx := context.Background()
	sec := f.Section(0)
	q := f.Question(0, 1)

	require.NoError(t, svc.RecordAnswer(ctx, user, sec.ID, q.ID, "b", true))
	rows, err := s.ProgressRepo().SectionAnswers(ctx, user, sec.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, catalog.OptionB, rows[0].Answer)
}

func TestFinishPass_CountsDistinctQuestions(t *testing.T) {
	svc, s, f := newTestService(t)
	ctx := context.Background()
	sec := f.Section(0)

	answer(t, svc, sec.ID, f.Question(0, 0), false)
	answer(t, svc, sec.ID, f.Question(0, 0), true)
	answer(t, svc, sec.ID, f.Question(0, 1), false)
	answer(t, svc, sec.ID, f.Question(0, 2), true)

	tally, err := svc.FinishPass(ctx, user, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, Tally{CorrectCount: 2, TotalCount: 3}, tally)

	again, err := svc.FinishPass(ctx, user, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, tally, again)

	agg, err := s.ProgressRepo().Aggregate(ctx, user, sec.ID)
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Equal(t, 2, agg.CorrectCount)
	assert.Equal(t, 3, agg.TotalCount)
	assert.LessOrEqual(t, agg.CorrectCount, agg.TotalCount)
}

func TestFinishPass_EmptySection(t *testing.T) {
	svc, _, f := newTestService(t)

	tally, err := svc.FinishPass(context.Background(), user, f.Section(1).ID)
	require.NoError(t, err)
	assert.Equal(t, Tally{}, tally)

	_, err = svc.FinishPass(context.Background(), user, 9999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestToggleFavorite_RoundTrip(t *testing.T) {
	svc, s, f := newTestService(t)
	ctx := context.Background()
	q := f.Question(0, 4)

	flags, err := svc.ToggleFavorite(ctx, user, q.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, favorite.Flags{Level2: true}, flags)

	rec, err := s.HistoryRepo().Get(ctx, user, q.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Nil(t, rec.IsCorrect, "toggling never sets correctness")

	flags, err = svc.ToggleFavorite(ctx, user, q.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, favorite.Flags{Level2: true, Level3: true}, flags)

	flags, err = svc.ToggleFavorite(ctx, user, q.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, favorite.Flags{Level3: true}, flags)

	status, err := svc.FavoriteStatus(ctx, user, q.ID)
	require.NoError(t, err)
	assert.Equal(t, flags, status)
}

func TestToggleFavorite_KeepsCorrectness(t *testing.T) {
	svc, s, f := newTestService(t)
	ctx := context.Background()
	sec := f.Section(0)
	q := f.Question(0, 2)

	answer(t, svc, sec.ID, q, false)
	_, err := svc.ToggleFavorite(ctx, user, q.ID, 1)
	require.NoError(t, err)

	rec, err := s.HistoryRepo().Get(ctx, user, q.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.IsCorrect)
	assert.False(t, *rec.IsCorrect)

	answer(t, svc, sec.ID, q, true)
	rec, err = s.HistoryRepo().Get(ctx, user, q.ID)
	require.NoError(t, err)
	assert.True(t, rec.Favorites.Level1, "answering keeps favorite flags")
}

func TestToggleFavorite_Errors(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()

	for _, level := range []int{0, 4, -1} {
		_, err := svc.ToggleFavorite(ctx, user, f.Question(0, 0).ID, level)
		assert.True(t, apperr.IsValidation(err), "level %d: %v", level, err)
	}
	_, err := svc.ToggleFavorite(ctx, user, 9999, 1)
	assert.True(t, apperr.IsNotFound(err))
}

func TestFavoriteStatus_NoRecord(t *testing.T) {
	svc, _, f := newTestService(t)

	flags, err := svc.FavoriteStatus(context.Background(), user, f.Question(1, 0).ID)
	require.NoError(t, err)
	assert.False(t, flags.Any())

	_, err = svc.FavoriteStatus(context.Background(), user, 9999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestExamProgress(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()
	sec := f.Section(0)

	for j := 0; j < 4; j++ {
		answer(t, svc, sec.ID, f.Question(0, j), j != 3)
	}
	_, err := svc.FinishPass(ctx, user, sec.ID)
	require.NoError(t, err)

	p, err := svc.ExamProgress(ctx, user, f.ExamID)
	require.NoError(t, err)
	require.Len(t, p.Sections, 2)
	assert.Equal(t, sec.ID, p.Sections[0].Section.ID)
	assert.Equal(t, 3, p.Sections[0].CorrectCount)
	assert.Equal(t, 4, p.Sections[0].TotalCount)
	assert.Equal(t, 75, p.Sections[0].Percent())
	assert.Equal(t, StateInProgress, p.Sections[0].State)
	assert.NotNil(t, p.Sections[0].LastStudiedAt)
	assert.Equal(t, StateNew, p.Sections[1].State)
	assert.Nil(t, p.Sections[1].LastStudiedAt)

	correct, total := p.Totals()
	assert.Equal(t, 3, correct)
	assert.Equal(t, 4, total)
	assert.InDelta(t, 0.75, p.Average(), 1e-9)

	overview, err := svc.Overview(ctx, user)
	require.NoError(t, err)
	assert.Len(t, overview, 2)

	_, err = svc.ExamProgress(ctx, user, 9999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSectionProgress_OtherUserIsolated(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()
	sec := f.Section(0)

	answer(t, svc, sec.ID, f.Question(0, 0), true)
	_, err := svc.FinishPass(ctx, user, sec.ID)
	require.NoError(t, err)

	mine, err := svc.SectionProgress(ctx, user, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCleared, mine.State)

	theirs, err := svc.SectionProgress(ctx, "someone-else", sec.ID)
	require.NoError(t, err)
	assert.Equal(t, StateNew, theirs.State)
	assert.Zero(t, theirs.TotalCount)
}
