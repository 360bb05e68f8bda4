package mocktest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/store/storetest"
)

func newTestScorer(t *testing.T) (*Scorer, *storetest.Fixture) {
	t.Helper()
	s := storetest.Open(t)
	f := storetest.Seed(t, s)
	return NewScorer(s, nil), f
}

func TestSample(t *testing.T) {
	sc, f := newTestScorer(t)
	ctx := context.Background()

	all, err := sc.Sample(ctx, DefaultCount, nil)
	require.NoError(t, err)
	assert.Len(t, all, 12, "the whole catalog fits in one sample")

	some, err := sc.Sample(ctx, 3, nil)
	require.NoError(t, err)
	assert.Len(t, some, 3)

	second, err := sc.Sample(ctx, DefaultCount, &f.SecondExamID)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, q := range second {
		assert.Equal(t, f.SecondSection.ID, q.SectionID)
	}
}

func TestSample_Errors(t *testing.T) {
	sc, _ := newTestScorer(t)
	ctx := context.Background()

	for _, n := range []int{0, -1, MaxCount + 1} {
		_, err := sc.Sample(ctx, n, nil)
		assert.True(t, apperr.IsValidation(err), "n=%d: %v", n, err)
	}
	missing := 9999
	_, err := sc.Sample(ctx, 5, &missing)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSubmit_ScoresByLiteralKey(t *testing.T) {
	sc, f := newTestScorer(t)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	sc.now = func() time.Time { return at }

	q0, q1, q2 := f.Question(0, 0), f.Question(0, 1), f.Question(1, 0)
	attempt, err := sc.Submit(ctx, "u1", &f.ExamID, []Answer{
		{QuestionID: q0.ID, Answer: string(q0.Answer)},
		{QuestionID: q1.ID, Answer: string(storetest.WrongKey(q1))},
		{QuestionID: q2.ID, Answer: "a"}, // lowercase never matches
	})
	require.NoError(t, err)

	_, err = uuid.Parse(attempt.ID)
	assert.NoError(t, err, "attempt ids are UUIDs")
	assert.Equal(t, 1, attempt.Score)
	assert.Equal(t, 3, attempt.TotalQuestions)
	assert.Equal(t, 33, attempt.Percent())
	require.Len(t, attempt.Results, 3)
	assert.True(t, attempt.Results[0].IsCorrect)
	assert.False(t, attempt.Results[2].IsCorrect)
	assert.Equal(t, q1.Answer, attempt.Results[1].CorrectAnswer)

	got, err := sc.Details(ctx, "u1", attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.Score, got.Score)
	assert.Equal(t, at, got.TakenAt)
	require.NotNil(t, got.ExamID)
	assert.Equal(t, f.ExamID, *got.ExamID)
	assert.Equal(t, attempt.Results, got.Results)
}

func TestSubmit_Errors(t *testing.T) {
	sc, f := newTestScorer(t)
	ctx := context.Background()

	_, err := sc.Submit(ctx, "u1", nil, nil)
	assert.True(t, apperr.IsValidation(err))

	_, err = sc.Submit(ctx, "u1", nil, []Answer{
		{QuestionID: f.Question(0, 0).ID, Answer: "A"},
		{QuestionID: 9999, Answer: "A"},
	})
	assert.True(t, apperr.IsNotFound(err))

	q := f.Question(0, 0)
	_, err = sc.Submit(ctx, "u1", nil, []Answer{
		{QuestionID: q.ID, Answer: string(q.Answer)},
		{QuestionID: f.Question(0, 1).ID, Answer: "A"},
		{QuestionID: q.ID, Answer: string(q.Answer)},
	})
	assert.True(t, apperr.IsValidation(err), "a repeated question must not count twice")

	history, err := sc.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, history, "a rejected submission stores nothing")
}

func TestHistory_NewestFirst(t *testing.T) {
	sc, f := newTestScorer(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	q := f.Question(0, 0)

	for i := 0; i < 12; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		sc.now = func() time.Time { return at }
		sc.newID = func() string { return fmt.Sprintf("attempt-%02d", i) }
		_, err := sc.Submit(ctx, "u1", nil, []Answer{{QuestionID: q.ID, Answer: string(q.Answer)}})
		require.NoError(t, err)
	}

	history, err := sc.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, DefaultHistory)
	assert.Equal(t, "attempt-11", history[0].ID)
	assert.Equal(t, "attempt-02", history[9].ID)
	assert.Empty(t, history[0].Results)

	short, err := sc.History(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Len(t, short, 3)

	other, err := sc.History(ctx, "u2", 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDetails_OtherUser(t *testing.T) {
	sc, f := newTestScorer(t)
	ctx := context.Background()
	q := f.Question(0, 0)

	attempt, err := sc.Submit(ctx, "u1", nil, []Answer{{QuestionID: q.ID, Answer: "B"}})
	require.NoError(t, err)

	_, err = sc.Details(ctx, "u2", attempt.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = sc.Details(ctx, "u1", "missing")
	assert.True(t, apperr.IsNotFound(err))
}
