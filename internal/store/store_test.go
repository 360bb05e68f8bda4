package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/favorite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedSection creates one exam with one section of n questions and
// returns the section id and question ids in rank order.
func seedSection(t *testing.T, s *Store, n int) (int, []int) {
	t.Helper()
	ctx := context.Background()
	repo := s.CatalogRepo()
	examID, err := repo.InsertExam(ctx, catalog.Exam{Title: "Exam", Rank: 1})
	require.NoError(t, err)
	sectionID, err := repo.InsertSection(ctx, catalog.Section{ExamID: examID, Title: "S1", Rank: 1})
	require.NoError(t, err)

	ids := make([]int, n)
	for i := 0; i < n; i++ {
		id, err := repo.InsertQuestion(ctx, catalog.Question{
			SectionID: sectionID,
			Body:      fmt.Sprintf("Q%d", i+1),
			Options:   [4]string{"a", "b", "c", "d"},
			Answer:    catalog.OptionA,
			Rank:      i + 1,
		})
		require.NoError(t, err)
		ids[i] = id
	}
	return sectionID, ids
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := t.TempDir() + "/kakomon.db"
	s1, err := Open(path)
	require.NoError(t, err)
	_, _ = seedSection(t, s1, 1)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	exams, err := s2.CatalogRepo().Exams(context.Background())
	require.NoError(t, err)
	assert.Len(t, exams, 1)
}

func TestCatalogOrderingAndLookups(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.CatalogRepo()

	examID, err := repo.InsertExam(ctx, catalog.Exam{Title: "E", Rank: 1})
	require.NoError(t, err)
	var sectionIDs []int
	for _, rank := range []int{3, 1, 2} {
		id, err := repo.InsertSection(ctx, catalog.Section{ExamID: examID, Title: fmt.Sprintf("rank %d", rank), Rank: rank})
		require.NoError(t, err)
		sectionIDs = append(sectionIDs, id)
	}

	sections, err := repo.Sections(ctx, examID)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, []string{"rank 1", "rank 2", "rank 3"}, []string{sections[0].Title, sections[1].Title, sections[2].Title})

	adj, err := repo.AdjacentSections(ctx, sections[1].ID)
	require.NoError(t, err)
	require.NotNil(t, adj.Previous)
	require.NotNil(t, adj.Next)
	assert.Equal(t, sections[0].ID, adj.Previous.ID)
	assert.Equal(t, sections[2].ID, adj.Next.ID)

	adj, err = repo.AdjacentSections(ctx, sections[0].ID)
	require.NoError(t, err)
	assert.Nil(t, adj.Previous)

	qID, err := repo.InsertQuestion(ctx, catalog.Question{
		SectionID: sectionIDs[0], Body: "Q", Options: [4]string{"a", "b", "c", "d"}, Answer: catalog.OptionD,
	})
	require.NoError(t, err)
	q, err := repo.Question(ctx, qID)
	require.NoError(t, err)
	assert.Equal(t, catalog.OptionD, q.Answer)
	assert.Empty(t, q.Explanation)

	byID, err := repo.QuestionsByID(ctx, []int{qID, 9999})
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	next, err := repo.NextExamRank(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestCatalogNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.CatalogRepo()

	_, err := repo.Exam(ctx, 1)
	assert.True(t, apperr.IsNotFound(err))
	_, err = repo.Section(ctx, 1)
	assert.True(t, apperr.IsNotFound(err))
	_, err = repo.SectionQuestions(ctx, 1)
	assert.True(t, apperr.IsNotFound(err))
	_, err = repo.Question(ctx, 1)
	assert.True(t, apperr.IsNotFound(err))
	_, err = repo.Sections(ctx, 1)
	assert.True(t, apperr.IsNotFound(err))
}

func TestRandomQuestions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, ids := seedSection(t, s, 10)

	got, err := s.CatalogRepo().RandomQuestions(ctx, 4, nil)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	seen := map[int]bool{}
	for _, q := range got {
		assert.Contains(t, ids, q.ID)
		assert.False(t, seen[q.ID], "duplicate question %d", q.ID)
		seen[q.ID] = true
	}

	exams, err := s.CatalogRepo().Exams(ctx)
	require.NoError(t, err)
	examID := exams[0].ID
	all, err := s.CatalogRepo().RandomQuestions(ctx, 50, &examID)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	other := examID + 100
	none, err := s.CatalogRepo().RandomQuestions(ctx, 50, &other)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpsertAnswerIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sectionID, ids := seedSection(t, s, 2)
	repo := s.ProgressRepo()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, ans := range []SessionAnswer{
		{UserID: "u1", SectionID: sectionID, QuestionID: ids[0], Answer: catalog.OptionB, IsCorrect: false, UpdatedAt: t0},
		{UserID: "u1", SectionID: sectionID, QuestionID: ids[0], Answer: catalog.OptionA, IsCorrect: true, UpdatedAt: t0.Add(time.Minute)},
	} {
		require.NoError(t, repo.UpsertAnswer(ctx, ans), "upsert %d", i)
	}

	rows, err := repo.SectionAnswers(ctx, "u1", sectionID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, catalog.OptionA, rows[0].Answer)
	assert.True(t, rows[0].IsCorrect)
	assert.Equal(t, t0.Add(time.Minute), rows[0].UpdatedAt)

	tally, err := repo.TallyAnswers(ctx, "u1", sectionID)
	require.NoError(t, err)
	assert.Equal(t, AnswerTally{Correct: 1, Total: 1}, tally)
}

func TestDeleteAnswers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sectionID, ids := seedSection(t, s, 4)
	repo := s.ProgressRepo()

	for i, id := range ids {
		require.NoError(t, repo.UpsertAnswer(ctx, SessionAnswer{
			UserID: "u1", SectionID: sectionID, QuestionID: id,
			Answer: catalog.OptionA, IsCorrect: i%2 == 0, UpdatedAt: time.Now(),
		}))
	}
	require.NoError(t, repo.UpsertAnswer(ctx, SessionAnswer{
		UserID: "u2", SectionID: sectionID, QuestionID: ids[1], Answer: catalog.OptionC, UpdatedAt: time.Now(),
	}))

	n, err := repo.DeleteAnswers(ctx, "u1", sectionID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	tally, err := repo.TallyAnswers(ctx, "u1", sectionID)
	require.NoError(t, err)
	assert.Equal(t, AnswerTally{Correct: 2, Total: 2}, tally)

	n, err = repo.DeleteAnswer(ctx, "u1", sectionID, ids[0])
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteAnswers(ctx, "u1", sectionID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	other, err := repo.SectionAnswers(ctx, "u2", sectionID)
	require.NoError(t, err)
	assert.Len(t, other, 1, "other users keep their rows")
}

func TestAggregateLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sectionID, _ := seedSection(t, s, 1)
	repo := s.ProgressRepo()

	agg, err := repo.Aggregate(ctx, "u1", sectionID)
	require.NoError(t, err)
	assert.Nil(t, agg)

	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.PutAggregate(ctx, SectionAggregate{
		UserID: "u1", SectionID: sectionID, CorrectCount: 2, TotalCount: 5, LastStudiedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.PutAggregate(ctx, SectionAggregate{
		UserID: "u1", SectionID: sectionID, CorrectCount: 5, TotalCount: 5, LastStudiedAt: now, UpdatedAt: now,
	}))

	agg, err = repo.Aggregate(ctx, "u1", sectionID)
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Equal(t, 5, agg.CorrectCount)
	assert.Equal(t, now, agg.LastStudiedAt)

	all, err := repo.Aggregates(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	err = repo.PutAggregate(ctx, SectionAggregate{UserID: "u1", SectionID: sectionID, CorrectCount: 6, TotalCount: 5})
	assert.Error(t, err, "correct must not exceed total")

	n, err := repo.DeleteAggregate(ctx, "u1", sectionID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.DeleteAggregate(ctx, "u1", sectionID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryOutcomeKeepsFavorites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, ids := seedSection(t, s, 1)
	repo := s.HistoryRepo()
	now := time.Now()

	require.NoError(t, repo.PutFavorites(ctx, "u1", ids[0], favorite.Flags{Level2: true}, now))
	rec, err := repo.Get(ctx, "u1", ids[0])
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Nil(t, rec.IsCorrect, "favorite toggle alone leaves correctness unset")

	require.NoError(t, repo.RecordOutcome(ctx, "u1", ids[0], false, now))
	require.NoError(t, repo.RecordOutcome(ctx, "u1", ids[0], true, now))

	rec, err = repo.Get(ctx, "u1", ids[0])
	require.NoError(t, err)
	require.NotNil(t, rec.IsCorrect)
	assert.True(t, *rec.IsCorrect)
	assert.Equal(t, favorite.Flags{Level2: true}, rec.Favorites)

	require.NoError(t, repo.PutFavorites(ctx, "u1", ids[0], favorite.Flags{Level1: true}, now))
	rec, err = repo.Get(ctx, "u1", ids[0])
	require.NoError(t, err)
	assert.True(t, *rec.IsCorrect, "favorites never touch correctness")
	assert.Equal(t, favorite.Flags{Level1: true}, rec.Favorites)
}

func TestHistoryQueries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, ids := seedSection(t, s, 4)
	repo := s.HistoryRepo()
	now := time.Now()

	require.NoError(t, repo.RecordOutcome(ctx, "u1", ids[0], false, now))
	require.NoError(t, repo.RecordOutcome(ctx, "u1", ids[1], true, now))
	require.NoError(t, repo.PutFavorites(ctx, "u1", ids[2], favorite.Flags{Level3: true}, now))
	require.NoError(t, repo.PutFavorites(ctx, "u1", ids[3], favorite.Flags{}, now))

	incorrect, err := repo.Incorrect(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, incorrect, 1)
	assert.Equal(t, ids[0], incorrect[0].QuestionID)

	fav, err := repo.Favorited(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, fav, 1)
	assert.Equal(t, ids[2], fav[0].QuestionID)

	m, err := repo.ForQuestions(ctx, "u1", ids)
	require.NoError(t, err)
	assert.Len(t, m, 4)

	m, err = repo.ForQuestions(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, m)

	none, err := repo.Get(ctx, "u2", ids[0])
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.SettingsRepo()

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	want := favorite.Settings{Level1Enabled: true, Level3Enabled: true, CombineMode: favorite.CombineAND, UpdatedAt: now}
	require.NoError(t, repo.Put(ctx, "u1", want))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	want.CombineMode = favorite.CombineOR
	require.NoError(t, repo.Put(ctx, "u1", want))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, favorite.CombineOR, got.CombineMode)
}

func TestMockAttempts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, ids := seedSection(t, s, 2)
	repo := s.MockRepo()

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateAttempt(ctx, MockAttempt{
			ID: fmt.Sprintf("a%d", i), UserID: "u1", Score: i, TotalQuestions: 2, TakenAt: base.Add(time.Duration(i) * time.Hour),
		}, []MockAnswer{
			{QuestionID: ids[0], UserAnswer: "A", IsCorrect: true, AnsweredAt: base},
			{QuestionID: ids[1], UserAnswer: "C", IsCorrect: false, AnsweredAt: base},
		}))
	}

	list, err := repo.Attempts(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].ID)
	assert.Equal(t, "a1", list[1].ID)
	assert.Nil(t, list[0].ExamID)

	answers, err := repo.Answers(ctx, "a0")
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, ids[0], answers[0].QuestionID)
	assert.False(t, answers[1].IsCorrect)

	missing, err := repo.Attempt(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInTxRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sectionID, ids := seedSection(t, s, 1)
	boom := errors.New("boom")

	err := s.InTx(ctx, func(r Repos) error {
		if err := r.ProgressRepo().UpsertAnswer(ctx, SessionAnswer{
			UserID: "u1", SectionID: sectionID, QuestionID: ids[0], Answer: catalog.OptionA, IsCorrect: true, UpdatedAt: time.Now(),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := s.ProgressRepo().SectionAnswers(ctx, "u1", sectionID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEnsureUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.UserRepo()

	require.NoError(t, repo.Ensure(ctx, User{ID: "u1", Email: "a@example.com"}))
	require.NoError(t, repo.Ensure(ctx, User{ID: "u1"}))
	require.NoError(t, repo.Ensure(ctx, User{ID: "u1", Name: "Aki"}))

	u, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "Aki", u.Name)

	missing, err := repo.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
