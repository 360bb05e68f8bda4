package studyset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncorrectGroupedByExam(t *testing.T) {
	sc := newScenario(t)
	ctx := context.Background()
	f := sc.fixture

	security := f.SecondSection.ID
	q := f.Questions[security][1]
	require.NoError(t, sc.mastery.RecordAnswer(ctx, user, security, q.ID, "A", false))
	db := f.Question(1, 2)
	require.NoError(t, sc.mastery.RecordAnswer(ctx, user, f.Section(1).ID, db.ID, "A", false))

	groups, err := sc.composer.Incorrect(ctx, user)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, f.ExamID, groups[0].Exam.ID)
	require.Len(t, groups[0].Items, 2)
	assert.Equal(t, sc.q(2).ID, groups[0].Items[0].Question.ID)
	assert.Equal(t, db.ID, groups[0].Items[1].Question.ID)
	assert.Equal(t, "Databases", groups[0].Items[1].Section.Title)

	assert.Equal(t, f.SecondExamID, groups[1].Exam.ID)
	require.Len(t, groups[1].Items, 1)
	assert.Equal(t, q.ID, groups[1].Items[0].Question.ID)
	require.NotNil(t, groups[1].Items[0].IsCorrect)
	assert.False(t, *groups[1].Items[0].IsCorrect)
}

func TestFavoritesGrouped(t *testing.T) {
	sc := newScenario(t)
	ctx := context.Background()

	groups, err := sc.composer.Favorites(ctx, user)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 1)
	assert.True(t, groups[0].Items[0].Favorites.Level1)

	none, err := sc.composer.Favorites(ctx, "newcomer")
	require.NoError(t, err)
	assert.Empty(t, none)
}
