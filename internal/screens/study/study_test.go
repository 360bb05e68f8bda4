package study

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/router"
	"github.com/kakomon/kakomon/internal/screens"
	"github.com/kakomon/kakomon/internal/screens/summary"
	"github.com/kakomon/kakomon/internal/store"
	"github.com/kakomon/kakomon/internal/store/storetest"
	"github.com/kakomon/kakomon/internal/studyset"
)

const user = "learner-1"

type fixture struct {
	svc     *screens.Services
	store   *store.Store
	data    *storetest.Fixture
	section catalog.Section
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := storetest.Open(t)
	f := storetest.Seed(t, s)
	return &fixture{
		svc:     screens.NewServices(s, user, nil),
		store:   s,
		data:    f,
		section: f.Section(1),
	}
}

func (f *fixture) open(t *testing.T, mode studyset.Mode) *StudyScreen {
	t.Helper()
	set, err := f.svc.Composer.Compose(context.Background(), user, f.section.ID, mode)
	require.NoError(t, err)
	require.False(t, set.Empty())
	s := New(f.svc, f.section, set)
	feed(t, s, s.Init())
	return s
}

// feed runs cmd and hands its message back to the screen, returning the
// follow-up command.
func feed(t *testing.T, s *StudyScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		return nil
	}
	_, next := s.Update(cmd())
	return next
}

func press(s *StudyScreen, k tea.KeyPressMsg) tea.Cmd {
	_, cmd := s.Update(k)
	return cmd
}

func letter(k catalog.OptionKey) tea.KeyPressMsg {
	r := rune(strings.ToLower(string(k))[0])
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

var (
	enterKey = tea.KeyPressMsg{Code: tea.KeyEnter}
	escKey   = tea.KeyPressMsg{Code: tea.KeyEscape}
)

func TestStudyScreen_FullPass(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, studyset.ModeNormal)
	qs := f.data.Questions[f.section.ID]

	// Q1 correct.
	feed(t, s, press(s, letter(qs[0].Answer)))
	assert.Equal(t, phaseFeedback, s.phase)
	assert.Contains(t, s.View(100, 30), "Correct!")
	feed(t, s, press(s, enterKey))
	assert.Equal(t, 1, s.index)

	// Q2 wrong.
	feed(t, s, press(s, letter(storetest.WrongKey(qs[1]))))
	view := s.View(100, 30)
	assert.Contains(t, view, "The answer is "+string(qs[1].Answer))
	assert.Contains(t, view, qs[1].Explanation)
	feed(t, s, press(s, enterKey))

	// Q3 correct, then the pass finishes.
	feed(t, s, press(s, letter(qs[2].Answer)))
	finish := press(s, enterKey)
	require.NotNil(t, finish)
	assert.Equal(t, phaseFinishing, s.phase)

	replace := feed(t, s, finish)
	require.NotNil(t, replace)
	msg, ok := replace().(router.ReplaceScreenMsg)
	require.True(t, ok, "expected ReplaceScreenMsg")
	sum, ok := msg.Screen.(*summary.SummaryScreen)
	require.True(t, ok)
	assert.Contains(t, sum.View(100, 30), "2 of 3 correct")

	agg, err := f.store.ProgressRepo().Aggregate(context.Background(), user, f.section.ID)
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Equal(t, 2, agg.CorrectCount)
	assert.Equal(t, 3, agg.TotalCount)
}

func TestStudyScreen_ExitWithoutAnswersPops(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, studyset.ModeNormal)

	cmd := press(s, escKey)
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)

	agg, err := f.store.ProgressRepo().Aggregate(context.Background(), user, f.section.ID)
	require.NoError(t, err)
	assert.Nil(t, agg, "no pass is finished without answers")
}

func TestStudyScreen_EarlyExitFinishesPass(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, studyset.ModeNormal)
	q := f.data.Questions[f.section.ID][0]

	feed(t, s, press(s, letter(q.Answer)))
	finish := press(s, escKey)
	require.NotNil(t, finish)

	replace := feed(t, s, finish)
	require.NotNil(t, replace)
	_, ok := replace().(router.ReplaceScreenMsg)
	assert.True(t, ok)

	agg, err := f.store.ProgressRepo().Aggregate(context.Background(), user, f.section.ID)
	require.NoError(t, err)
	require.NotNil(t, agg)
	assert.Equal(t, 1, agg.CorrectCount)
	assert.Equal(t, 1, agg.TotalCount)
}

func TestStudyScreen_NextWaitsForSave(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, studyset.ModeNormal)
	q := f.data.Questions[f.section.ID][0]

	record := press(s, letter(q.Answer))
	require.NotNil(t, record)
	assert.True(t, s.saving)

	assert.Nil(t, press(s, enterKey))
	assert.Nil(t, press(s, escKey))
	assert.Equal(t, 0, s.index)

	feed(t, s, record)
	assert.False(t, s.saving)
	press(s, enterKey)
	assert.Equal(t, 1, s.index)
}

func TestStudyScreen_ArrowsAndEnter(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, studyset.ModeNormal)
	q := f.data.Questions[f.section.ID][1] // answer B

	feed(t, s, press(s, enterKey))
	feed(t, s, press(s, enterKey))
	require.Equal(t, 1, s.index)

	press(s, tea.KeyPressMsg{Code: tea.KeyDown})
	feed(t, s, press(s, enterKey))
	assert.Equal(t, q.Answer, s.choice.Chosen)
	assert.True(t, s.choice.IsCorrect())
}

func TestStudyScreen_ToggleFavorite(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, studyset.ModeNormal)
	q := f.data.Questions[f.section.ID][0]

	feed(t, s, press(s, tea.KeyPressMsg{Code: '2', Text: "2"}))
	assert.True(t, s.flags.Level2)
	assert.Contains(t, s.View(100, 30), "★2")

	flags, err := f.svc.Mastery.FavoriteStatus(context.Background(), user, q.ID)
	require.NoError(t, err)
	assert.True(t, flags.Level2)
	assert.False(t, flags.Level1)

	feed(t, s, press(s, tea.KeyPressMsg{Code: '2', Text: "2"}))
	assert.False(t, s.flags.Level2)
}

func TestStudyScreen_ShowsPreviousAnswer(t *testing.T) {
	f := newFixture(t)
	q := f.data.Questions[f.section.ID][0]
	wrong := storetest.WrongKey(q)
	require.NoError(t, f.svc.Mastery.RecordAnswer(context.Background(), user, f.section.ID, q.ID, wrong, false))

	s := f.open(t, studyset.ModeNormal)
	assert.Equal(t, wrong, s.choice.Previous)
	assert.Contains(t, s.View(100, 30), "last answer")
}

func TestStudyScreen_IncorrectModeOnlyPresentsMisses(t *testing.T) {
	f := newFixture(t)
	qs := f.data.Questions[f.section.ID]
	ctx := context.Background()
	require.NoError(t, f.svc.Mastery.RecordAnswer(ctx, user, f.section.ID, qs[0].ID, qs[0].Answer, true))
	require.NoError(t, f.svc.Mastery.RecordAnswer(ctx, user, f.section.ID, qs[2].ID, storetest.WrongKey(qs[2]), false))

	s := f.open(t, studyset.ModeIncorrect)
	require.Len(t, s.set.Questions, 1)
	assert.Equal(t, qs[2].ID, s.current().ID)
	assert.Contains(t, s.View(100, 30), "incorrect mode")
}
