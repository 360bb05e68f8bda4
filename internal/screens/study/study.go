package study

import (
	"context"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/router"
	"github.com/kakomon/kakomon/internal/screen"
	"github.com/kakomon/kakomon/internal/screens"
	"github.com/kakomon/kakomon/internal/screens/summary"
	"github.com/kakomon/kakomon/internal/studyset"
	"github.com/kakomon/kakomon/internal/ui/components"
)

type phase int

const (
	phaseAnswering phase = iota
	phaseFeedback
	phaseFinishing
)

type keyMap struct {
	Choose    key.Binding
	Next      key.Binding
	Favorite1 key.Binding
	Favorite2 key.Binding
	Favorite3 key.Binding
	Exit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Choose:    key.NewBinding(key.WithKeys("a", "b", "c", "d"), key.WithHelp("a-d", "answer")),
		Next:      key.NewBinding(key.WithKeys("enter", "n", "space"), key.WithHelp("enter", "next")),
		Favorite1: key.NewBinding(key.WithKeys("1"), key.WithHelp("1/2/3", "favorite")),
		Favorite2: key.NewBinding(key.WithKeys("2")),
		Favorite3: key.NewBinding(key.WithKeys("3")),
		Exit:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "finish")),
	}
}

// StudyScreen presents a study set one question at a time.
type StudyScreen struct {
	svc     *screens.Services
	section catalog.Section
	set     *studyset.StudySet
	passID  string
	started time.Time

	index  int
	phase  phase
	choice components.MultiChoice
	flags  favorite.Flags
	saving bool

	answered int
	correct  int
	errMsg   string
	keys     keyMap
	now      func() time.Time
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)

// New creates a study screen for a non-empty set composed for section.
func New(svc *screens.Services, section catalog.Section, set *studyset.StudySet) *StudyScreen {
	s := &StudyScreen{
		svc:     svc,
		section: section,
		set:     set,
		passID:  uuid.NewString(),
		keys:    defaultKeys(),
		now:     time.Now,
	}
	s.choice = s.newChoice()
	return s
}

func (s *StudyScreen) Init() tea.Cmd {
	s.started = s.now()
	s.svc.Log.Info("pass started",
		"pass_id", s.passID,
		"section_id", s.section.ID,
		"mode", s.set.Mode.String(),
		"questions", len(s.set.Questions),
	)
	return s.loadFavorites()
}

func (s *StudyScreen) Title() string {
	return s.section.Title
}

func (s *StudyScreen) KeyHints() []key.Binding {
	switch s.phase {
	case phaseAnswering:
		return []key.Binding{
			key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓", "select")),
			s.keys.Choose, s.keys.Favorite1, s.keys.Exit,
		}
	case phaseFeedback:
		return []key.Binding{s.keys.Next, s.keys.Favorite1, s.keys.Exit}
	}
	return nil
}

func (s *StudyScreen) current() catalog.Question {
	return s.set.Questions[s.index]
}

func (s *StudyScreen) newChoice() components.MultiChoice {
	q := s.current()
	mc := components.NewMultiChoice(q)
	if p, ok := s.set.Progress(q.ID); ok {
		mc.Previous = p.Answer
	}
	return mc
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case answerRecordedMsg:
		s.saving = false
		if msg.Err != nil {
			s.answered--
			s.errMsg = "Could not save answer: " + msg.Err.Error()
		}
		return s, nil

	case favoritesMsg:
		if msg.Err != nil {
			s.errMsg = "Could not update favorites: " + msg.Err.Error()
			return s, nil
		}
		if msg.QuestionID == s.current().ID {
			s.flags = msg.Flags
		}
		return s, nil

	case passFinishedMsg:
		if msg.Err != nil {
			s.phase = phaseFeedback
			s.errMsg = "Could not finish pass: " + msg.Err.Error()
			return s, nil
		}
		s.svc.Log.Info("pass finished",
			"pass_id", s.passID,
			"section_id", s.section.ID,
			"correct", msg.Tally.CorrectCount,
			"total", msg.Tally.TotalCount,
		)
		pass := summary.Pass{
			Section:  s.section,
			Mode:     s.set.Mode,
			Tally:    msg.Tally,
			Answered: s.answered,
			Correct:  s.correct,
			Duration: s.now().Sub(s.started),
		}
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(pass)}
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.phase == phaseFinishing {
		return s, nil
	}

	switch {
	case key.Matches(msg, s.keys.Favorite1):
		return s, s.toggleFavorite(favorite.Level1)
	case key.Matches(msg, s.keys.Favorite2):
		return s, s.toggleFavorite(favorite.Level2)
	case key.Matches(msg, s.keys.Favorite3):
		return s, s.toggleFavorite(favorite.Level3)
	case key.Matches(msg, s.keys.Exit):
		if s.saving {
			return s, nil
		}
		if s.answered == 0 {
			s.svc.Log.Info("pass abandoned", "pass_id", s.passID, "section_id", s.section.ID)
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, s.finish()
	}

	if s.phase == phaseFeedback {
		if key.Matches(msg, s.keys.Next) && !s.saving {
			return s, s.advance()
		}
		return s, nil
	}

	s.choice, _ = s.choice.Update(msg)
	if !s.choice.Submitted {
		return s, nil
	}
	return s, s.submit()
}

// submit grades the chosen option and records it.
func (s *StudyScreen) submit() tea.Cmd {
	q := s.current()
	chosen := s.choice.Chosen
	isCorrect := q.IsCorrect(chosen)

	s.choice.Reveal(q.Answer)
	s.phase = phaseFeedback
	s.saving = true
	s.answered++
	if isCorrect {
		s.correct++
	}

	svc, sectionID := s.svc, s.section.ID
	return func() tea.Msg {
		err := svc.Mastery.RecordAnswer(context.Background(), svc.UserID, sectionID, q.ID, chosen, isCorrect)
		return answerRecordedMsg{Err: err}
	}
}

// advance moves to the next question, or finishes after the last one.
func (s *StudyScreen) advance() tea.Cmd {
	s.errMsg = ""
	if s.index+1 >= len(s.set.Questions) {
		return s.finish()
	}
	s.index++
	s.phase = phaseAnswering
	s.flags = favorite.Flags{}
	s.choice = s.newChoice()
	return s.loadFavorites()
}

func (s *StudyScreen) finish() tea.Cmd {
	s.phase = phaseFinishing
	svc, sectionID := s.svc, s.section.ID
	return func() tea.Msg {
		t, err := svc.Mastery.FinishPass(context.Background(), svc.UserID, sectionID)
		return passFinishedMsg{Tally: t, Err: err}
	}
}

func (s *StudyScreen) loadFavorites() tea.Cmd {
	svc, qid := s.svc, s.current().ID
	return func() tea.Msg {
		f, err := svc.Mastery.FavoriteStatus(context.Background(), svc.UserID, qid)
		return favoritesMsg{QuestionID: qid, Flags: f, Err: err}
	}
}

func (s *StudyScreen) toggleFavorite(l favorite.Level) tea.Cmd {
	svc, qid := s.svc, s.current().ID
	return func() tea.Msg {
		f, err := svc.Mastery.ToggleFavorite(context.Background(), svc.UserID, qid, int(l))
		return favoritesMsg{QuestionID: qid, Flags: f, Err: err}
	}
}
