package home

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/mastery"
	"github.com/kakomon/kakomon/internal/router"
	"github.com/kakomon/kakomon/internal/screen"
	"github.com/kakomon/kakomon/internal/screens"
	"github.com/kakomon/kakomon/internal/screens/history"
	"github.com/kakomon/kakomon/internal/screens/settings"
	"github.com/kakomon/kakomon/internal/screens/study"
	"github.com/kakomon/kakomon/internal/studyset"
	"github.com/kakomon/kakomon/internal/ui/components"
)

type overviewLoadedMsg struct {
	Exams []mastery.ExamProgress
	Err   error
}

type studySetMsg struct {
	Section catalog.Section
	Set     *studyset.StudySet
	Err     error
}

type resetDoneMsg struct {
	Section catalog.Section
	Err     error
}

type resetKind int

const (
	resetNone resetKind = iota
	resetFull
	resetIncorrect
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Study     key.Binding
	Incorrect key.Binding
	Favorite  key.Binding
	Reset     key.Binding
	ResetMiss key.Binding
	Settings  key.Binding
	History   key.Binding
	Filter    key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "navigate")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Study:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "study")),
		Incorrect: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "incorrect")),
		Favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorites")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		ResetMiss: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset misses")),
		Settings:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		History:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// row is either an exam heading or a section.
type row struct {
	exam    *mastery.ExamProgress
	section *mastery.SectionProgress
}

// HomeScreen lists exams and their sections with the learner's progress.
type HomeScreen struct {
	svc     *screens.Services
	exams   []mastery.ExamProgress
	rows    []row
	cursor  int // index into rows, always a section row when any exist
	filter  components.TextInput
	pending resetKind
	busy    bool
	loaded  bool
	status  string
	errMsg  string
	keys    keyMap
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(svc *screens.Services) *HomeScreen {
	return &HomeScreen{
		svc:    svc,
		filter: components.NewTextInput("/ ", "filter sections", 40),
		keys:   defaultKeys(),
	}
}

func (s *HomeScreen) Init() tea.Cmd {
	return s.load()
}

// Resume reloads progress after a study pass or a settings change.
func (s *HomeScreen) Resume() tea.Cmd {
	return s.load()
}

func (s *HomeScreen) load() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		exams, err := svc.Mastery.Overview(context.Background(), svc.UserID)
		return overviewLoadedMsg{Exams: exams, Err: err}
	}
}

func (s *HomeScreen) Title() string {
	return "Sections"
}

func (s *HomeScreen) KeyHints() []key.Binding {
	if s.filter.Focused() {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		}
	}
	if s.pending != resetNone {
		return []key.Binding{
			key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
			key.NewBinding(key.WithKeys("n"), key.WithHelp("any key", "cancel")),
		}
	}
	k := s.keys
	return []key.Binding{k.Up, k.Study, k.Incorrect, k.Favorite, k.Reset, k.ResetMiss, k.Settings, k.History, k.Filter, k.Quit}
}

func (s *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.exams = msg.Exams
		s.rebuild()
		return s, nil

	case studySetMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if msg.Set.Empty() {
			s.status = emptySetMessage(msg.Set.Mode)
			return s, nil
		}
		s.status = ""
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: study.New(s.svc, msg.Section, msg.Set)}
		}

	case resetDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.status = fmt.Sprintf("Reset %q.", msg.Section.Title)
		return s, s.load()

	case tea.KeyMsg:
		if s.filter.Focused() {
			return s.updateFilter(msg)
		}
		if s.pending != resetNone {
			return s, s.confirmReset(msg)
		}
		if s.busy {
			return s, nil
		}
		return s.handleKey(msg)
	}

	if s.filter.Focused() {
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	s.errMsg = ""
	switch {
	case key.Matches(msg, s.keys.Quit):
		return s, tea.Quit
	case key.Matches(msg, s.keys.Up):
		s.move(-1)
	case key.Matches(msg, s.keys.Down):
		s.move(1)
	case key.Matches(msg, s.keys.Study):
		return s, s.compose(studyset.ModeNormal)
	case key.Matches(msg, s.keys.Incorrect):
		return s, s.compose(studyset.ModeIncorrect)
	case key.Matches(msg, s.keys.Favorite):
		return s, s.compose(studyset.ModeFavorite)
	case key.Matches(msg, s.keys.Reset):
		s.askReset(resetFull)
	case key.Matches(msg, s.keys.ResetMiss):
		s.askReset(resetIncorrect)
	case key.Matches(msg, s.keys.Settings):
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: settings.New(s.svc)}
		}
	case key.Matches(msg, s.keys.History):
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: history.New(s.svc, history.TabIncorrect)}
		}
	case key.Matches(msg, s.keys.Filter):
		s.status = ""
		return s, s.filter.Focus()
	}
	return s, nil
}

func (s *HomeScreen) updateFilter(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.filter.Reset()
		s.filter.Blur()
		s.rebuild()
		return s, nil
	case "enter":
		s.filter.Blur()
		return s, nil
	}
	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	s.rebuild()
	return s, cmd
}

func (s *HomeScreen) askReset(kind resetKind) {
	sec := s.current()
	if sec == nil {
		return
	}
	s.pending = kind
	if kind == resetFull {
		s.status = fmt.Sprintf("Clear all progress in %q? (y/n)", sec.Section.Title)
	} else {
		s.status = fmt.Sprintf("Clear the incorrect answers in %q? (y/n)", sec.Section.Title)
	}
}

func (s *HomeScreen) confirmReset(msg tea.KeyMsg) tea.Cmd {
	kind := s.pending
	s.pending = resetNone
	sec := s.current()
	if msg.String() != "y" || sec == nil {
		s.status = "Reset cancelled."
		return nil
	}

	s.busy = true
	s.status = "Resetting..."
	svc, section := s.svc, sec.Section
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if kind == resetFull {
			err = svc.Mastery.FullReset(ctx, svc.UserID, section.ID)
		} else {
			err = svc.Mastery.IncorrectOnlyReset(ctx, svc.UserID, section.ID)
		}
		return resetDoneMsg{Section: section, Err: err}
	}
}

func (s *HomeScreen) compose(mode studyset.Mode) tea.Cmd {
	sec := s.current()
	if sec == nil {
		return nil
	}
	s.busy = true
	s.status = ""
	svc, section := s.svc, sec.Section
	return func() tea.Msg {
		set, err := svc.Composer.Compose(context.Background(), svc.UserID, section.ID, mode)
		return studySetMsg{Section: section, Set: set, Err: err}
	}
}

func emptySetMessage(mode studyset.Mode) string {
	switch mode {
	case studyset.ModeIncorrect:
		return "No incorrect answers to retry in this section."
	case studyset.ModeFavorite:
		return "No questions in this section match your favorite settings."
	}
	return "This section has no questions."
}

// rebuild recomputes the visible rows from the loaded exams and the filter,
// keeping the cursor on the same section when it is still visible.
func (s *HomeScreen) rebuild() {
	prev := 0
	if sec := s.current(); sec != nil {
		prev = sec.Section.ID
	}

	s.rows = s.rows[:0]
	for ei := range s.exams {
		ep := &s.exams[ei]
		examMatch := s.filter.Matches(ep.Exam.Title)
		heading := false
		for si := range ep.Sections {
			sp := &ep.Sections[si]
			if !examMatch && !s.filter.Matches(sp.Section.Title) {
				continue
			}
			if !heading {
				s.rows = append(s.rows, row{exam: ep})
				heading = true
			}
			s.rows = append(s.rows, row{section: sp})
		}
	}

	s.cursor = 0
	for i, r := range s.rows {
		if r.section != nil && r.section.Section.ID == prev {
			s.cursor = i
			return
		}
	}
	s.move(1)
}

// move shifts the cursor by dir to the next section row.
func (s *HomeScreen) move(dir int) {
	for i := s.cursor + dir; i >= 0 && i < len(s.rows); i += dir {
		if s.rows[i].section != nil {
			s.cursor = i
			return
		}
	}
}

func (s *HomeScreen) current() *mastery.SectionProgress {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return nil
	}
	return s.rows[s.cursor].section
}
