package history

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/router"
	"github.com/kakomon/kakomon/internal/screen"
	"github.com/kakomon/kakomon/internal/screens"
	"github.com/kakomon/kakomon/internal/studyset"
	"github.com/kakomon/kakomon/internal/ui/theme"
)

// Tab selects which list is shown.
type Tab int

const (
	TabIncorrect Tab = iota
	TabFavorite
)

func (t Tab) label() string {
	if t == TabFavorite {
		return "Favorites"
	}
	return "Incorrect"
}

type historyLoadedMsg struct {
	Tab    Tab
	Groups []studyset.ExamGroup
	Err    error
}

// row is either an exam heading or a question.
type row struct {
	exam *catalog.Exam
	item *studyset.HistoryItem
}

// HistoryScreen lists questions last answered incorrectly, or tagged as
// favorites, grouped by exam.
type HistoryScreen struct {
	svc      *screens.Services
	tab      Tab
	rows     []row
	count    int
	selected int // index into rows, always an item row
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen showing tab first.
func New(svc *screens.Services, tab Tab) *HistoryScreen {
	return &HistoryScreen{
		svc:      svc,
		tab:      tab,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	svc, tab := s.svc, s.tab
	return func() tea.Msg {
		ctx := context.Background()
		var groups []studyset.ExamGroup
		var err error
		if tab == TabFavorite {
			groups, err = svc.Composer.Favorites(ctx, svc.UserID)
		} else {
			groups, err = svc.Composer.Incorrect(ctx, svc.UserID)
		}
		return historyLoadedMsg{Tab: tab, Groups: groups, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "incorrect/favorites")),
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓", "navigate")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Tab != s.tab {
			return s, nil
		}
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.setGroups(msg.Groups)
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab":
			s.tab = 1 - s.tab
			s.loaded = false
			s.rows = nil
			s.expanded = make(map[int]bool)
			return s, s.load()
		case "up", "k":
			s.move(-1)
			return s, nil
		case "down", "j":
			s.move(1)
			return s, nil
		case "enter":
			if it := s.current(); it != nil {
				s.expanded[it.Question.ID] = !s.expanded[it.Question.ID]
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) setGroups(groups []studyset.ExamGroup) {
	s.rows = s.rows[:0]
	s.count = 0
	for gi := range groups {
		g := &groups[gi]
		s.rows = append(s.rows, row{exam: &g.Exam})
		for ii := range g.Items {
			s.rows = append(s.rows, row{item: &g.Items[ii]})
			s.count++
		}
	}
	s.selected = 0
	s.move(1)
}

// move shifts the selection by dir to the next item row, staying put when
// there is none.
func (s *HistoryScreen) move(dir int) {
	for i := s.selected + dir; i >= 0 && i < len(s.rows); i += dir {
		if s.rows[i].item != nil {
			s.selected = i
			return
		}
	}
}

func (s *HistoryScreen) current() *studyset.HistoryItem {
	if s.selected < 0 || s.selected >= len(s.rows) {
		return nil
	}
	return s.rows[s.selected].item
}

func (s *HistoryScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderTabs())
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  Error: " + s.errMsg))
		return b.String()
	case !s.loaded:
		b.WriteString(theme.Hint.Render("  Loading history..."))
		return b.String()
	case s.count == 0:
		if s.tab == TabFavorite {
			b.WriteString(theme.Hint.Render("  No favorites yet. Press 1, 2 or 3 while studying to tag a question."))
		} else {
			b.WriteString(theme.Hint.Render("  Nothing to retry. Every answered question was last answered correctly."))
		}
		return b.String()
	}

	for i, r := range s.rows {
		if r.exam != nil {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(theme.Title.Render("  " + r.exam.Title))
			b.WriteString("\n")
			continue
		}

		it := r.item
		prefix := "    "
		style := theme.Unselected
		if i == s.selected {
			prefix = "  ▸ "
			style = theme.Selected
		}
		line := fmt.Sprintf("%s%s · %s", prefix, it.Section.Title, firstLine(it.Question.Body, width-30))
		b.WriteString(style.Render(line))
		b.WriteString(" ")
		b.WriteString(renderFlags(it.Favorites))
		b.WriteString("\n")

		if s.expanded[it.Question.ID] {
			b.WriteString(renderDetail(it, width))
		}
	}
	return b.String()
}

func (s *HistoryScreen) renderTabs() string {
	var parts []string
	for _, t := range []Tab{TabIncorrect, TabFavorite} {
		label := " " + t.label() + " "
		if t == s.tab {
			parts = append(parts, theme.ButtonActive.Render(label))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.TextDim).Padding(0, 2).Render(label))
		}
	}
	out := "  " + strings.Join(parts, " ")
	if s.loaded && s.errMsg == "" {
		out += lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("   %d questions", s.count))
	}
	return out
}

func renderDetail(it *studyset.HistoryItem, width int) string {
	q := it.Question
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var b strings.Builder
	body := lipgloss.NewStyle().Width(max(width-10, 20)).Foreground(theme.Text).Render(q.Body)
	for _, l := range strings.Split(body, "\n") {
		b.WriteString("      " + l + "\n")
	}
	for i, k := range catalog.OptionKeys {
		line := fmt.Sprintf("      %s)  %s", k, q.Options[i])
		if k == q.Answer {
			b.WriteString(theme.Correct.Render(line))
		} else {
			b.WriteString(dim.Render(line))
		}
		b.WriteString("\n")
	}
	if q.Explanation != "" {
		b.WriteString(dim.Render("      " + q.Explanation))
		b.WriteString("\n")
	}
	return b.String()
}

func renderFlags(f favorite.Flags) string {
	var parts []string
	for _, l := range favorite.Levels {
		if f.Get(l) {
			parts = append(parts, theme.FavoriteLevel[l-1].Render(fmt.Sprintf("★%d", l)))
		}
	}
	return strings.Join(parts, " ")
}

// firstLine returns the first line of s cut to n runes.
func firstLine(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if n > 1 && len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
