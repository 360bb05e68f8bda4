package settings

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/router"
	"github.com/kakomon/kakomon/internal/screen"
	"github.com/kakomon/kakomon/internal/screens"
	"github.com/kakomon/kakomon/internal/ui/components"
	"github.com/kakomon/kakomon/internal/ui/theme"
)

type settingsLoadedMsg struct {
	Settings favorite.Settings
	Err      error
}

type settingsSavedMsg struct {
	Settings favorite.Settings
	Err      error
}

// SettingsScreen edits the favorite filter: which levels count and how
// they combine.
type SettingsScreen struct {
	svc    *screens.Services
	draft  favorite.Settings
	menu   components.Menu
	loaded bool
	dirty  bool
	status string
	errMsg string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a new SettingsScreen.
func New(svc *screens.Services) *SettingsScreen {
	s := &SettingsScreen{svc: svc, draft: favorite.Default()}
	s.rebuildMenu()
	return s
}

func (s *SettingsScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		st, err := svc.Settings.GetOrDefault(context.Background(), svc.UserID)
		return settingsLoadedMsg{Settings: st, Err: err}
	}
}

func (s *SettingsScreen) Title() string {
	return "Favorite Settings"
}

func (s *SettingsScreen) KeyHints() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓", "navigate")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle")),
		key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1/2/3", "level")),
		key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "OR/AND")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (s *SettingsScreen) toggleLevel(l favorite.Level) {
	switch l {
	case favorite.Level1:
		s.draft.Level1Enabled = !s.draft.Level1Enabled
	case favorite.Level2:
		s.draft.Level2Enabled = !s.draft.Level2Enabled
	case favorite.Level3:
		s.draft.Level3Enabled = !s.draft.Level3Enabled
	}
	s.changed()
}

func (s *SettingsScreen) toggleMode() {
	if s.draft.CombineMode == favorite.CombineAND {
		s.draft.CombineMode = favorite.CombineOR
	} else {
		s.draft.CombineMode = favorite.CombineAND
	}
	s.changed()
}

func (s *SettingsScreen) changed() {
	s.dirty = true
	s.status = ""
	s.rebuildMenu()
}

func (s *SettingsScreen) save() tea.Cmd {
	svc, d := s.svc, s.draft
	return func() tea.Msg {
		st, err := svc.Settings.Upsert(context.Background(), svc.UserID,
			d.Level1Enabled, d.Level2Enabled, d.Level3Enabled, string(d.CombineMode))
		return settingsSavedMsg{Settings: st, Err: err}
	}
}

func (s *SettingsScreen) rebuildMenu() {
	selected := s.menu.Selected
	items := make([]components.MenuItem, 0, len(favorite.Levels)+2)
	for _, l := range favorite.Levels {
		mark := "[ ]"
		if s.draft.Enabled(l) {
			mark = "[x]"
		}
		items = append(items, components.MenuItem{
			Label: fmt.Sprintf("%s Level %d", mark, l),
			Action: func() tea.Cmd {
				s.toggleLevel(l)
				return nil
			},
		})
	}
	items = append(items,
		components.MenuItem{
			Label: "Combine: " + modeLabel(s.draft.CombineMode),
			Action: func() tea.Cmd {
				s.toggleMode()
				return nil
			},
		},
		components.MenuItem{
			Label:  "Save",
			Action: s.save,
		},
	)
	s.menu = components.NewMenu(items)
	s.menu.Selected = selected
}

func modeLabel(m favorite.CombineMode) string {
	if m == favorite.CombineAND {
		return "AND (every enabled level)"
	}
	return "OR (any enabled level)"
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.draft = msg.Settings
		s.loaded = true
		s.rebuildMenu()
		return s, nil

	case settingsSavedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.draft = msg.Settings
		s.dirty = false
		s.errMsg = ""
		s.status = "Saved."
		s.svc.Log.Info("favorite settings saved",
			"level1", msg.Settings.Level1Enabled,
			"level2", msg.Settings.Level2Enabled,
			"level3", msg.Settings.Level3Enabled,
			"combine_mode", string(msg.Settings.CombineMode),
		)
		s.rebuildMenu()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "1", "2", "3":
			s.toggleLevel(favorite.Level(msg.String()[0] - '0'))
			return s, nil
		case "m":
			s.toggleMode()
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		s.rebuildMenu()
		return s, cmd
	}
	return s, nil
}

func (s *SettingsScreen) View(width, height int) string {
	if !s.loaded && s.errMsg == "" {
		return theme.Hint.Render("\n\n  Loading settings...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  Favorite study filter"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("  Favorite mode presents the questions whose tags pass this filter."))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View())
	b.WriteString("\n")

	if !s.draft.Level1Enabled && !s.draft.Level2Enabled && !s.draft.Level3Enabled {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).
			Render("  No level enabled: favorite mode will present nothing."))
		b.WriteString("\n")
	}
	switch {
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + s.errMsg))
	case s.dirty:
		b.WriteString(theme.Hint.Render("  Unsaved changes."))
	case s.status != "":
		b.WriteString(theme.Correct.Render("  " + s.status))
	}
	b.WriteString("\n")
	return b.String()
}
