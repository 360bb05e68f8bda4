package summary

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/mastery"
	"github.com/kakomon/kakomon/internal/router"
	"github.com/kakomon/kakomon/internal/screen"
	"github.com/kakomon/kakomon/internal/store"
	"github.com/kakomon/kakomon/internal/studyset"
	"github.com/kakomon/kakomon/internal/ui/components"
	"github.com/kakomon/kakomon/internal/ui/theme"
)

// Pass describes a finished study pass.
type Pass struct {
	Section  catalog.Section
	Mode     studyset.Mode
	Tally    mastery.Tally
	Answered int // answers given in this run
	Correct  int // correct answers in this run
	Duration time.Duration
}

// State is the section state the tally leaves behind.
func (p Pass) State() mastery.SectionState {
	return mastery.ResolveState(&store.SectionAggregate{
		CorrectCount: p.Tally.CorrectCount,
		TotalCount:   p.Tally.TotalCount,
	})
}

// SummaryScreen displays the result of a study pass.
type SummaryScreen struct {
	pass   Pass
	button components.Button
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(pass Pass) *SummaryScreen {
	return &SummaryScreen{
		pass: pass,
		button: components.NewButton("Back to sections", func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}, "enter"),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Pass Summary"
}

func (s *SummaryScreen) KeyHints() []key.Binding {
	return []key.Binding{
		s.button.Binding,
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	var cmd tea.Cmd
	s.button, cmd = s.button.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) View(width, height int) string {
	p := s.pass
	center := func(str string, style lipgloss.Style) string {
		return style.Width(width).Align(lipgloss.Center).Render(str)
	}

	var b strings.Builder
	b.WriteString("\n")

	headline := "Pass complete!"
	if p.State() == mastery.StateCleared {
		headline = "Section cleared!"
	}
	b.WriteString(center(headline, theme.Title))
	b.WriteString("\n")
	b.WriteString(center(fmt.Sprintf("%s  ·  %s mode", p.Section.Title, p.Mode), lipgloss.NewStyle().Foreground(theme.TextDim)))
	b.WriteString("\n\n")

	bar := components.NewProgressBar(p.Tally.CorrectCount, p.Tally.TotalCount, p.State() == mastery.StateCleared, 40)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	stat := lipgloss.NewStyle().Foreground(theme.Text)
	b.WriteString(center(fmt.Sprintf("Section: %d of %d correct", p.Tally.CorrectCount, p.Tally.TotalCount), stat))
	b.WriteString("\n")
	b.WriteString(center(fmt.Sprintf("This run: %d answered, %d correct", p.Answered, p.Correct), stat))
	b.WriteString("\n")
	mins := int(p.Duration.Minutes())
	secs := int(p.Duration.Seconds()) % 60
	b.WriteString(center(fmt.Sprintf("Time: %d:%02d", mins, secs), stat))
	b.WriteString("\n")
	b.WriteString(center("State: "+p.State().Label(), stateStyle(p.State())))
	b.WriteString("\n\n")

	if p.Tally.CorrectCount < p.Tally.TotalCount {
		b.WriteString(center("Press i on the section to retry the questions you missed.", theme.Hint))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.button.View()))
	b.WriteString("\n")
	return b.String()
}

func stateStyle(st mastery.SectionState) lipgloss.Style {
	switch st {
	case mastery.StateCleared:
		return theme.Correct
	case mastery.StateInProgress:
		return lipgloss.NewStyle().Foreground(theme.Accent)
	default:
		return lipgloss.NewStyle().Foreground(theme.TextDim)
	}
}
