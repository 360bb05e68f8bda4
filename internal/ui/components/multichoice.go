package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/ui/theme"
)

// MultiChoice is the A-D option selector for one question.
type MultiChoice struct {
	Options   [4]string
	Selected  int
	Submitted bool
	Chosen    catalog.OptionKey

	// Answer is the key revealed after submission, if known.
	Answer catalog.OptionKey
	// Previous is an earlier answer shown as a marker, if any.
	Previous catalog.OptionKey
}

// NewMultiChoice creates a selector for the options of q.
func NewMultiChoice(q catalog.Question) MultiChoice {
	return MultiChoice{Options: q.Options}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles arrow navigation, enter, and direct a-d selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch s := kmsg.String(); s {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
		m.Chosen = catalog.OptionKeys[m.Selected]
	case "a", "b", "c", "d", "A", "B", "C", "D":
		k, _ := catalog.ParseOptionKey(s)
		m.Selected = k.Index()
		m.Submitted = true
		m.Chosen = k
	}

	return m, nil
}

// Reveal marks answer as the correct key for rendering.
func (m *MultiChoice) Reveal(answer catalog.OptionKey) {
	m.Answer = answer
}

// View renders the options. After submission the correct option is green
// and a wrong choice is red.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		k := catalog.OptionKeys[i]
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s)  %s", prefix, k, opt)
		if !m.Submitted && k == m.Previous {
			line += lipgloss.NewStyle().Foreground(theme.TextDim).Render("  (last answer)")
		}

		var style lipgloss.Style
		switch {
		case m.Submitted && k == m.Answer:
			style = theme.Correct
		case m.Submitted && k == m.Chosen:
			style = theme.Incorrect
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// IsCorrect returns true if the chosen option is the revealed answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.Answer != "" && m.Chosen == m.Answer
}
