package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/mastery"
	"github.com/kakomon/kakomon/internal/ui/components"
	"github.com/kakomon/kakomon/internal/ui/layout"
	"github.com/kakomon/kakomon/internal/ui/theme"
)

func (s *HomeScreen) View(width, height int) string {
	if s.errMsg != "" && !s.loaded {
		return lipgloss.NewStyle().Foreground(theme.Error).Render("\n\n  Error: " + s.errMsg)
	}
	if !s.loaded {
		return theme.Hint.Render("\n\n  Loading sections...")
	}
	if len(s.exams) == 0 {
		return theme.Hint.Render("\n\n  No exams yet. Import one with: kakomon catalog import FILE")
	}

	var lines []string
	selectedLine := 0
	barWidth := 30
	if layout.IsCompactWidth(width) {
		barWidth = 20
	}
	titleWidth := max(width-barWidth-26, 12)

	for i, r := range s.rows {
		if r.exam != nil {
			correct, total := r.exam.Totals()
			head := theme.Title.Render("  "+r.exam.Exam.Title) +
				lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d/%d", correct, total))
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, head)
			continue
		}

		sp := r.section
		prefix := "    "
		style := theme.Unselected
		if i == s.cursor {
			prefix = "  ▸ "
			style = theme.Selected
			selectedLine = len(lines)
		}
		title := fitWidth(sp.Section.Title, titleWidth)
		bar := components.NewProgressBar(sp.CorrectCount, sp.TotalCount, sp.State == mastery.StateCleared, barWidth)
		lines = append(lines, style.Render(prefix+title)+"  "+bar.View()+"  "+stateLabel(sp.State))
	}

	if len(s.rows) == 0 {
		lines = append(lines, theme.Hint.Render("  No sections match the filter."))
	}

	var footer []string
	if s.filter.Focused() || s.filter.Value() != "" {
		footer = append(footer, "  "+s.filter.View())
	}
	if s.status != "" {
		footer = append(footer, lipgloss.NewStyle().Foreground(theme.Accent).Render("  "+s.status))
	}
	if s.errMsg != "" {
		footer = append(footer, lipgloss.NewStyle().Foreground(theme.Error).Render("  "+s.errMsg))
	}

	visible := height - len(footer) - 2
	lines = window(lines, selectedLine, visible)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	if len(footer) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(footer, "\n"))
	}
	return b.String()
}

func stateLabel(st mastery.SectionState) string {
	switch st {
	case mastery.StateCleared:
		return theme.Correct.Render(st.Label())
	case mastery.StateInProgress:
		return lipgloss.NewStyle().Foreground(theme.Accent).Render(st.Label())
	default:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render(st.Label())
	}
}

// window returns at most n lines of lines, scrolled so that line sel is
// visible.
func window(lines []string, sel, n int) []string {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	start := sel - n/2
	if start < 0 {
		start = 0
	}
	if start+n > len(lines) {
		start = len(lines) - n
	}
	return lines[start : start+n]
}

// fitWidth pads or cuts s to exactly w cells.
func fitWidth(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s + strings.Repeat(" ", w-lipgloss.Width(s))
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
