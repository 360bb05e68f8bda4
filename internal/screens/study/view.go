package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	q := s.current()
	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s mode", s.set.Mode))
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d/%d",
			s.index+1, len(s.set.Questions),
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			s.correct, s.answered,
		))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().
		Width(max(width-8, 20)).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Body)
	b.WriteString(indent(body, "  "))
	b.WriteString("\n\n")
	b.WriteString(indent(s.choice.View(), "  "))
	b.WriteString("\n")
	b.WriteString("  " + renderFavorites(s.flags))
	b.WriteString("\n\n")

	switch s.phase {
	case phaseFeedback:
		b.WriteString(s.renderFeedback(width))
	case phaseFinishing:
		b.WriteString(theme.Hint.Render("  Saving pass..."))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + s.errMsg))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *StudyScreen) renderFeedback(width int) string {
	q := s.current()
	var b strings.Builder
	if s.choice.IsCorrect() {
		b.WriteString(theme.Correct.Render("  Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("  Incorrect. The answer is %s.", q.Answer)))
	}
	b.WriteString("\n")
	if q.Explanation != "" {
		expl := lipgloss.NewStyle().
			Width(max(width-8, 20)).
			Foreground(theme.TextDim).
			Render(q.Explanation)
		b.WriteString("\n")
		b.WriteString(indent(expl, "  "))
		b.WriteString("\n")
	}
	if s.saving {
		b.WriteString(theme.Hint.Render("  saving..."))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFavorites shows the three tags, filled when set.
func renderFavorites(f favorite.Flags) string {
	parts := make([]string, 0, len(favorite.Levels))
	for _, l := range favorite.Levels {
		mark := "☆"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if f.Get(l) {
			mark = "★"
			style = theme.FavoriteLevel[l-1]
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s%d", mark, l)))
	}
	return strings.Join(parts, " ")
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
