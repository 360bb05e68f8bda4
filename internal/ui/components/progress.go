package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/kakomon/kakomon/internal/ui/theme"
)

// ProgressBar displays correct/total for a section as a horizontal bar.
type ProgressBar struct {
	Correct int
	Total   int
	Cleared bool
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(correct, total int, cleared bool, width int) ProgressBar {
	return ProgressBar{
		Correct: correct,
		Total:   total,
		Cleared: cleared,
		Width:   width,
	}
}

// Fraction returns correct/total clamped to [0, 1]. An empty pass is 0.
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Correct) / float64(p.Total)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// View renders the bar followed by the count.
func (p ProgressBar) View() string {
	count := fmt.Sprintf(" %d/%d", p.Correct, p.Total)

	barWidth := p.Width - lipgloss.Width(count)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction())
	empty := barWidth - filled

	fill := theme.ProgressFilled
	if p.Cleared {
		fill = theme.ProgressCleared
	}

	return fill.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(count)
}
