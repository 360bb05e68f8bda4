package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/kakomon/kakomon/internal/catalog"
)

func pressKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func sampleQuestion() catalog.Question {
	return catalog.Question{
		Body:    "Which layer routes packets?",
		Options: [4]string{"Physical", "Data link", "Network", "Transport"},
		Answer:  catalog.OptionC,
	}
}

func TestMultiChoiceDirectKey(t *testing.T) {
	mc := NewMultiChoice(sampleQuestion())

	mc, _ = mc.Update(pressKey('c'))
	assert.True(t, mc.Submitted)
	assert.Equal(t, catalog.OptionC, mc.Chosen)
	assert.Equal(t, 2, mc.Selected)

	// Further keys are ignored once submitted.
	mc, _ = mc.Update(pressKey('a'))
	assert.Equal(t, catalog.OptionC, mc.Chosen)
}

func TestMultiChoiceArrowsAndEnter(t *testing.T) {
	mc := NewMultiChoice(sampleQuestion())

	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, mc.Selected, "selection stops at the last option")

	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.False(t, mc.Submitted)

	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, mc.Submitted)
	assert.Equal(t, catalog.OptionC, mc.Chosen)
}

func TestMultiChoiceIsCorrect(t *testing.T) {
	mc := NewMultiChoice(sampleQuestion())
	mc, _ = mc.Update(pressKey('b'))
	assert.False(t, mc.IsCorrect(), "unknown until revealed")

	mc.Reveal(catalog.OptionC)
	assert.False(t, mc.IsCorrect())

	mc = NewMultiChoice(sampleQuestion())
	mc, _ = mc.Update(pressKey('C'))
	mc.Reveal(catalog.OptionC)
	assert.True(t, mc.IsCorrect())
}

func TestMultiChoiceViewListsOptions(t *testing.T) {
	mc := NewMultiChoice(sampleQuestion())
	mc.Previous = catalog.OptionA
	view := mc.View()
	for _, want := range []string{"A)  Physical", "D)  Transport", "last answer"} {
		assert.True(t, strings.Contains(view, want), "missing %q", want)
	}
}

func TestProgressBarFraction(t *testing.T) {
	assert.Equal(t, 0.0, NewProgressBar(0, 0, false, 20).Fraction())
	assert.Equal(t, 0.5, NewProgressBar(2, 4, false, 20).Fraction())
	assert.Equal(t, 1.0, NewProgressBar(5, 3, true, 20).Fraction())
	assert.Contains(t, NewProgressBar(3, 7, false, 20).View(), "3/7")
}

func TestTextInputMatches(t *testing.T) {
	ti := NewTextInput("/ ", "filter", 40)
	assert.True(t, ti.Matches("Anything"))

	ti.Model.SetValue("  net ")
	assert.True(t, ti.Matches("Networks"))
	assert.False(t, ti.Matches("Databases"))

	ti.Reset()
	assert.Equal(t, "", ti.Value())
}

func TestMenuSkipsDisabled(t *testing.T) {
	pressed := ""
	m := NewMenu([]MenuItem{
		{Label: "one", Disabled: true},
		{Label: "two", Action: func() tea.Cmd { pressed = "two"; return nil }},
		{Label: "three", Disabled: true},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "two", pressed)
}

func TestButtonPressesOnBoundKeys(t *testing.T) {
	pressed := 0
	b := NewButton("Back to sections", func() tea.Cmd {
		pressed++
		return nil
	}, "enter", "b")

	b, _ = b.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	b, _ = b.Update(pressKey('b'))
	b, _ = b.Update(pressKey('x'))
	assert.Equal(t, 2, pressed)
	assert.Equal(t, "Back to sections", b.Label())
	assert.Contains(t, b.View(), "[enter] Back to sections")
}

func TestButtonDisabled(t *testing.T) {
	pressed := false
	b := NewButton("Save", func() tea.Cmd {
		pressed = true
		return nil
	})
	b.SetDisabled(true)

	b, _ = b.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.False(t, pressed)
	assert.False(t, b.Binding.Enabled())

	b.SetDisabled(false)
	b.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, pressed)
}
