package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput as a single-line filter box.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput creates a blurred input with the given prompt and limit.
func NewTextInput(prompt, placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextInput{Model: ti}
}

// Focus starts accepting keystrokes.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur stops accepting keystrokes and keeps the value.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input is accepting keystrokes.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the trimmed current value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Reset clears the value.
func (t *TextInput) Reset() {
	t.Model.Reset()
}

// Matches reports whether s contains the current value, ignoring case.
// An empty value matches everything.
func (t TextInput) Matches(s string) bool {
	v := t.Value()
	if v == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(v))
}
