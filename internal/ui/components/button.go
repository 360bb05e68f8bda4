package components

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/kakomon/kakomon/internal/ui/theme"
)

// Button is an action bound to a key. Screens pass Binding to the footer
// help.
type Button struct {
	Binding  key.Binding
	Disabled bool
	OnPress  func() tea.Cmd
}

// NewButton binds label to keys. The first key is shown as the hint.
func NewButton(label string, onPress func() tea.Cmd, keys ...string) Button {
	if len(keys) == 0 {
		keys = []string{"enter"}
	}
	return Button{
		Binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], label)),
		OnPress: onPress,
	}
}

// Label is the button text.
func (b Button) Label() string {
	return b.Binding.Help().Desc
}

// SetDisabled turns the button off. A disabled button ignores its keys
// and drops out of the footer help.
func (b *Button) SetDisabled(disabled bool) {
	b.Disabled = disabled
	b.Binding.SetEnabled(!disabled)
}

// Update presses the button when a bound key arrives.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if b.Disabled || b.OnPress == nil {
		return b, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok && key.Matches(kmsg, b.Binding) {
		return b, b.OnPress()
	}
	return b, nil
}

// View renders "[key] label".
func (b Button) View() string {
	text := "[" + b.Binding.Help().Key + "] " + b.Label()
	if b.Disabled {
		return theme.ButtonInactive.Render(text)
	}
	return theme.ButtonActive.Render(text)
}
