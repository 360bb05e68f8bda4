package settings

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/router"
	"github.com/kakomon/kakomon/internal/screens"
	"github.com/kakomon/kakomon/internal/store/storetest"
)

const user = "learner-1"

func newScreen(t *testing.T) (*SettingsScreen, *screens.Services) {
	t.Helper()
	svc := screens.NewServices(storetest.Open(t), user, nil)
	s := New(svc)
	s.Update(s.Init()())
	require.True(t, s.loaded)
	return s, svc
}

func press(s *SettingsScreen, k tea.KeyPressMsg) tea.Cmd {
	_, cmd := s.Update(k)
	return cmd
}

func char(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestSettingsScreen_LoadsDefaults(t *testing.T) {
	s, _ := newScreen(t)
	assert.Equal(t, favorite.Default(), s.draft)
	assert.Contains(t, s.View(100, 30), "[x] Level 1")
	assert.Contains(t, s.View(100, 30), "OR (any enabled level)")
}

func TestSettingsScreen_EditAndSave(t *testing.T) {
	s, svc := newScreen(t)

	press(s, char('2'))
	press(s, char('m'))
	assert.True(t, s.dirty)
	assert.False(t, s.draft.Level2Enabled)
	assert.Equal(t, favorite.CombineAND, s.draft.CombineMode)
	assert.Contains(t, s.View(100, 30), "[ ] Level 2")

	// Nothing is stored until Save.
	st, err := svc.Settings.GetOrDefault(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, favorite.Default(), st)

	// Save is the last menu item.
	for range 5 {
		press(s, tea.KeyPressMsg{Code: tea.KeyDown})
	}
	save := press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, save)
	s.Update(save())

	assert.False(t, s.dirty)
	assert.Contains(t, s.View(100, 30), "Saved.")

	st, err = svc.Settings.GetOrDefault(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, st.Level1Enabled)
	assert.False(t, st.Level2Enabled)
	assert.True(t, st.Level3Enabled)
	assert.Equal(t, favorite.CombineAND, st.CombineMode)
}

func TestSettingsScreen_MenuToggle(t *testing.T) {
	s, _ := newScreen(t)

	// The first item toggles level 1.
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.False(t, s.draft.Level1Enabled)
	assert.Contains(t, s.View(100, 30), "[ ] Level 1")
	assert.Equal(t, 0, s.menu.Selected)
}

func TestSettingsScreen_WarnsWhenNothingEnabled(t *testing.T) {
	s, _ := newScreen(t)
	press(s, char('1'))
	press(s, char('2'))
	press(s, char('3'))
	assert.Contains(t, s.View(100, 30), "favorite mode will present nothing")
}

func TestSettingsScreen_EscPops(t *testing.T) {
	s, _ := newScreen(t)
	cmd := press(s, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}
