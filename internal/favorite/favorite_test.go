package favorite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakomon/kakomon/internal/apperr"
)

func settings(l1, l2, l3 bool, mode CombineMode) Settings {
	return Settings{Level1Enabled: l1, Level2Enabled: l2, Level3Enabled: l3, CombineMode: mode}
}

func TestIsQualifying(t *testing.T) {
	tests := []struct {
		name     string
		flags    Flags
		settings Settings
		want     bool
	}{
		{"OR one of two enabled set", Flags{true, false, false}, settings(true, true, false, CombineOR), true},
		{"OR nothing set", Flags{}, settings(true, true, false, CombineOR), false},
		{"OR only disabled level set", Flags{false, false, true}, settings(true, true, false, CombineOR), false},
		{"AND level 2 missing", Flags{true, false, true}, settings(true, true, true, CombineAND), false},
		{"AND all set", Flags{true, true, true}, settings(true, true, true, CombineAND), true},
		{"AND ignores disabled level", Flags{true, false, true}, settings(true, false, true, CombineAND), true},
		{"zero enabled OR", Flags{true, true, true}, settings(false, false, false, CombineOR), false},
		{"zero enabled AND", Flags{true, true, true}, settings(false, false, false, CombineAND), false},
		{"zero enabled AND no flags", Flags{}, settings(false, false, false, CombineAND), false},
		{"default settings", Flags{false, true, false}, Default(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQualifying(tt.flags, tt.settings))
		})
	}
}

func TestSingleEnabledLevelModesAgree(t *testing.T) {
	for _, l := range Levels {
		for _, on := range []bool{false, true} {
			var f Flags
			if on {
				f = f.Toggle(l)
			}
			s := Settings{}
			switch l {
			case Level1:
				s.Level1Enabled = true
			case Level2:
				s.Level2Enabled = true
			case Level3:
				s.Level3Enabled = true
			}
			s.CombineMode = CombineOR
			or := IsQualifying(f, s)
			s.CombineMode = CombineAND
			and := IsQualifying(f, s)
			assert.Equal(t, or, and, "level %d flag %v", l, on)
			assert.Equal(t, on, or)
		}
	}
}

func TestToggle(t *testing.T) {
	var f Flags
	f = f.Toggle(Level2)
	assert.Equal(t, Flags{Level2: true}, f)
	assert.True(t, f.Get(Level2))
	assert.True(t, f.Any())

	f = f.Toggle(Level2)
	assert.Equal(t, Flags{}, f)
	assert.False(t, f.Any())

	assert.Equal(t, f, f.Toggle(Level(9)))
}

func TestParseLevel(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		l, err := ParseLevel(n)
		require.NoError(t, err)
		assert.Equal(t, Level(n), l)
	}
	for _, n := range []int{0, 4, -1} {
		_, err := ParseLevel(n)
		assert.True(t, apperr.IsValidation(err), "level %d", n)
	}
}

func TestParseCombineMode(t *testing.T) {
	m, err := ParseCombineMode(" AND ")
	require.NoError(t, err)
	assert.Equal(t, CombineAND, m)

	for _, bad := range []string{"or", "XOR", ""} {
		_, err := ParseCombineMode(bad)
		assert.True(t, apperr.IsValidation(err), bad)
	}
}
