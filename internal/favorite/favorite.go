// Package favorite models the three independent favorite tags a learner
// can put on a question and the per-user rule that reduces them to a
// single "in scope for favorite study" decision.
package favorite

import (
	"strings"
	"time"

	"github.com/kakomon/kakomon/internal/apperr"
)

// Level selects one of the three favorite tags.
type Level int

const (
	Level1 Level = 1
	Level2 Level = 2
	Level3 Level = 3
)

// Levels lists every level in order.
var Levels = [3]Level{Level1, Level2, Level3}

// ParseLevel validates a raw level number.
func ParseLevel(n int) (Level, error) {
	l := Level(n)
	if !l.Valid() {
		return 0, apperr.Invalid("level", "%d is not 1, 2 or 3", n)
	}
	return l, nil
}

// Valid reports whether l is 1, 2 or 3.
func (l Level) Valid() bool {
	return l >= Level1 && l <= Level3
}

// Flags is the tag state of one question.
type Flags struct {
	Level1 bool `json:"favoriteLevel1"`
	Level2 bool `json:"favoriteLevel2"`
	Level3 bool `json:"favoriteLevel3"`
}

// Get returns the flag for l. Invalid levels read as false.
func (f Flags) Get(l Level) bool {
	switch l {
	case Level1:
		return f.Level1
	case Level2:
		return f.Level2
	case Level3:
		return f.Level3
	}
	return false
}

// Toggle returns a copy of f with exactly the flag for l flipped.
func (f Flags) Toggle(l Level) Flags {
	switch l {
	case Level1:
		f.Level1 = !f.Level1
	case Level2:
		f.Level2 = !f.Level2
	case Level3:
		f.Level3 = !f.Level3
	}
	return f
}

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	return f.Level1 || f.Level2 || f.Level3
}

// CombineMode is how enabled levels are combined.
type CombineMode string

const (
	CombineOR  CombineMode = "OR"
	CombineAND CombineMode = "AND"
)

// ParseCombineMode accepts exactly "OR" or "AND" after trimming spaces.
func ParseCombineMode(s string) (CombineMode, error) {
	switch m := CombineMode(strings.TrimSpace(s)); m {
	case CombineOR, CombineAND:
		return m, nil
	}
	return "", apperr.Invalid("combineMode", "%q is not OR or AND", s)
}

// Settings is a learner's favorite filter configuration.
type Settings struct {
	Level1Enabled bool        `json:"level1Enabled"`
	Level2Enabled bool        `json:"level2Enabled"`
	Level3Enabled bool        `json:"level3Enabled"`
	CombineMode   CombineMode `json:"combineMode"`
	UpdatedAt     time.Time   `json:"updatedAt,omitzero"`
}

// Default returns all levels enabled, combined with OR.
func Default() Settings {
	return Settings{
		Level1Enabled: true,
		Level2Enabled: true,
		Level3Enabled: true,
		CombineMode:   CombineOR,
	}
}

// Enabled reports whether l participates in filtering.
func (s Settings) Enabled(l Level) bool {
	switch l {
	case Level1:
		return s.Level1Enabled
	case Level2:
		return s.Level2Enabled
	case Level3:
		return s.Level3Enabled
	}
	return false
}

// IsQualifying applies s to f. With no level enabled nothing qualifies,
// under either mode. With one level enabled OR and AND agree.
func IsQualifying(f Flags, s Settings) bool {
	enabled := 0
	matched := 0
	for _, l := range Levels {
		if !s.Enabled(l) {
			continue
		}
		enabled++
		if f.Get(l) {
			matched++
		}
	}
	if enabled == 0 {
		return false
	}
	if s.CombineMode == CombineAND {
		return matched == enabled
	}
	return matched > 0
}
