package study

import (
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/mastery"
)

// answerRecordedMsg confirms the answer for the current question was stored.
type answerRecordedMsg struct {
	Err error
}

// favoritesMsg carries the tag state of a question after a read or toggle.
type favoritesMsg struct {
	QuestionID int
	Flags      favorite.Flags
	Err        error
}

// passFinishedMsg is sent once FinishPass has written the section aggregate.
type passFinishedMsg struct {
	Tally mastery.Tally
	Err   error
}
