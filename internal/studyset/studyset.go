// Package studyset picks the questions a study pass presents and the prior
// answers that stay visible, without writing anything.
package studyset

import (
	"context"
	"strings"
	"time"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/store"
)

// Mode selects which questions of a section a pass presents.
type Mode string

const (
	ModeNormal    Mode = "NORMAL"
	ModeIncorrect Mode = "INCORRECT"
	ModeFavorite  Mode = "FAVORITE"
)

// ParseMode accepts normal, incorrect or favorite in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeNormal, ModeIncorrect, ModeFavorite:
		return m, nil
	}
	return "", apperr.Invalid("mode", "%q is not one of normal, incorrect, favorite", s)
}

func (m Mode) String() string { return strings.ToLower(string(m)) }

// ProgressView is a prior answer shown as already given.
type ProgressView struct {
	Answer    catalog.OptionKey `json:"answer"`
	IsCorrect bool              `json:"isCorrect"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// StudySet is the result of Compose. Questions are in rank order.
// ProgressOverrides is keyed by question id; a question without an entry
// is presented as unanswered.
type StudySet struct {
	SectionID         int                  `json:"sectionId"`
	Mode              Mode                 `json:"mode"`
	Questions         []catalog.Question   `json:"questions"`
	ProgressOverrides map[int]ProgressView `json:"progressOverrides"`
}

// Empty reports whether the set has nothing to present.
func (s *StudySet) Empty() bool { return len(s.Questions) == 0 }

// Progress returns the prior answer for questionID, if one is shown.
func (s *StudySet) Progress(questionID int) (ProgressView, bool) {
	p, ok := s.ProgressOverrides[questionID]
	return p, ok
}

// Composer builds study sets from the catalog and the user's records.
type Composer struct {
	repos    store.Repos
	settings *favorite.Service
}

// NewComposer creates a Composer reading through repos.
func NewComposer(repos store.Repos) *Composer {
	return &Composer{repos: repos, settings: favorite.NewService(repos.SettingsRepo())}
}

// Compose returns the questions to present for (user, section, mode).
// An empty subset is not an error.
func (c *Composer) Compose(ctx context.Context, userID string, sectionID int, mode Mode) (*StudySet, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	questions, err := c.repos.CatalogRepo().SectionQuestions(ctx, sectionID)
	if err != nil {
		return nil, apperr.Storage("read section questions", err)
	}
	answers, err := c.repos.ProgressRepo().SectionAnswers(ctx, userID, sectionID)
	if err != nil {
		return nil, apperr.Storage("read session answers", err)
	}

	set := &StudySet{
		SectionID:         sectionID,
		Mode:              mode,
		Questions:         questions,
		ProgressOverrides: make(map[int]ProgressView, len(answers)),
	}
	if mode != ModeNormal {
		keep, err := c.selector(ctx, userID, mode)
		if err != nil {
			return nil, err
		}
		set.Questions, err = c.filter(ctx, userID, questions, keep)
		if err != nil {
			return nil, err
		}
	}

	target := make(map[int]bool, len(set.Questions))
	if mode != ModeNormal {
		for _, q := range set.Questions {
			target[q.ID] = true
		}
	}
	for _, a := range answers {
		if target[a.QuestionID] {
			continue
		}
		set.ProgressOverrides[a.QuestionID] = ProgressView{
			Answer:    a.Answer,
			IsCorrect: a.IsCorrect,
			UpdatedAt: a.UpdatedAt,
		}
	}
	return set, nil
}

// selector returns the predicate a history record must satisfy for mode.
func (c *Composer) selector(ctx context.Context, userID string, mode Mode) (func(store.HistoryRecord) bool, error) {
	if mode == ModeIncorrect {
		return func(r store.HistoryRecord) bool {
			return r.IsCorrect != nil && !*r.IsCorrect
		}, nil
	}
	settings, err := c.settings.GetOrDefault(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("read favorite settings", err)
	}
	return func(r store.HistoryRecord) bool {
		return favorite.IsQualifying(r.Favorites, settings)
	}, nil
}

// filter keeps the questions whose history record satisfies keep,
// preserving order.
func (c *Composer) filter(ctx context.Context, userID string, questions []catalog.Question, keep func(store.HistoryRecord) bool) ([]catalog.Question, error) {
	ids := make([]int, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	records, err := c.repos.HistoryRepo().ForQuestions(ctx, userID, ids)
	if err != nil {
		return nil, apperr.Storage("read history", err)
	}

	out := make([]catalog.Question, 0, len(records))
	for _, q := range questions {
		if rec, ok := records[q.ID]; ok && keep(rec) {
			out = append(out, q)
		}
	}
	return out, nil
}
