package studyset

import (
	"context"
	"sort"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/store"
)

// HistoryItem is a question with the user's permanent record for it.
type HistoryItem struct {
	Question  catalog.Question `json:"question"`
	Section   catalog.Section  `json:"section"`
	IsCorrect *bool            `json:"isCorrect"`
	Favorites favorite.Flags   `json:"favorites"`
}

// ExamGroup collects history items of one exam.
type ExamGroup struct {
	Exam  catalog.Exam  `json:"exam"`
	Items []HistoryItem `json:"items"`
}

// Incorrect lists every question whose latest outcome was incorrect,
// grouped by exam.
func (c *Composer) Incorrect(ctx context.Context, userID string) ([]ExamGroup, error) {
	recs, err := c.repos.HistoryRepo().Incorrect(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("read incorrect history", err)
	}
	return c.group(ctx, recs)
}

// Favorites lists every question tagged at any level, grouped by exam.
func (c *Composer) Favorites(ctx context.Context, userID string) ([]ExamGroup, error) {
	recs, err := c.repos.HistoryRepo().Favorited(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("read favorite history", err)
	}
	return c.group(ctx, recs)
}

// group attaches catalog data to recs and orders them by exam, section
// and question rank.
func (c *Composer) group(ctx context.Context, recs []store.HistoryRecord) ([]ExamGroup, error) {
	if len(recs) == 0 {
		return []ExamGroup{}, nil
	}
	cat := c.repos.CatalogRepo()

	ids := make([]int, len(recs))
	for i, r := range recs {
		ids[i] = r.QuestionID
	}
	questions, err := cat.QuestionsByID(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("read questions", err)
	}

	sections := map[int]catalog.Section{}
	exams := map[int]catalog.Exam{}
	var items []HistoryItem
	for _, r := range recs {
		q, ok := questions[r.QuestionID]
		if !ok {
			continue
		}
		sec, ok := sections[q.SectionID]
		if !ok {
			s, err := cat.Section(ctx, q.SectionID)
			if err != nil {
				return nil, apperr.Storage("read section", err)
			}
			sec = *s
			sections[sec.ID] = sec
		}
		if _, ok := exams[sec.ExamID]; !ok {
			e, err := cat.Exam(ctx, sec.ExamID)
			if err != nil {
				return nil, apperr.Storage("read exam", err)
			}
			exams[e.ID] = *e
		}
		items = append(items, HistoryItem{Question: q, Section: sec, IsCorrect: r.IsCorrect, Favorites: r.Favorites})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ea, eb := exams[a.Section.ExamID], exams[b.Section.ExamID]
		switch {
		case ea.Rank != eb.Rank:
			return ea.Rank < eb.Rank
		case ea.ID != eb.ID:
			return ea.ID < eb.ID
		case a.Section.Rank != b.Section.Rank:
			return a.Section.Rank < b.Section.Rank
		case a.Section.ID != b.Section.ID:
			return a.Section.ID < b.Section.ID
		case a.Question.Rank != b.Question.Rank:
			return a.Question.Rank < b.Question.Rank
		}
		return a.Question.ID < b.Question.ID
	})

	groups := []ExamGroup{}
	for _, it := range items {
		if n := len(groups); n == 0 || groups[n-1].Exam.ID != it.Section.ExamID {
			groups = append(groups, ExamGroup{Exam: exams[it.Section.ExamID]})
		}
		g := &groups[len(groups)-1]
		g.Items = append(g.Items, it)
	}
	return groups, nil
}
