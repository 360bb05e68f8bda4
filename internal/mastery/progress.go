package mastery

import (
	"context"
	"time"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/store"
)

// SectionProgress is a section with the user's latest finished pass.
type SectionProgress struct {
	Section       catalog.Section `json:"section"`
	CorrectCount  int             `json:"correctCount"`
	TotalCount    int             `json:"totalCount"`
	LastStudiedAt *time.Time      `json:"lastStudiedAt,omitempty"`
	State         SectionState    `json:"state"`
}

// Percent is the correct ratio of the last pass, rounded down.
func (p SectionProgress) Percent() int {
	if p.TotalCount == 0 {
		return 0
	}
	return p.CorrectCount * 100 / p.TotalCount
}

// ExamProgress groups section progress for one exam.
type ExamProgress struct {
	Exam     catalog.Exam      `json:"exam"`
	Sections []SectionProgress `json:"sections"`
}

// Totals sums correct and total counts over all sections.
func (p ExamProgress) Totals() (correct, total int) {
	for _, s := range p.Sections {
		correct += s.CorrectCount
		total += s.TotalCount
	}
	return correct, total
}

// Average is the mean correct ratio over studied sections, in [0, 1].
func (p ExamProgress) Average() float64 {
	var sum float64
	var n int
	for _, s := range p.Sections {
		if s.TotalCount == 0 {
			continue
		}
		sum += float64(s.CorrectCount) / float64(s.TotalCount)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SectionProgress returns the user's progress for one section.
func (s *Service) SectionProgress(ctx context.Context, userID string, sectionID int) (SectionProgress, error) {
	sec, err := s.backend.CatalogRepo().Section(ctx, sectionID)
	if err != nil {
		return SectionProgress{}, apperr.Storage("read section", err)
	}
	agg, err := s.backend.ProgressRepo().Aggregate(ctx, userID, sectionID)
	if err != nil {
		return SectionProgress{}, apperr.Storage("read aggregate", err)
	}
	return toSectionProgress(*sec, agg), nil
}

// ExamProgress returns progress for every section of an exam in rank order.
func (s *Service) ExamProgress(ctx context.Context, userID string, examID int) (ExamProgress, error) {
	cat := s.backend.CatalogRepo()
	exam, err := cat.Exam(ctx, examID)
	if err != nil {
		return ExamProgress{}, apperr.Storage("read exam", err)
	}
	sections, err := cat.Sections(ctx, examID)
	if err != nil {
		return ExamProgress{}, apperr.Storage("read sections", err)
	}
	byID, err := s.aggregates(ctx, userID)
	if err != nil {
		return ExamProgress{}, err
	}

	out := ExamProgress{Exam: *exam, Sections: make([]SectionProgress, 0, len(sections))}
	for _, sec := range sections {
		out.Sections = append(out.Sections, toSectionProgress(sec, byID[sec.ID]))
	}
	return out, nil
}

// Overview returns progress for every exam in rank order.
func (s *Service) Overview(ctx context.Context, userID string) ([]ExamProgress, error) {
	exams, err := s.backend.CatalogRepo().Exams(ctx)
	if err != nil {
		return nil, apperr.Storage("read exams", err)
	}
	out := make([]ExamProgress, 0, len(exams))
	for _, e := range exams {
		p, err := s.ExamProgress(ctx, userID, e.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) aggregates(ctx context.Context, userID string) (map[int]*store.SectionAggregate, error) {
	aggs, err := s.backend.ProgressRepo().Aggregates(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("read aggregates", err)
	}
	byID := make(map[int]*store.SectionAggregate, len(aggs))
	for i := range aggs {
		byID[aggs[i].SectionID] = &aggs[i]
	}
	return byID, nil
}

func toSectionProgress(sec catalog.Section, agg *store.SectionAggregate) SectionProgress {
	p := SectionProgress{Section: sec, State: ResolveState(agg)}
	if agg != nil {
		p.CorrectCount = agg.CorrectCount
		p.TotalCount = agg.TotalCount
		at := agg.LastStudiedAt
		p.LastStudiedAt = &at
	}
	return p
}
