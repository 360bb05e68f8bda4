package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Writer persists catalog entities and returns their assigned ids.
type Writer interface {
	InsertExam(ctx context.Context, e Exam) (int, error)
	InsertSection(ctx context.Context, s Section) (int, error)
	InsertQuestion(ctx context.Context, q Question) (int, error)

	// NextExamRank returns the rank to use for the next appended exam.
	NextExamRank(ctx context.Context) (int, error)
}

// ImportSummary counts what Import wrote.
type ImportSummary struct {
	Exams     int
	Sections  int
	Questions int
}

// Import appends every exam in doc after the existing ones. Ranks follow
// document order. Callers wrap it in a transaction so a failure leaves
// nothing behind.
func Import(ctx context.Context, w Writer, doc *Document) (ImportSummary, error) {
	var sum ImportSummary

	rank, err := w.NextExamRank(ctx)
	if err != nil {
		return sum, err
	}

	for _, ed := range doc.Exams {
		examID, err := w.InsertExam(ctx, Exam{
			Title:       strings.TrimSpace(ed.Title),
			Description: strings.TrimSpace(ed.Description),
			Rank:        rank,
		})
		if err != nil {
			return sum, fmt.Errorf("insert exam %q: %w", ed.Title, err)
		}
		rank++
		sum.Exams++

		for si, sd := range ed.Sections {
			sectionID, err := w.InsertSection(ctx, Section{
				ExamID:      examID,
				Title:       strings.TrimSpace(sd.Title),
				Description: strings.TrimSpace(sd.Description),
				Rank:        si + 1,
			})
			if err != nil {
				return sum, fmt.Errorf("insert section %q: %w", sd.Title, err)
			}
			sum.Sections++

			for qi, qd := range sd.Questions {
				q := Question{
					SectionID:   sectionID,
					Body:        qd.Body,
					Answer:      qd.Answer,
					Explanation: strings.TrimSpace(qd.Explanation),
					Rank:        qi + 1,
				}
				for i, k := range OptionKeys {
					q.Options[i] = qd.Options[k]
				}
				if _, err := w.InsertQuestion(ctx, q); err != nil {
					return sum, fmt.Errorf("insert question %d of section %q: %w", qi+1, sd.Title, err)
				}
				sum.Questions++
			}
		}
	}
	return sum, nil
}
