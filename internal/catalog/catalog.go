// Package catalog holds the read-only exam reference data: exams contain
// sections, sections contain four-option questions. Everything is ordered
// within its parent by an explicit rank.
package catalog

import (
	"context"
	"strings"

	"github.com/kakomon/kakomon/internal/apperr"
)

// OptionKey identifies one of the four answer options.
type OptionKey string

const (
	OptionA OptionKey = "A"
	OptionB OptionKey = "B"
	OptionC OptionKey = "C"
	OptionD OptionKey = "D"
)

// OptionKeys lists the keys in display order.
var OptionKeys = [4]OptionKey{OptionA, OptionB, OptionC, OptionD}

// ParseOptionKey accepts a, b, c or d in either case.
func ParseOptionKey(s string) (OptionKey, error) {
	k := OptionKey(strings.ToUpper(strings.TrimSpace(s)))
	if k.Index() < 0 {
		return "", apperr.Invalid("answer", "%q is not one of A, B, C, D", s)
	}
	return k, nil
}

// Index returns the option position (0-3), or -1 for an unknown key.
func (k OptionKey) Index() int {
	for i, o := range OptionKeys {
		if o == k {
			return i
		}
	}
	return -1
}

// Exam is a top-level grouping of sections.
type Exam struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank"`
}

// Section is an ordered group of questions belonging to an exam.
type Section struct {
	ID          int    `json:"id"`
	ExamID      int    `json:"examId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank"`
}

// Question is a single multiple-choice item.
type Question struct {
	ID          int       `json:"id"`
	SectionID   int       `json:"sectionId"`
	Body        string    `json:"body"`
	Options     [4]string `json:"options"`
	Answer      OptionKey `json:"correctAnswer"`
	Explanation string    `json:"explanation,omitempty"`
	Rank        int       `json:"rank"`
}

// Option returns the text for key, or "" for an unknown key.
func (q Question) Option(key OptionKey) string {
	i := key.Index()
	if i < 0 {
		return ""
	}
	return q.Options[i]
}

// IsCorrect compares key against the stored answer key literally.
func (q Question) IsCorrect(key OptionKey) bool {
	return key == q.Answer
}

// Adjacent holds the neighbours of a section within its exam.
type Adjacent struct {
	Previous *Section `json:"previous,omitempty"`
	Next     *Section `json:"next,omitempty"`
}

// Reader is read access to the catalog. Lookups of unknown ids return an
// *apperr.NotFoundError.
type Reader interface {
	// Exams returns all exams in rank order.
	Exams(ctx context.Context) ([]Exam, error)

	// Exam returns one exam.
	Exam(ctx context.Context, id int) (*Exam, error)

	// Sections returns the sections of an exam in rank order.
	Sections(ctx context.Context, examID int) ([]Section, error)

	// Section returns one section.
	Section(ctx context.Context, id int) (*Section, error)

	// SectionQuestions returns the questions of a section in rank order.
	SectionQuestions(ctx context.Context, sectionID int) ([]Question, error)

	// Question returns one question.
	Question(ctx context.Context, id int) (*Question, error)

	// QuestionsByID returns the requested questions keyed by id. Missing
	// ids are simply absent from the map.
	QuestionsByID(ctx context.Context, ids []int) (map[int]Question, error)

	// AdjacentSections returns the previous and next sections by rank
	// within the same exam.
	AdjacentSections(ctx context.Context, sectionID int) (Adjacent, error)
}
