// Package storetest provides an in-memory Store and a small seeded
// catalog for tests in other packages.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kakomon/kakomon/internal/catalog"
	"github.com/kakomon/kakomon/internal/store"
)

// Open returns an empty in-memory Store private to t.
func Open(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Fixture holds the ids created by Seed.
type Fixture struct {
	ExamID int
	// Sections are in rank order. Sections[0] has seven questions,
	// Sections[1] has three.
	Sections []catalog.Section
	// Questions maps a section id to its questions in rank order.
	Questions map[int][]catalog.Question
	// SecondExamID has one section, SecondSection, with two questions.
	SecondExamID  int
	SecondSection catalog.Section
}

// Section returns the i-th section of the first exam.
func (f *Fixture) Section(i int) catalog.Section { return f.Sections[i] }

// Question returns the j-th question of the i-th section.
func (f *Fixture) Question(i, j int) catalog.Question {
	return f.Questions[f.Sections[i].ID][j]
}

// Seed loads a fixed catalog into s. Questions are inserted with ranks in
// reverse of insertion order so that id order and rank order differ.
func Seed(t testing.TB, s *store.Store) *Fixture {
	t.Helper()
	ctx := context.Background()
	repo := s.CatalogRepo()
	f := &Fixture{Questions: map[int][]catalog.Question{}}

	var err error
	f.ExamID, err = repo.InsertExam(ctx, catalog.Exam{Title: "Fundamentals", Rank: 1})
	if err != nil {
		t.Fatalf("insert exam: %v", err)
	}
	f.SecondExamID, err = repo.InsertExam(ctx, catalog.Exam{Title: "Applied", Rank: 2})
	if err != nil {
		t.Fatalf("insert exam: %v", err)
	}

	layout := []struct {
		exam  int
		title string
		n     int
	}{
		{f.ExamID, "Networks", 7},
		{f.ExamID, "Databases", 3},
		{f.SecondExamID, "Security", 2},
	}
	for i, l := range layout {
		sec := catalog.Section{ExamID: l.exam, Title: l.title, Rank: i + 1}
		sec.ID, err = repo.InsertSection(ctx, sec)
		if err != nil {
			t.Fatalf("insert section: %v", err)
		}
		if l.exam == f.ExamID {
			f.Sections = append(f.Sections, sec)
		} else {
			f.SecondSection = sec
		}

		qs := make([]catalog.Question, l.n)
		for j := l.n - 1; j >= 0; j-- {
			q := catalog.Question{
				SectionID:   sec.ID,
				Body:        fmt.Sprintf("%s Q%d", l.title, j+1),
				Options:     [4]string{"alpha", "beta", "gamma", "delta"},
				Answer:      catalog.OptionKeys[j%4],
				Explanation: fmt.Sprintf("Because %s.", catalog.OptionKeys[j%4]),
				Rank:        j + 1,
			}
			q.ID, err = repo.InsertQuestion(ctx, q)
			if err != nil {
				t.Fatalf("insert question: %v", err)
			}
			qs[j] = q
		}
		f.Questions[sec.ID] = qs
	}
	return f
}

// WrongKey returns an option key different from q's answer.
func WrongKey(q catalog.Question) catalog.OptionKey {
	return catalog.OptionKeys[(q.Answer.Index()+1)%4]
}
