package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/catalog"
)

var (
	examColumns     = []string{"id", "title", "description", "rank"}
	sectionColumns  = []string{"id", "exam_id", "title", "description", "rank"}
	questionColumns = []string{
		"id", "section_id", "body",
		"option_a", "option_b", "option_c", "option_d",
		"correct_answer", "explanation", "rank",
	}
)

// catalogRepo implements CatalogRepo.
type catalogRepo struct {
	c conn
}

var _ CatalogRepo = (*catalogRepo)(nil)

func (r *catalogRepo) Exams(ctx context.Context) ([]catalog.Exam, error) {
	q := builder().Select(examColumns...).
		From(builder().Table(tableExams)).
		OrderBy("rank", "id")
	rows, err := query(ctx, r.c, q)
	if err != nil {
		return nil, fmt.Errorf("query exams: %w", err)
	}
	defer rows.Close()

	var out []catalog.Exam
	for rows.Next() {
		var e catalog.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Rank); err != nil {
			return nil, fmt.Errorf("scan exam: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *catalogRepo) Exam(ctx context.Context, id int) (*catalog.Exam, error) {
	q := builder().Select(examColumns...).
		From(builder().Table(tableExams)).
		Where(entsql.EQ("id", id))
	var e catalog.Exam
	err := queryRow(ctx, r.c, q).Scan(&e.ID, &e.Title, &e.Description, &e.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("exam", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query exam %d: %w", id, err)
	}
	return &e, nil
}

func (r *catalogRepo) Sections(ctx context.Context, examID int) ([]catalog.Section, error) {
	if _, err := r.Exam(ctx, examID); err != nil {
		return nil, err
	}
	q := builder().Select(sectionColumns...).
		From(builder().Table(tableSections)).
		Where(entsql.EQ("exam_id", examID)).
		OrderBy("rank", "id")
	return r.sections(ctx, q)
}

func (r *catalogRepo) Section(ctx context.Context, id int) (*catalog.Section, error) {
	q := builder().Select(sectionColumns...).
		From(builder().Table(tableSections)).
		Where(entsql.EQ("id", id))
	var s catalog.Section
	err := queryRow(ctx, r.c, q).Scan(&s.ID, &s.ExamID, &s.Title, &s.Description, &s.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("section", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query section %d: %w", id, err)
	}
	return &s, nil
}

func (r *catalogRepo) AdjacentSections(ctx context.Context, sectionID int) (catalog.Adjacent, error) {
	cur, err := r.Section(ctx, sectionID)
	if err != nil {
		return catalog.Adjacent{}, err
	}
	q := builder().Select(sectionColumns...).
		From(builder().Table(tableSections)).
		Where(entsql.EQ("exam_id", cur.ExamID)).
		OrderBy("rank", "id")
	all, err := r.sections(ctx, q)
	if err != nil {
		return catalog.Adjacent{}, err
	}

	var adj catalog.Adjacent
	for i := range all {
		if all[i].ID != sectionID {
			continue
		}
		if i > 0 {
			prev := all[i-1]
			adj.Previous = &prev
		}
		if i+1 < len(all) {
			next := all[i+1]
			adj.Next = &next
		}
		break
	}
	return adj, nil
}

func (r *catalogRepo) sections(ctx context.Context, q querier) ([]catalog.Section, error) {
	rows, err := query(ctx, r.c, q)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var out []catalog.Section
	for rows.Next() {
		var s catalog.Section
		if err := rows.Scan(&s.ID, &s.ExamID, &s.Title, &s.Description, &s.Rank); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *catalogRepo) SectionQuestions(ctx context.Context, sectionID int) ([]catalog.Question, error) {
	if _, err := r.Section(ctx, sectionID); err != nil {
		return nil, err
	}
	q := builder().Select(questionColumns...).
		From(builder().Table(tableQuestions)).
		Where(entsql.EQ("section_id", sectionID)).
		OrderBy("rank", "id")
	return r.questions(ctx, q)
}

func (r *catalogRepo) Question(ctx context.Context, id int) (*catalog.Question, error) {
	q := builder().Select(questionColumns...).
		From(builder().Table(tableQuestions)).
		Where(entsql.EQ("id", id))
	qs, err := r.questions(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, apperr.NotFound("question", id)
	}
	return &qs[0], nil
}

func (r *catalogRepo) QuestionsByID(ctx context.Context, ids []int) (map[int]catalog.Question, error) {
	out := make(map[int]catalog.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := builder().Select(questionColumns...).
		From(builder().Table(tableQuestions)).
		Where(entsql.InInts("id", ids...))
	qs, err := r.questions(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, qq := range qs {
		out[qq.ID] = qq
	}
	return out, nil
}

func (r *catalogRepo) RandomQuestions(ctx context.Context, n int, examID *int) ([]catalog.Question, error) {
	t := builder().Table(tableQuestions)
	cols := make([]string, len(questionColumns))
	for i, c := range questionColumns {
		cols[i] = t.C(c)
	}
	q := builder().Select(cols...).From(t)
	if examID != nil {
		s := builder().Table(tableSections)
		q.Join(s).On(t.C("section_id"), s.C("id")).
			Where(entsql.EQ(s.C("exam_id"), *examID))
	}
	q.OrderExpr(entsql.Expr("RANDOM()")).Limit(n)
	return r.questions(ctx, q)
}

func (r *catalogRepo) questions(ctx context.Context, q querier) ([]catalog.Question, error) {
	rows, err := query(ctx, r.c, q)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []catalog.Question
	for rows.Next() {
		var (
			qq          catalog.Question
			answer      string
			explanation sql.NullString
		)
		if err := rows.Scan(
			&qq.ID, &qq.SectionID, &qq.Body,
			&qq.Options[0], &qq.Options[1], &qq.Options[2], &qq.Options[3],
			&answer, &explanation, &qq.Rank,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		qq.Answer = catalog.OptionKey(answer)
		qq.Explanation = explanation.String
		out = append(out, qq)
	}
	return out, rows.Err()
}

func (r *catalogRepo) NextExamRank(ctx context.Context) (int, error) {
	q := builder().Select("COALESCE(MAX(`rank`), 0)").From(builder().Table(tableExams))
	var max int
	if err := queryRow(ctx, r.c, q).Scan(&max); err != nil {
		return 0, fmt.Errorf("max exam rank: %w", err)
	}
	return max + 1, nil
}

func (r *catalogRepo) InsertExam(ctx context.Context, e catalog.Exam) (int, error) {
	q := builder().Insert(tableExams).
		Columns("title", "description", "rank").
		Values(e.Title, e.Description, e.Rank)
	return insertID(ctx, r.c, q)
}

func (r *catalogRepo) InsertSection(ctx context.Context, s catalog.Section) (int, error) {
	q := builder().Insert(tableSections).
		Columns("exam_id", "title", "description", "rank").
		Values(s.ExamID, s.Title, s.Description, s.Rank)
	return insertID(ctx, r.c, q)
}

func (r *catalogRepo) InsertQuestion(ctx context.Context, qq catalog.Question) (int, error) {
	var explanation any
	if qq.Explanation != "" {
		explanation = qq.Explanation
	}
	q := builder().Insert(tableQuestions).
		Columns(questionColumns[1:]...).
		Values(
			qq.SectionID, qq.Body,
			qq.Options[0], qq.Options[1], qq.Options[2], qq.Options[3],
			string(qq.Answer), explanation, qq.Rank,
		)
	return insertID(ctx, r.c, q)
}

func insertID(ctx context.Context, c conn, q querier) (int, error) {
	res, err := exec(ctx, c, q)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return int(id), nil
}
