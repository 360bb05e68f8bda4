package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/kakomon/kakomon/internal/catalog"
)

// progressRepo implements ProgressRepo.
type progressRepo struct {
	c conn
}

var _ ProgressRepo = (*progressRepo)(nil)

func sectionKey(userID string, sectionID int) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("section_id", sectionID),
	)
}

func (r *progressRepo) UpsertAnswer(ctx context.Context, a SessionAnswer) error {
	q := builder().Insert(tableSessionAnswers).
		Columns("user_id", "section_id", "question_id", "last_answer", "is_correct", "updated_at").
		Values(a.UserID, a.SectionID, a.QuestionID, string(a.Answer), a.IsCorrect, toMillis(a.UpdatedAt)).
		OnConflict(
			entsql.ConflictColumns("user_id", "section_id", "question_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("last_answer")
				u.SetExcluded("is_correct")
				u.SetExcluded("updated_at")
			}),
		)
	if _, err := exec(ctx, r.c, q); err != nil {
		return fmt.Errorf("upsert session answer: %w", err)
	}
	return nil
}

func (r *progressRepo) SectionAnswers(ctx context.Context, userID string, sectionID int) ([]SessionAnswer, error) {
	q := builder().Select("user_id", "section_id", "question_id", "last_answer", "is_correct", "updated_at").
		From(builder().Table(tableSessionAnswers)).
		Where(sectionKey(userID, sectionID)).
		OrderBy("question_id")
	rows, err := query(ctx, r.c, q)
	if err != nil {
		return nil, fmt.Errorf("query session answers: %w", err)
	}
	defer rows.Close()

	var out []SessionAnswer
	for rows.Next() {
		var (
			a       SessionAnswer
			answer  string
			updated int64
		)
		if err := rows.Scan(&a.UserID, &a.SectionID, &a.QuestionID, &answer, &a.IsCorrect, &updated); err != nil {
			return nil, fmt.Errorf("scan session answer: %w", err)
		}
		a.Answer = catalog.OptionKey(answer)
		a.UpdatedAt = fromMillis(updated)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *progressRepo) TallyAnswers(ctx context.Context, userID string, sectionID int) (AnswerTally, error) {
	q := builder().Select(entsql.Count("*"), "COALESCE(SUM(`is_correct`), 0)").
		From(builder().Table(tableSessionAnswers)).
		Where(sectionKey(userID, sectionID))
	var t AnswerTally
	if err := queryRow(ctx, r.c, q).Scan(&t.Total, &t.Correct); err != nil {
		return AnswerTally{}, fmt.Errorf("tally session answers: %w", err)
	}
	return t, nil
}

func (r *progressRepo) DeleteAnswers(ctx context.Context, userID string, sectionID int, onlyIncorrect bool) (int64, error) {
	p := sectionKey(userID, sectionID)
	if onlyIncorrect {
		p = entsql.And(p, entsql.IsFalse("is_correct"))
	}
	res, err := exec(ctx, r.c, builder().Delete(tableSessionAnswers).Where(p))
	if err != nil {
		return 0, fmt.Errorf("delete session answers: %w", err)
	}
	return res.RowsAffected()
}

func (r *progressRepo) DeleteAnswer(ctx context.Context, userID string, sectionID, questionID int) (int64, error) {
	p := entsql.And(sectionKey(userID, sectionID), entsql.EQ("question_id", questionID))
	res, err := exec(ctx, r.c, builder().Delete(tableSessionAnswers).Where(p))
	if err != nil {
		return 0, fmt.Errorf("delete session answer: %w", err)
	}
	return res.RowsAffected()
}

func (r *progressRepo) PutAggregate(ctx context.Context, a SectionAggregate) error {
	if a.CorrectCount < 0 || a.CorrectCount > a.TotalCount {
		return fmt.Errorf("put aggregate: correct %d outside [0, %d]", a.CorrectCount, a.TotalCount)
	}
	q := builder().Insert(tableSectionMastery).
		Columns("user_id", "section_id", "correct_count", "total_count", "last_studied_at", "updated_at").
		Values(a.UserID, a.SectionID, a.CorrectCount, a.TotalCount, toMillis(a.LastStudiedAt), toMillis(a.UpdatedAt)).
		OnConflict(
			entsql.ConflictColumns("user_id", "section_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := exec(ctx, r.c, q); err != nil {
		return fmt.Errorf("upsert aggregate: %w", err)
	}
	return nil
}

var aggregateColumns = []string{"user_id", "section_id", "correct_count", "total_count", "last_studied_at", "updated_at"}

func (r *progressRepo) Aggregate(ctx context.Context, userID string, sectionID int) (*SectionAggregate, error) {
	q := builder().Select(aggregateColumns...).
		From(builder().Table(tableSectionMastery)).
		Where(sectionKey(userID, sectionID))
	a, err := scanAggregate(queryRow(ctx, r.c, q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query aggregate: %w", err)
	}
	return &a, nil
}

func (r *progressRepo) Aggregates(ctx context.Context, userID string) ([]SectionAggregate, error) {
	q := builder().Select(aggregateColumns...).
		From(builder().Table(tableSectionMastery)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("section_id")
	rows, err := query(ctx, r.c, q)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	var out []SectionAggregate
	for rows.Next() {
		a, err := scanAggregate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *progressRepo) DeleteAggregate(ctx context.Context, userID string, sectionID int) (int64, error) {
	res, err := exec(ctx, r.c, builder().Delete(tableSectionMastery).Where(sectionKey(userID, sectionID)))
	if err != nil {
		return 0, fmt.Errorf("delete aggregate: %w", err)
	}
	return res.RowsAffected()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAggregate(s scanner) (SectionAggregate, error) {
	var (
		a            SectionAggregate
		studied, upd int64
	)
	if err := s.Scan(&a.UserID, &a.SectionID, &a.CorrectCount, &a.TotalCount, &studied, &upd); err != nil {
		return SectionAggregate{}, err
	}
	a.LastStudiedAt = fromMillis(studied)
	a.UpdatedAt = fromMillis(upd)
	return a, nil
}
