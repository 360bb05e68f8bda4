package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var attemptColumns = []string{"id", "user_id", "exam_id", "score", "total_questions", "taken_at"}

// mockRepo implements MockRepo.
type mockRepo struct {
	c conn
}

var _ MockRepo = (*mockRepo)(nil)

func (r *mockRepo) CreateAttempt(ctx context.Context, a MockAttempt, answers []MockAnswer) error {
	var examID any
	if a.ExamID != nil {
		examID = *a.ExamID
	}
	q := builder().Insert(tableMockAttempts).
		Columns(attemptColumns...).
		Values(a.ID, a.UserID, examID, a.Score, a.TotalQuestions, toMillis(a.TakenAt))
	if _, err := exec(ctx, r.c, q); err != nil {
		return fmt.Errorf("insert mock attempt: %w", err)
	}
	if len(answers) == 0 {
		return nil
	}

	ins := builder().Insert(tableMockDetails).
		Columns("attempt_id", "question_id", "user_answer", "is_correct", "answered_at")
	for _, ans := range answers {
		ins.Values(a.ID, ans.QuestionID, ans.UserAnswer, ans.IsCorrect, toMillis(ans.AnsweredAt))
	}
	if _, err := exec(ctx, r.c, ins); err != nil {
		return fmt.Errorf("insert mock answers: %w", err)
	}
	return nil
}

func (r *mockRepo) Attempts(ctx context.Context, userID string, limit int) ([]MockAttempt, error) {
	q := builder().Select(attemptColumns...).
		From(builder().Table(tableMockAttempts)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("taken_at"), entsql.Desc("id"))
	if limit > 0 {
		q.Limit(limit)
	}
	rows, err := query(ctx, r.c, q)
	if err != nil {
		return nil, fmt.Errorf("query mock attempts: %w", err)
	}
	defer rows.Close()

	var out []MockAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mock attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *mockRepo) Attempt(ctx context.Context, id string) (*MockAttempt, error) {
	q := builder().Select(attemptColumns...).
		From(builder().Table(tableMockAttempts)).
		Where(entsql.EQ("id", id))
	a, err := scanAttempt(queryRow(ctx, r.c, q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query mock attempt: %w", err)
	}
	return &a, nil
}

func (r *mockRepo) Answers(ctx context.Context, attemptID string) ([]MockAnswer, error) {
	q := builder().Select("question_id", "user_answer", "is_correct", "answered_at").
		From(builder().Table(tableMockDetails)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("id")
	rows, err := query(ctx, r.c, q)
	if err != nil {
		return nil, fmt.Errorf("query mock answers: %w", err)
	}
	defer rows.Close()

	var out []MockAnswer
	for rows.Next() {
		var (
			ans MockAnswer
			at  int64
		)
		if err := rows.Scan(&ans.QuestionID, &ans.UserAnswer, &ans.IsCorrect, &at); err != nil {
			return nil, fmt.Errorf("scan mock answer: %w", err)
		}
		ans.AnsweredAt = fromMillis(at)
		out = append(out, ans)
	}
	return out, rows.Err()
}

func scanAttempt(s scanner) (MockAttempt, error) {
	var (
		a      MockAttempt
		examID sql.NullInt64
		taken  int64
	)
	if err := s.Scan(&a.ID, &a.UserID, &examID, &a.Score, &a.TotalQuestions, &taken); err != nil {
		return MockAttempt{}, err
	}
	if examID.Valid {
		id := int(examID.Int64)
		a.ExamID = &id
	}
	a.TakenAt = fromMillis(taken)
	return a, nil
}
