package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/kakomon/kakomon/internal/favorite"
)

var historyColumns = []string{
	"user_id", "question_id", "is_correct",
	"favorite_level1", "favorite_level2", "favorite_level3", "updated_at",
}

// historyRepo implements HistoryRepo.
type historyRepo struct {
	c conn
}

var _ HistoryRepo = (*historyRepo)(nil)

func (r *historyRepo) RecordOutcome(ctx context.Context, userID string, questionID int, isCorrect bool, at time.Time) error {
	q := builder().Insert(tableHistory).
		Columns(historyColumns...).
		Values(userID, questionID, isCorrect, false, false, false, toMillis(at)).
		OnConflict(
			entsql.ConflictColumns("user_id", "question_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("is_correct")
				u.SetExcluded("updated_at")
			}),
		)
	if _, err := exec(ctx, r.c, q); err != nil {
		return fmt.Errorf("upsert history outcome: %w", err)
	}
	return nil
}

func (r *historyRepo) PutFavorites(ctx context.Context, userID string, questionID int, f favorite.Flags, at time.Time) error {
	q := builder().Insert(tableHistory).
		Columns(historyColumns...).
		Values(userID, questionID, nil, f.Level1, f.Level2, f.Level3, toMillis(at)).
		OnConflict(
			entsql.ConflictColumns("user_id", "question_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("favorite_level1")
				u.SetExcluded("favorite_level2")
				u.SetExcluded("favorite_level3")
				u.SetExcluded("updated_at")
			}),
		)
	if _, err := exec(ctx, r.c, q); err != nil {
		return fmt.Errorf("upsert history favorites: %w", err)
	}
	return nil
}

func (r *historyRepo) Get(ctx context.Context, userID string, questionID int) (*HistoryRecord, error) {
	q := builder().Select(historyColumns...).
		From(builder().Table(tableHistory)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("question_id", questionID),
		))
	rec, err := scanHistory(queryRow(ctx, r.c, q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return &rec, nil
}

func (r *historyRepo) ForQuestions(ctx context.Context, userID string, questionIDs []int) (map[int]HistoryRecord, error) {
	out := make(map[int]HistoryRecord, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	recs, err := r.list(ctx, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.InInts("question_id", questionIDs...),
	))
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		out[rec.QuestionID] = rec
	}
	return out, nil
}

func (r *historyRepo) Incorrect(ctx context.Context, userID string) ([]HistoryRecord, error) {
	return r.list(ctx, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.NotNull("is_correct"),
		entsql.IsFalse("is_correct"),
	))
}

func (r *historyRepo) Favorited(ctx context.Context, userID string) ([]HistoryRecord, error) {
	return r.list(ctx, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.Or(
			entsql.IsTrue("favorite_level1"),
			entsql.IsTrue("favorite_level2"),
			entsql.IsTrue("favorite_level3"),
		),
	))
}

func (r *historyRepo) list(ctx context.Context, p *entsql.Predicate) ([]HistoryRecord, error) {
	q := builder().Select(historyColumns...).
		From(builder().Table(tableHistory)).
		Where(p).
		OrderBy("question_id")
	rows, err := query(ctx, r.c, q)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanHistory(s scanner) (HistoryRecord, error) {
	var (
		rec     HistoryRecord
		correct sql.NullBool
		updated int64
	)
	err := s.Scan(&rec.UserID, &rec.QuestionID, &correct,
		&rec.Favorites.Level1, &rec.Favorites.Level2, &rec.Favorites.Level3, &updated)
	if err != nil {
		return HistoryRecord{}, err
	}
	if correct.Valid {
		v := correct.Bool
		rec.IsCorrect = &v
	}
	rec.UpdatedAt = fromMillis(updated)
	return rec, nil
}
