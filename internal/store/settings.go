package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/kakomon/kakomon/internal/favorite"
)

// settingsRepo implements SettingsRepo.
type settingsRepo struct {
	c conn
}

var _ SettingsRepo = (*settingsRepo)(nil)

func (r *settingsRepo) Get(ctx context.Context, userID string) (*favorite.Settings, error) {
	q := builder().Select("level1_enabled", "level2_enabled", "level3_enabled", "combine_mode", "updated_at").
		From(builder().Table(tableSettings)).
		Where(entsql.EQ("user_id", userID))
	var (
		s       favorite.Settings
		mode    string
		updated int64
	)
	err := queryRow(ctx, r.c, q).Scan(&s.Level1Enabled, &s.Level2Enabled, &s.Level3Enabled, &mode, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query favorite settings: %w", err)
	}
	s.CombineMode = favorite.CombineMode(mode)
	s.UpdatedAt = fromMillis(updated)
	return &s, nil
}

func (r *settingsRepo) Put(ctx context.Context, userID string, s favorite.Settings) error {
	q := builder().Insert(tableSettings).
		Columns("user_id", "level1_enabled", "level2_enabled", "level3_enabled", "combine_mode", "updated_at").
		Values(userID, s.Level1Enabled, s.Level2Enabled, s.Level3Enabled, string(s.CombineMode), toMillis(s.UpdatedAt)).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := exec(ctx, r.c, q); err != nil {
		return fmt.Errorf("upsert favorite settings: %w", err)
	}
	return nil
}
