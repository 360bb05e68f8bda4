package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// userRepo implements UserRepo.
type userRepo struct {
	c conn
}

var _ UserRepo = (*userRepo)(nil)

func (r *userRepo) Ensure(ctx context.Context, u User) error {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	q := builder().Insert(tableUsers).
		Columns("id", "email", "name", "created_at").
		Values(u.ID, u.Email, u.Name, toMillis(created))
	if u.Email == "" && u.Name == "" {
		q.OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
	} else {
		q.OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(s *entsql.UpdateSet) {
				if u.Email != "" {
					s.SetExcluded("email")
				}
				if u.Name != "" {
					s.SetExcluded("name")
				}
			}),
		)
	}
	if _, err := exec(ctx, r.c, q); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (r *userRepo) Get(ctx context.Context, id string) (*User, error) {
	q := builder().Select("id", "email", "name", "created_at").
		From(builder().Table(tableUsers)).
		Where(entsql.EQ("id", id))
	var (
		u       User
		created int64
	)
	err := queryRow(ctx, r.c, q).Scan(&u.ID, &u.Email, &u.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = fromMillis(created)
	return &u, nil
}
