package favorite

import (
	"context"
	"time"

	"github.com/kakomon/kakomon/internal/apperr"
)

// Repo persists Settings per user.
type Repo interface {
	// Get returns the stored settings, or nil when the user has none.
	Get(ctx context.Context, userID string) (*Settings, error)

	// Put overwrites the user's settings.
	Put(ctx context.Context, userID string, s Settings) error
}

// Service reads and writes favorite filter settings.
type Service struct {
	repo Repo
	now  func() time.Time
}

// NewService creates a Service backed by repo.
func NewService(repo Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GetOrDefault returns the stored settings or Default(). The default is
// not persisted.
func (s *Service) GetOrDefault(ctx context.Context, userID string) (Settings, error) {
	st, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Settings{}, apperr.Storage("get favorite settings", err)
	}
	if st == nil {
		return Default(), nil
	}
	return *st, nil
}

// Upsert validates mode and overwrites the user's settings.
func (s *Service) Upsert(ctx context.Context, userID string, l1, l2, l3 bool, mode string) (Settings, error) {
	cm, err := ParseCombineMode(mode)
	if err != nil {
		return Settings{}, err
	}
	st := Settings{
		Level1Enabled: l1,
		Level2Enabled: l2,
		Level3Enabled: l3,
		CombineMode:   cm,
		UpdatedAt:     s.now().UTC(),
	}
	if err := s.repo.Put(ctx, userID, st); err != nil {
		return Settings{}, apperr.Storage("put favorite settings", err)
	}
	return st, nil
}
