// Package screens holds what the terminal screens share: the services a
// screen talks to and the learner they act for.
package screens

import (
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/logger"
	"github.com/kakomon/kakomon/internal/mastery"
	"github.com/kakomon/kakomon/internal/store"
	"github.com/kakomon/kakomon/internal/studyset"
)

// Services is passed from screen to screen.
type Services struct {
	UserID   string
	Mastery  *mastery.Service
	Composer *studyset.Composer
	Settings *favorite.Service
	Catalog  store.CatalogRepo
	Log      *logger.Logger
}

// NewServices wires every service over one backend.
func NewServices(backend store.Backend, userID string, log *logger.Logger) *Services {
	if log == nil {
		log = logger.Nop()
	}
	return &Services{
		UserID:   userID,
		Mastery:  mastery.NewService(backend, log),
		Composer: studyset.NewComposer(backend),
		Settings: favorite.NewService(backend.SettingsRepo()),
		Catalog:  backend.CatalogRepo(),
		Log:      log.With("user_id", userID),
	}
}
