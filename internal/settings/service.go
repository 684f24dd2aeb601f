// Package settings stores per-user application preferences under
// settings_<userID> in the shared key/value namespace.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/logging"
	"github.com/dmitrijs2005/adminpanel/internal/repositories/kv"
	"github.com/dmitrijs2005/adminpanel/internal/storage"
)

const keyPrefix = "settings_"

// Notifications holds the notification toggles of one user.
type Notifications struct {
	Email  bool `json:"email"`
	Push   bool `json:"push"`
	Weekly bool `json:"weekly"`
}

// Settings is one user's preference set.
type Settings struct {
	Notifications Notifications `json:"notifications"`
	Theme         string        `json:"theme"`
}

// Defaults returns the preferences of a user who never saved any.
func Defaults() Settings {
	return Settings{
		Notifications: Notifications{Email: true, Weekly: true},
		Theme:         "light",
	}
}

// UserChecker verifies a user id exists; the identity store implements it.
type UserChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	backend storage.Backend
	users   UserChecker
	log     logging.Logger
}

func NewService(backend storage.Backend, users UserChecker, log logging.Logger) *Service {
	return &Service{backend: backend, users: users, log: log.With("component", "settings")}
}

// Get returns the stored settings of the user, or defaults when none were
// saved yet.
func (s *Service) Get(ctx context.Context, userID string) (Settings, error) {
	out := Defaults()
	err := s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		raw, err := repo.Get(ctx, keyPrefix+userID)
		if err != nil {
			return err
		}
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("error decoding settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return Settings{}, err
	}
	return out, nil
}

// Save persists the settings for an existing user. Unknown ids fail with
// ErrorNotFound.
func (s *Service) Save(ctx context.Context, userID string, in Settings) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}

	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}
	err = s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		return repo.Set(ctx, keyPrefix+userID, raw)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "settings saved", "user_id", userID)
	return nil
}
