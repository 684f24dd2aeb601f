package identity

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/logging"
	"github.com/dmitrijs2005/adminpanel/internal/repositories/kv"
	"github.com/dmitrijs2005/adminpanel/internal/storage"
)

// Persisted key layout. auth_users is the source of truth (insertion order =
// registration order); auth_user is a denormalized session snapshot that every
// mutation must re-sync.
const (
	usersKey          = "auth_users"
	currentUserKey    = "auth_user"
	passwordKeyPrefix = "auth_password_"
)

func passwordKey(userID string) string {
	return passwordKeyPrefix + userID
}

// Store owns the persisted users collection, the credential entries, and the
// current-session pointer. It is constructed once by the composition root and
// passed down explicitly; there is no ambient singleton.
//
// Every operation performs its read-modify-persist sequence inside one
// storage transaction. The store assumes a single writer process; concurrent
// processes sharing the same backend are not guarded against.
type Store struct {
	backend    storage.Backend
	log        logging.Logger
	bcryptCost int

	// test seams
	now   func() time.Time
	newID func(t time.Time) string

	mu      sync.RWMutex
	current *User
}

// NewStore builds a Store over the given backend. bcryptCost of 0 selects
// bcrypt.DefaultCost.
func NewStore(backend storage.Backend, log logging.Logger, bcryptCost int) *Store {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		backend:    backend,
		log:        log.With("component", "identity"),
		bcryptCost: bcryptCost,
		now:        time.Now,
		newID: func(t time.Time) string {
			return ulid.MustNew(ulid.Timestamp(t), entropy).String()
		},
	}
}

// entropy feeds ULID generation. Monotonic within one process, which keeps
// ids for a batch of registrations strictly ordered.
var entropy = ulid.Monotonic(rand.Reader, 0)

// Hydrate restores the session pointer from storage, if one was persisted by
// a previous run. A corrupt snapshot is discarded and the key removed; the
// session is then simply absent. Hydrate never fails because of bad data.
func (s *Store) Hydrate(ctx context.Context) error {
	var restored *User
	err := s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		raw, err := repo.Get(ctx, currentUserKey)
		if err != nil {
			return err
		}
		if raw == nil {
			return nil
		}
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			s.log.Warn(ctx, "discarding corrupt session snapshot", "error", err)
			return repo.Delete(ctx, currentUserKey)
		}
		restored = &u
		return nil
	})
	if err != nil {
		return fmt.Errorf("error hydrating session: %w", err)
	}
	s.setCurrent(restored)
	return nil
}

// Register creates a new user and logs it in. The first user ever registered
// receives RoleAdmin, all later ones RoleUser. A duplicate email (exact,
// case-sensitive match) fails with ErrorEmailAlreadyExists and leaves the
// store unchanged.
func (s *Store) Register(ctx context.Context, name, email, password string) (*User, error) {
	if err := validateRegister(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var created User
	err = s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		users, err := loadUsers(ctx, repo)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.Email == email {
				return common.ErrorEmailAlreadyExists
			}
		}

		role := RoleUser
		if len(users) == 0 {
			role = RoleAdmin
		}

		now := s.now().UTC()
		created = User{
			ID:        s.newID(now),
			Email:     email,
			Name:      name,
			Role:      role,
			CreatedAt: now,
		}

		users = append(users, created)
		if err := saveUsers(ctx, repo, users); err != nil {
			return err
		}
		if err := repo.Set(ctx, passwordKey(created.ID), hash); err != nil {
			return fmt.Errorf("error storing credential: %w", err)
		}
		// auto-login after registration
		return saveSession(ctx, repo, &created)
	})
	if err != nil {
		return nil, err
	}

	s.setCurrent(&created)
	s.log.Info(ctx, "user registered", "id", created.ID, "role", created.Role)

	out := created
	return &out, nil
}

// Login verifies the credentials and, on success, sets and persists the
// session snapshot. Unknown email and wrong password are indistinguishable:
// both fail with ErrorInvalidCredentials.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	var found User
	err := s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		users, err := loadUsers(ctx, repo)
		if err != nil {
			return err
		}
		var match *User
		for i := range users {
			if users[i].Email == email {
				match = &users[i]
				break
			}
		}
		if match == nil {
			return common.ErrorInvalidCredentials
		}

		hash, err := repo.Get(ctx, passwordKey(match.ID))
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
			return common.ErrorInvalidCredentials
		}

		found = *match
		return saveSession(ctx, repo, &found)
	})
	if err != nil {
		return nil, err
	}

	s.setCurrent(&found)
	s.log.Info(ctx, "user logged in", "id", found.ID)

	out := found
	return &out, nil
}

// Logout clears the session pointer in memory and in storage. It never
// touches users or credentials and is a no-op when no session is active.
func (s *Store) Logout(ctx context.Context) error {
	err := s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		return repo.Delete(ctx, currentUserKey)
	})
	if err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	s.setCurrent(nil)
	return nil
}

// UpdateProfile merges the non-nil fields of upd onto the current session's
// user, persists the merged record into the users collection, and re-syncs
// the session snapshot. Fails with ErrorNoActiveSession when logged out and
// with ErrorEmailAlreadyExists when the new email belongs to another user.
func (s *Store) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*User, error) {
	session := s.Current()
	if session == nil {
		return nil, common.ErrorNoActiveSession
	}
	if err := validateProfileUpdate(upd); err != nil {
		return nil, err
	}

	merged := *session
	if upd.Name != nil {
		merged.Name = *upd.Name
	}
	if upd.Email != nil {
		merged.Email = *upd.Email
	}
	if upd.Avatar != nil {
		merged.Avatar = *upd.Avatar
	}

	err := s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		users, err := loadUsers(ctx, repo)
		if err != nil {
			return err
		}
		idx := -1
		for i := range users {
			if users[i].ID == merged.ID {
				idx = i
				continue
			}
			if users[i].Email == merged.Email {
				return common.ErrorEmailAlreadyExists
			}
		}
		if idx < 0 {
			return common.ErrorNotFound
		}
		users[idx] = merged
		if err := saveUsers(ctx, repo, users); err != nil {
			return err
		}
		return saveSession(ctx, repo, &merged)
	})
	if err != nil {
		return nil, err
	}

	s.setCurrent(&merged)
	s.log.Info(ctx, "profile updated", "id", merged.ID)

	out := merged
	return &out, nil
}

// ChangePassword verifies the current password and replaces the stored
// credential entry. Requires an active session.
func (s *Store) ChangePassword(ctx context.Context, current, updated string) error {
	session := s.Current()
	if session == nil {
		return common.ErrorNoActiveSession
	}
	if err := validatePassword(updated); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(updated), s.bcryptCost)
	if err != nil {
		return common.ErrorInternal
	}

	err = s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		stored, err := repo.Get(ctx, passwordKey(session.ID))
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword(stored, []byte(current)) != nil {
			return common.ErrorInvalidCredentials
		}
		return repo.Set(ctx, passwordKey(session.ID), hash)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password changed", "id", session.ID)
	return nil
}

// Current returns a snapshot copy of the session's user, or nil when no
// session is active.
func (s *Store) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// List returns all users in registration order.
func (s *Store) List(ctx context.Context) ([]User, error) {
	var users []User
	err := s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		var err error
		users, err = loadUsers(ctx, repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Exists reports whether a user with the given id is present in the users
// collection.
func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	users, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) setCurrent(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = u
}

func loadUsers(ctx context.Context, repo kv.Repository) ([]User, error) {
	raw, err := repo.Get(ctx, usersKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("error decoding users collection: %w", err)
	}
	return users, nil
}

func saveUsers(ctx context.Context, repo kv.Repository, users []User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("error encoding users collection: %w", err)
	}
	return repo.Set(ctx, usersKey, raw)
}

func saveSession(ctx context.Context, repo kv.Repository, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("error encoding session snapshot: %w", err)
	}
	return repo.Set(ctx, currentUserKey, raw)
}
