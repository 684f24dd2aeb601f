package identity

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/logging"
	"github.com/dmitrijs2005/adminpanel/internal/repositories/kv"
	"github.com/dmitrijs2005/adminpanel/internal/storage"
)

func newTestStore(t *testing.T) (*Store, storage.Backend) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := NewStore(backend, log, bcrypt.MinCost)
	return s, backend
}

func getRaw(t *testing.T, backend storage.Backend, key string) []byte {
	t.Helper()
	var raw []byte
	err := backend.Run(context.Background(), func(ctx context.Context, repo kv.Repository) error {
		var err error
		raw, err = repo.Get(ctx, key)
		return err
	})
	require.NoError(t, err)
	return raw
}

func setRaw(t *testing.T, backend storage.Backend, key string, value []byte) {
	t.Helper()
	err := backend.Run(context.Background(), func(ctx context.Context, repo kv.Repository) error {
		return repo.Set(ctx, key, value)
	})
	require.NoError(t, err)
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	// auto-login
	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "alice@x.com", cur.Email)
	assert.Equal(t, RoleAdmin, cur.Role)
}

func TestRegister_SubsequentUsersAreRegular(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	u, err := s.Register(ctx, "Bob", "bob@x.com", "pw2")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, u.Role)

	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "bob@x.com", cur.Email)
}

func TestRegister_DuplicateEmail_NoMutation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	_, err = s.Register(ctx, "Bob", "bob@x.com", "pw2")
	require.NoError(t, err)

	_, err = s.Register(ctx, "Eve", "alice@x.com", "pw3")
	require.ErrorIs(t, err, common.ErrorEmailAlreadyExists)

	users, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2, "failed registration must not mutate the store")
}

func TestRegister_EmailMatchIsCaseSensitive(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	// exact-string matching: a different casing registers a separate user
	u, err := s.Register(ctx, "Alice Again", "Alice@x.com", "pw2")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, u.Role)
}

func TestRegister_IDsAreUniqueAndOrdered(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	b, err := s.Register(ctx, "Bob", "bob@x.com", "pw2")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID, "ulids must sort in registration order")
}

func TestRegister_ValidationFailures(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name, userName, email, password string
	}{
		{name: "empty name", userName: "", email: "a@x.com", password: "pw"},
		{name: "empty email", userName: "A", email: "", password: "pw"},
		{name: "malformed email", userName: "A", email: "not-an-email", password: "pw"},
		{name: "empty password", userName: "A", email: "a@x.com", password: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.userName, tc.email, tc.password)
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestRegister_StoresBcryptHashNotPlaintext(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	hash := getRaw(t, backend, passwordKey(u.ID))
	require.NotNil(t, hash)
	assert.NotEqual(t, []byte("pw1"), hash)
	require.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("pw1")))
}

func TestLogin_Success(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	u, err := s.Login(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.Equal(t, RoleAdmin, u.Role)

	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, reg.ID, cur.ID)
	assert.Equal(t, reg.Name, cur.Name)
}

func TestLogin_WrongPasswordAndUnknownEmail_SameError(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	_, errWrongPw := s.Login(ctx, "alice@x.com", "wrong")
	_, errUnknown := s.Login(ctx, "nobody@x.com", "pw1")

	require.ErrorIs(t, errWrongPw, common.ErrorInvalidCredentials)
	require.ErrorIs(t, errUnknown, common.ErrorInvalidCredentials)
	assert.Equal(t, errWrongPw.Error(), errUnknown.Error(),
		"unknown email and wrong password must be indistinguishable")

	assert.Nil(t, s.Current(), "failed login must leave the session absent")
}

func TestLogout_ClearsSessionAndIsIdempotent(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	require.NotNil(t, getRaw(t, backend, currentUserKey))

	require.NoError(t, s.Logout(ctx))
	assert.Nil(t, s.Current())
	assert.Nil(t, getRaw(t, backend, currentUserKey))

	// users and credentials survive
	users, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	// no-op without a session
	require.NoError(t, s.Logout(ctx))
}

func TestUpdateProfile_PersistsAndResyncsSession(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	name := "X"
	avatar := "https://example.com/a.png"
	u, err := s.UpdateProfile(ctx, ProfileUpdate{Name: &name, Avatar: &avatar})
	require.NoError(t, err)

	assert.Equal(t, "X", u.Name)
	assert.Equal(t, avatar, u.Avatar)
	assert.Equal(t, reg.ID, u.ID)
	assert.Equal(t, reg.Role, u.Role)
	assert.Equal(t, reg.CreatedAt, u.CreatedAt)

	// users collection reflects the merge
	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "X", users[0].Name)

	// session snapshot re-synced in storage too
	raw := getRaw(t, backend, currentUserKey)
	assert.Contains(t, string(raw), `"name":"X"`)
}

func TestUpdateProfile_NoSession(t *testing.T) {
	s, _ := newTestStore(t)
	name := "X"
	_, err := s.UpdateProfile(context.Background(), ProfileUpdate{Name: &name})
	require.ErrorIs(t, err, common.ErrorNoActiveSession)
}

func TestUpdateProfile_RejectsDuplicateEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	_, err = s.Register(ctx, "Bob", "bob@x.com", "pw2")
	require.NoError(t, err)

	// Bob is logged in; taking Alice's email must fail
	email := "alice@x.com"
	_, err = s.UpdateProfile(ctx, ProfileUpdate{Email: &email})
	require.ErrorIs(t, err, common.ErrorEmailAlreadyExists)

	users, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", users[1].Email, "failed update must not mutate")
}

func TestUpdateProfile_KeepingOwnEmailIsFine(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	email := "alice@x.com"
	name := "Alice B."
	u, err := s.UpdateProfile(ctx, ProfileUpdate{Name: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", u.Name)
}

func TestChangePassword(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	require.ErrorIs(t, s.ChangePassword(ctx, "wrong", "pw2"), common.ErrorInvalidCredentials)
	require.NoError(t, s.ChangePassword(ctx, "pw1", "pw2"))

	require.NoError(t, s.Logout(ctx))
	_, err = s.Login(ctx, "alice@x.com", "pw1")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)
	_, err = s.Login(ctx, "alice@x.com", "pw2")
	require.NoError(t, err)
}

func TestChangePassword_NoSession(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.ChangePassword(context.Background(), "a", "b")
	require.ErrorIs(t, err, common.ErrorNoActiveSession)
}

func TestHydrate_RestoresPersistedSession(t *testing.T) {
	backend := storage.NewMemoryBackend()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	first := NewStore(backend, log, bcrypt.MinCost)
	reg, err := first.Register(context.Background(), "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	// a fresh store over the same backend sees the persisted session
	second := NewStore(backend, log, bcrypt.MinCost)
	require.Nil(t, second.Current())
	require.NoError(t, second.Hydrate(context.Background()))

	cur := second.Current()
	require.NotNil(t, cur)
	assert.Equal(t, reg.ID, cur.ID)
	assert.Equal(t, reg.Email, cur.Email)
}

func TestHydrate_DiscardsCorruptSnapshot(t *testing.T) {
	s, backend := newTestStore(t)
	setRaw(t, backend, currentUserKey, []byte(`{not json`))

	require.NoError(t, s.Hydrate(context.Background()), "corrupt data is recovered locally, never surfaced")
	assert.Nil(t, s.Current())
	assert.Nil(t, getRaw(t, backend, currentUserKey), "corrupt value must be removed")
}

func TestCurrent_ReturnsSnapshotCopy(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	cur := s.Current()
	cur.Name = "Mallory"

	assert.Equal(t, "Alice", s.Current().Name, "mutating a snapshot must not affect the store")
}

func TestExists(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	ok, err := s.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "01UNKNOWN")
	require.NoError(t, err)
	assert.False(t, ok)
}

// End-to-end walk-through: two registrations, a duplicate, a failed login,
// a successful one.
func TestRegisterLoginLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.Register(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, a.Role)

	b, err := s.Register(ctx, "Bob", "bob@x.com", "pw2")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, b.Role)

	_, err = s.Register(ctx, "Eve", "alice@x.com", "pw3")
	require.ErrorIs(t, err, common.ErrorEmailAlreadyExists)
	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Login(ctx, "alice@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)
	require.Nil(t, s.Current())

	u, err := s.Login(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", u.Email)
	require.NotNil(t, s.Current())
}

func TestStore_ClockAndIDSeams(t *testing.T) {
	s, _ := newTestStore(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.newID = func(time.Time) string { return "fixed-id" }

	u, err := s.Register(context.Background(), "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", u.ID)
	assert.Equal(t, fixed, u.CreatedAt)
}
