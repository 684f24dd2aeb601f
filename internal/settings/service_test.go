package settings

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/logging"
	"github.com/dmitrijs2005/adminpanel/internal/storage"
)

type fakeChecker struct {
	known map[string]bool
}

func (f *fakeChecker) Exists(ctx context.Context, userID string) (bool, error) {
	return f.known[userID], nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	checker := &fakeChecker{known: map[string]bool{"u1": true}}
	return NewService(storage.NewMemoryBackend(), checker, log)
}

func TestGet_ReturnsDefaultsWhenAbsent(t *testing.T) {
	s := newTestService(t)

	got, err := s.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
	assert.True(t, got.Notifications.Email)
	assert.False(t, got.Notifications.Push)
	assert.Equal(t, "light", got.Theme)
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	in := Settings{
		Notifications: Notifications{Email: false, Push: true, Weekly: false},
		Theme:         "dark",
	}
	require.NoError(t, s.Save(ctx, "u1", in))

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSave_UnknownUser(t *testing.T) {
	s := newTestService(t)
	err := s.Save(context.Background(), "ghost", Defaults())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_IsolatedPerUser(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	in := Defaults()
	in.Theme = "dark"
	require.NoError(t, s.Save(ctx, "u1", in))

	other, err := s.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "light", other.Theme)
}
