package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/logging"
	"github.com/dmitrijs2005/adminpanel/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(storage.NewMemoryBackend(), log)
}

func TestAdd_ValidatesFields(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   Event
	}{
		{name: "empty title", in: Event{Title: " ", Day: "2025-06-01", Time: "09:00"}},
		{name: "bad day", in: Event{Title: "t", Day: "01.06.2025", Time: "09:00"}},
		{name: "bad time", in: Event{Title: "t", Day: "2025-06-01", Time: "9am"}},
		{name: "bad type", in: Event{Title: "t", Day: "2025-06-01", Time: "09:00", Type: "party"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Add(ctx, tc.in)
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestAdd_DefaultsTypeAndAssignsID(t *testing.T) {
	s := newTestService(t)

	e, err := s.Add(context.Background(), Event{Title: "All Hands", Day: "2025-06-01", Time: "16:00"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, TypeEvent, e.Type)
}

func TestListDay_SortedByTime(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Event{Title: "Standup", Day: "2025-06-01", Time: "09:00", Type: TypeMeeting})
	require.NoError(t, err)
	_, err = s.Add(ctx, Event{Title: "Client Call", Day: "2025-06-01", Time: "14:00", Type: TypeCall})
	require.NoError(t, err)
	_, err = s.Add(ctx, Event{Title: "Design Review", Day: "2025-06-01", Time: "11:30", Type: TypeMeeting})
	require.NoError(t, err)
	_, err = s.Add(ctx, Event{Title: "Other Day", Day: "2025-06-02", Time: "08:00"})
	require.NoError(t, err)

	day, err := s.ListDay(ctx, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, day, 3)
	assert.Equal(t, []string{"Standup", "Design Review", "Client Call"},
		[]string{day[0].Title, day[1].Title, day[2].Title})

	_, err = s.ListDay(ctx, "June 1st")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestUpcoming_CutoffAndLimit(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Event{Title: "Past", Day: "2025-05-31", Time: "10:00"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Event{Title: "Deadline", Day: "2025-06-01", Time: "17:00", Type: TypeDeadline})
	require.NoError(t, err)
	_, err = s.Add(ctx, Event{Title: "Later", Day: "2025-06-03", Time: "09:00"})
	require.NoError(t, err)

	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	up, err := s.Upcoming(ctx, from, 0)
	require.NoError(t, err)
	require.Len(t, up, 2)
	assert.Equal(t, "Deadline", up[0].Title)
	assert.Equal(t, "Later", up[1].Title)

	one, err := s.Upcoming(ctx, from, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Deadline", one[0].Title)
}

func TestDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	e, err := s.Add(ctx, Event{Title: "t", Day: "2025-06-01", Time: "10:00"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, e.ID))
	require.ErrorIs(t, s.Delete(ctx, e.ID), common.ErrorNotFound)
}
