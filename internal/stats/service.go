// Package stats aggregates real counts for the dashboard summary out of the
// other stores. It holds no state of its own.
package stats

import (
	"context"
	"time"

	"github.com/dmitrijs2005/adminpanel/internal/events"
	"github.com/dmitrijs2005/adminpanel/internal/identity"
	"github.com/dmitrijs2005/adminpanel/internal/tasks"
)

// Summary is the dashboard headline figures.
type Summary struct {
	TotalUsers     int
	AdminUsers     int
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	UpcomingEvents int
}

type Service struct {
	ids    *identity.Store
	tasks  *tasks.Service
	events *events.Service

	now func() time.Time
}

func NewService(ids *identity.Store, t *tasks.Service, e *events.Service) *Service {
	return &Service{ids: ids, tasks: t, events: e, now: time.Now}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	out := &Summary{}

	users, err := s.ids.List(ctx)
	if err != nil {
		return nil, err
	}
	out.TotalUsers = len(users)
	for _, u := range users {
		if u.Role == identity.RoleAdmin {
			out.AdminUsers++
		}
	}

	out.TotalTasks, out.CompletedTasks, out.PendingTasks, err = s.tasks.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.events.Upcoming(ctx, s.now(), 0)
	if err != nil {
		return nil, err
	}
	out.UpcomingEvents = len(upcoming)

	return out, nil
}
