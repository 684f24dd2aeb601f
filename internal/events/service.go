package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/logging"
	"github.com/dmitrijs2005/adminpanel/internal/repositories/kv"
	"github.com/dmitrijs2005/adminpanel/internal/storage"
)

const eventsKey = "events"

const (
	dayLayout  = "2006-01-02"
	timeLayout = "15:04"
)

type Service struct {
	backend storage.Backend
	log     logging.Logger

	newID func() string
}

func NewService(backend storage.Backend, log logging.Logger) *Service {
	return &Service{
		backend: backend,
		log:     log.With("component", "events"),
		newID:   uuid.NewString,
	}
}

// Add validates and stores a new event, assigning its id.
func (s *Service) Add(ctx context.Context, e Event) (*Event, error) {
	if strings.TrimSpace(e.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", common.ErrorValidation)
	}
	if _, err := time.Parse(dayLayout, e.Day); err != nil {
		return nil, fmt.Errorf("%w: day must be YYYY-MM-DD", common.ErrorValidation)
	}
	if _, err := time.Parse(timeLayout, e.Time); err != nil {
		return nil, fmt.Errorf("%w: time must be HH:MM", common.ErrorValidation)
	}
	switch e.Type {
	case TypeMeeting, TypeCall, TypeEvent, TypeDeadline:
	case "":
		e.Type = TypeEvent
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", common.ErrorValidation, e.Type)
	}

	e.ID = s.newID()

	err := s.mutate(ctx, func(items []Event) ([]Event, error) {
		return append(items, e), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "event added", "id", e.ID, "day", e.Day)
	return &e, nil
}

// Delete removes the event with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(items []Event) ([]Event, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, common.ErrorNotFound
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "event deleted", "id", id)
	return nil
}

// ListDay returns the events of one day sorted by time.
func (s *Service) ListDay(ctx context.Context, day string) ([]Event, error) {
	if _, err := time.Parse(dayLayout, day); err != nil {
		return nil, fmt.Errorf("%w: day must be YYYY-MM-DD", common.ErrorValidation)
	}
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0)
	for _, e := range items {
		if e.Day == day {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out, nil
}

// Upcoming returns up to n events at or after the given moment, soonest
// first.
func (s *Service) Upcoming(ctx context.Context, from time.Time, n int) ([]Event, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := from.Format(dayLayout + " " + timeLayout)
	out := make([]Event, 0)
	for _, e := range items {
		if e.Day+" "+e.Time >= cutoff {
			out = append(out, e)
		}
	}
	sortEvents(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// sortEvents orders by day then time; the string layouts sort
// chronologically.
func sortEvents(items []Event) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Day != items[j].Day {
			return items[i].Day < items[j].Day
		}
		return items[i].Time < items[j].Time
	})
}

func (s *Service) mutate(ctx context.Context, fn func([]Event) ([]Event, error)) error {
	return s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		items, err := loadEvents(ctx, repo)
		if err != nil {
			return err
		}
		items, err = fn(items)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("error encoding events: %w", err)
		}
		return repo.Set(ctx, eventsKey, raw)
	})
}

func (s *Service) load(ctx context.Context) ([]Event, error) {
	var items []Event
	err := s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		var err error
		items, err = loadEvents(ctx, repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func loadEvents(ctx context.Context, repo kv.Repository) ([]Event, error) {
	raw, err := repo.Get(ctx, eventsKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var items []Event
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}
	return items, nil
}
