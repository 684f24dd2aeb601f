package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/adminpanel/internal/common"
	"github.com/dmitrijs2005/adminpanel/internal/logging"
	"github.com/dmitrijs2005/adminpanel/internal/repositories/kv"
	"github.com/dmitrijs2005/adminpanel/internal/storage"
)

const tasksKey = "tasks"

// Service owns the persisted task list. Like the identity store, every
// mutation is a read-modify-persist sequence inside one transaction.
type Service struct {
	backend storage.Backend
	log     logging.Logger

	now   func() time.Time
	newID func() string
}

func NewService(backend storage.Backend, log logging.Logger) *Service {
	return &Service{
		backend: backend,
		log:     log.With("component", "tasks"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Add stores a new task. ID and CreatedAt are assigned here; Priority
// defaults to medium when unset.
func (s *Service) Add(ctx context.Context, t Task) (*Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", common.ErrorValidation)
	}
	switch t.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	case "":
		t.Priority = PriorityMedium
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", common.ErrorValidation, t.Priority)
	}

	t.ID = s.newID()
	t.CreatedAt = s.now().UTC()
	t.Completed = false

	err := s.mutate(ctx, func(items []Task) ([]Task, error) {
		return append(items, t), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "task added", "id", t.ID, "priority", t.Priority)
	return &t, nil
}

// Toggle flips the completion flag of the task with the given id.
func (s *Service) Toggle(ctx context.Context, id string) (*Task, error) {
	return s.update(ctx, id, func(t *Task) { t.Completed = !t.Completed })
}

// Update merges the non-nil fields of patch onto the task with the given id.
// Completion and star state are left to Toggle and Star.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", common.ErrorValidation)
	}
	if patch.Priority != nil {
		switch *patch.Priority {
		case PriorityHigh, PriorityMedium, PriorityLow:
		default:
			return nil, fmt.Errorf("%w: unknown priority %q", common.ErrorValidation, *patch.Priority)
		}
	}

	t, err := s.update(ctx, id, func(t *Task) {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.DueDate != nil {
			t.DueDate = *patch.DueDate
		}
		if patch.Assignee != nil {
			t.Assignee = *patch.Assignee
		}
		if patch.Category != nil {
			t.Category = *patch.Category
		}
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "task updated", "id", id)
	return t, nil
}

// Star flips the starred flag of the task with the given id.
func (s *Service) Star(ctx context.Context, id string) (*Task, error) {
	return s.update(ctx, id, func(t *Task) { t.Starred = !t.Starred })
}

// Delete removes the task with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(items []Task) ([]Task, error) {
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
	s.log.Info(ctx, "task deleted", "id", id)
	return nil
}

// List returns tasks in insertion order, narrowed by the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]Task, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(f.Search)
	out := make([]Task, 0, len(items))
	for _, t := range items {
		switch f.Status {
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		case StatusPending:
			if t.Completed {
				continue
			}
		case StatusStarred:
			if !t.Starred {
				continue
			}
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// CategoryCounts returns how many tasks sit in each category.
func (s *Service) CategoryCounts(ctx context.Context) (map[string]int, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range items {
		if t.Category != "" {
			counts[t.Category]++
		}
	}
	return counts, nil
}

// StatusCounts returns total, completed, and pending counts.
func (s *Service) StatusCounts(ctx context.Context) (total, completed, pending int, err error) {
	items, err := s.load(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, t := range items {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	return len(items), completed, pending, nil
}

func (s *Service) update(ctx context.Context, id string, fn func(*Task)) (*Task, error) {
	var updated Task
	err := s.mutate(ctx, func(items []Task) ([]Task, error) {
		for i := range items {
			if items[i].ID == id {
				fn(&items[i])
				updated = items[i]
				return items, nil
			}
		}
		return nil, common.ErrorNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) mutate(ctx context.Context, fn func([]Task) ([]Task, error)) error {
	return s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		items, err := loadTasks(ctx, repo)
		if err != nil {
			return err
		}
		items, err = fn(items)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("error encoding tasks: %w", err)
		}
		return repo.Set(ctx, tasksKey, raw)
	})
}

func (s *Service) load(ctx context.Context) ([]Task, error) {
	var items []Task
	err := s.backend.Run(ctx, func(ctx context.Context, repo kv.Repository) error {
		var err error
		items, err = loadTasks(ctx, repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func loadTasks(ctx context.Context, repo kv.Repository) ([]Task, error) {
	raw, err := repo.Get(ctx, tasksKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var items []Task
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("error decoding tasks: %w", err)
	}
	return items, nil
}
