// Package tasks implements the task board store: in-order CRUD over task
// records with client-side filtering and derived per-category counts,
// persisted under a single key in the shared key/value namespace.
package tasks

import "time"

// Priority of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is a single board entry.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	DueDate     string    `json:"dueDate,omitempty"` // YYYY-MM-DD
	Assignee    string    `json:"assignee,omitempty"`
	Category    string    `json:"category,omitempty"`
	Starred     bool      `json:"starred"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Status selects which tasks List returns.
type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusStarred   Status = "starred"
)

// Filter narrows List results. Zero value means everything.
type Filter struct {
	Status Status
	Search string // case-insensitive substring over title and description
}

// Patch carries a partial task update; nil fields keep the stored value.
type Patch struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *string
	Assignee    *string
	Category    *string
}
