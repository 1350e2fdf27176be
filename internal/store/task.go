package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
)

// Task sort fields accepted by TaskFilter.SortBy.
const (
	TaskSortCreatedAt = "created_at"
	TaskSortUpdatedAt = "updated_at"
	TaskSortDueDate   = "due_date"
	TaskSortPriority  = "priority"
	TaskSortTitle     = "title"
)

// TaskFilter narrows and orders task listings. Nil pointer fields are
// ignored. Zero-value sort falls back to created_at descending.
type TaskFilter struct {
	// Title matches case-insensitively on a substring of the task title.
	Title      string
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	CategoryID *uuid.UUID
	TagID      *uuid.UUID

	// Overdue filters on due_date relative to Now: true selects tasks with
	// a due date before today that are not done, false the complement.
	Overdue *bool
	// Now anchors the overdue comparison; the zero value means time.Now.
	Now time.Time

	DueFrom *time.Time
	DueTo   *time.Time

	SortBy         string
	SortDescending bool

	Page Page
}

// TaskStats summarizes a user's tasks for the stats endpoint.
type TaskStats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
	DueToday   int `json:"due_today"`
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task. Returns ErrInvalidEntity if the referenced
	// user or category does not exist (foreign key violation).
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its category and tags populated.
	// Returns ErrTaskNotFound if the task does not exist. Ownership is the
	// caller's concern: the row is returned regardless of its user_id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the page of userID's tasks selected by the filter and
	// the total count of matching tasks.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, int, error)

	// Update persists changed task fields.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and its task_tags rows.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddTag links a tag to a task. Adding an already-linked tag is a no-op.
	// Returns ErrInvalidEntity if the task or tag row does not exist.
	AddTag(ctx context.Context, taskID, tagID uuid.UUID) error

	// RemoveTag unlinks a tag from a task. Removing an absent link is a no-op.
	RemoveTag(ctx context.Context, taskID, tagID uuid.UUID) error

	// Stats aggregates the user's task counts by status plus overdue and
	// due-today totals, relative to now.
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*TaskStats, error)

	// WithTx returns a new TaskStore instance bound to the transaction.
	WithTx(tx *sql.Tx) TaskStore
}
