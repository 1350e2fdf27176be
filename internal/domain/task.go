package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

// Known task statuses.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid reports whether the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority is the urgency ranking of a task.
type TaskPriority string

// Known task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid reports whether the priority is one of the known values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task title and description length bounds, matching the tasks table.
const (
	MaxTaskTitleLength       = 128
	MaxTaskDescriptionLength = 1024
)

// Task represents a single unit of work owned by a user.
// Category and Tags are populated on reads when the related rows exist;
// they are denormalized conveniences, not part of the task's identity.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CategoryID  *uuid.UUID   `json:"category_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	Category *Category `json:"-"`
	Tags     []Tag     `json:"-"`
}

// NewTask creates a task owned by userID with defaults applied
// (status todo, priority medium).
func NewTask(userID uuid.UUID, title, description string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      TaskStatusTodo,
		Priority:    TaskPriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTitle)
	}
	if len(t.Title) > MaxTaskTitleLength {
		return NewValidationError("title", "is too long", ErrValidation)
	}
	if len(t.Description) > MaxTaskDescriptionLength {
		return NewValidationError("description", "is too long", ErrValidation)
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "must be todo, in_progress or done", ErrInvalidTaskStatus)
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "must be low, medium or high", ErrInvalidTaskPriority)
	}
	return nil
}

// IsOverdue reports whether the task's due date lies strictly before
// today (in UTC). Tasks without a due date and completed tasks are never
// overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusDone {
		return false
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return t.DueDate.UTC().Truncate(24 * time.Hour).Before(today)
}
