package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksvc/tasksvc-api/internal/domain"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("defaults applied", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(userID, "write report", "")
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Nil(t, task.DueDate)
		assert.Nil(t, task.CategoryID)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask(userID, "", "")
		assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	})

	t.Run("title too long rejected", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask(userID, strings.Repeat("x", domain.MaxTaskTitleLength+1), "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("nil owner rejected", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask(uuid.Nil, "write report", "")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask(uuid.New(), "write report", "")
	require.NoError(t, err)

	t.Run("bad status", func(t *testing.T) {
		t.Parallel()

		bad := *task
		bad.Status = domain.TaskStatus("paused")
		assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidTaskStatus)
	})

	t.Run("bad priority", func(t *testing.T) {
		t.Parallel()

		bad := *task
		bad.Priority = domain.TaskPriority("urgent")
		assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidTaskPriority)
	})
}

func TestTaskIsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)
	earlierToday := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate *time.Time
		status  domain.TaskStatus
		want    bool
	}{
		{name: "no due date", dueDate: nil, status: domain.TaskStatusTodo, want: false},
		{name: "due yesterday", dueDate: &yesterday, status: domain.TaskStatusTodo, want: true},
		{name: "due today is not overdue", dueDate: &earlierToday, status: domain.TaskStatusTodo, want: false},
		{name: "due tomorrow", dueDate: &tomorrow, status: domain.TaskStatusTodo, want: false},
		{name: "done is never overdue", dueDate: &yesterday, status: domain.TaskStatusDone, want: false},
		{name: "in progress past due", dueDate: &yesterday, status: domain.TaskStatusInProgress, want: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			task := domain.Task{
				ID:      uuid.New(),
				UserID:  uuid.New(),
				Title:   "t",
				Status:  tc.status,
				DueDate: tc.dueDate,
			}
			assert.Equal(t, tc.want, task.IsOverdue(now))
		})
	}
}
