package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/mocks"
	"github.com/tasksvc/tasksvc-api/internal/service"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

type taskFixture struct {
	svc           *service.TaskService
	taskStore     *mocks.MockTaskStore
	categoryStore *mocks.MockCategoryStore
	tagStore      *mocks.MockTagStore
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	categoryStore := mocks.NewMockCategoryStore()
	tagStore := mocks.NewMockTagStore()
	taskStore := mocks.NewMockTaskStore(categoryStore, tagStore)

	return &taskFixture{
		svc:           service.NewTaskService(&mocks.MockTransactor{}, taskStore, categoryStore, tagStore),
		taskStore:     taskStore,
		categoryStore: categoryStore,
		tagStore:      tagStore,
	}
}

func (f *taskFixture) seedCategory(t *testing.T, userID uuid.UUID, name string) *domain.Category {
	t.Helper()

	category, err := domain.NewCategory(userID, name, "")
	require.NoError(t, err)
	require.NoError(t, f.categoryStore.Create(context.Background(), category))
	return category
}

func (f *taskFixture) seedTag(t *testing.T, userID uuid.UUID, name string) *domain.Tag {
	t.Helper()

	tag, err := domain.NewTag(userID, name)
	require.NoError(t, err)
	require.NoError(t, f.tagStore.Create(context.Background(), tag))
	return tag
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }

func priorityPtr(p domain.TaskPriority) *domain.TaskPriority { return &p }

func TestTaskCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("minimal input gets defaults", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		task, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("write report")})
		require.NoError(t, err)

		assert.Equal(t, userID, task.UserID)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Empty(t, task.Tags)
	})

	t.Run("with category and tags", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		category := f.seedCategory(t, userID, "work")
		urgent := f.seedTag(t, userID, "urgent")
		home := f.seedTag(t, userID, "home")

		due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		task, err := f.svc.Create(ctx, userID, service.TaskInput{
			Title:      strPtr("write report"),
			Priority:   priorityPtr(domain.TaskPriorityHigh),
			DueDate:    &due,
			CategoryID: &category.ID,
			TagIDs:     []uuid.UUID{urgent.ID, home.ID},
		})
		require.NoError(t, err)

		require.NotNil(t, task.CategoryID)
		assert.Equal(t, category.ID, *task.CategoryID)
		require.NotNil(t, task.Category)
		assert.Equal(t, "work", task.Category.Name)
		require.Len(t, task.Tags, 2)
		assert.Equal(t, "home", task.Tags[0].Name)
		assert.Equal(t, "urgent", task.Tags[1].Name)
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		_, err := f.svc.Create(ctx, userID, service.TaskInput{})
		assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	})

	t.Run("foreign category is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		foreign := f.seedCategory(t, uuid.New(), "their stuff")

		_, err := f.svc.Create(ctx, userID, service.TaskInput{
			Title:      strPtr("write report"),
			CategoryID: &foreign.ID,
		})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("foreign tag is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		foreign := f.seedTag(t, uuid.New(), "theirs")

		_, err := f.svc.Create(ctx, userID, service.TaskInput{
			Title:  strPtr("write report"),
			TagIDs: []uuid.UUID{foreign.ID},
		})
		assert.ErrorIs(t, err, service.ErrForbidden)
		assert.Empty(t, f.taskStore.Tasks)
	})

	t.Run("unknown category", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		unknown := uuid.New()

		_, err := f.svc.Create(ctx, userID, service.TaskInput{
			Title:      strPtr("write report"),
			CategoryID: &unknown,
		})
		assert.ErrorIs(t, err, store.ErrCategoryNotFound)
	})

	t.Run("store failure rolls up", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		f.taskStore.CreateFn = func(ctx context.Context, task *domain.Task) error {
			return errors.New("disk full")
		}

		_, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("write report")})
		assert.Error(t, err)
	})
}

func TestTaskGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	f := newTaskFixture(t)
	task, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("mine")})
	require.NoError(t, err)

	t.Run("owner sees the task", func(t *testing.T) {
		t.Parallel()

		got, err := f.svc.Get(ctx, userID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
	})

	t.Run("someone else gets forbidden", func(t *testing.T) {
		t.Parallel()

		_, err := f.svc.Get(ctx, uuid.New(), task.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		_, err := f.svc.Get(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("only the user's tasks, filtered", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		_, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("todo one")})
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, userID, service.TaskInput{
			Title:  strPtr("doing one"),
			Status: statusPtr(domain.TaskStatusInProgress),
		})
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, uuid.New(), service.TaskInput{Title: strPtr("not mine")})
		require.NoError(t, err)

		tasks, total, err := f.svc.List(ctx, userID, store.TaskFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, tasks, 2)

		status := domain.TaskStatusInProgress
		tasks, total, err = f.svc.List(ctx, userID, store.TaskFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, tasks, 1)
		assert.Equal(t, "doing one", tasks[0].Title)
	})

	t.Run("filtering by a foreign category is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		foreign := f.seedCategory(t, uuid.New(), "theirs")

		_, _, err := f.svc.List(ctx, userID, store.TaskFilter{CategoryID: &foreign.ID})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("filtering by a foreign tag is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		foreign := f.seedTag(t, uuid.New(), "theirs")

		_, _, err := f.svc.List(ctx, userID, store.TaskFilter{TagID: &foreign.ID})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestTaskUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("nil fields stay unchanged", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		task, err := f.svc.Create(ctx, userID, service.TaskInput{
			Title:       strPtr("write report"),
			Description: strPtr("quarterly numbers"),
		})
		require.NoError(t, err)

		updated, err := f.svc.Update(ctx, userID, task.ID, service.TaskInput{
			Status: statusPtr(domain.TaskStatusDone),
		})
		require.NoError(t, err)

		assert.Equal(t, "write report", updated.Title)
		assert.Equal(t, "quarterly numbers", updated.Description)
		assert.Equal(t, domain.TaskStatusDone, updated.Status)
	})

	t.Run("clear due date and category", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		category := f.seedCategory(t, userID, "work")
		due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

		task, err := f.svc.Create(ctx, userID, service.TaskInput{
			Title:      strPtr("write report"),
			DueDate:    &due,
			CategoryID: &category.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, task.DueDate)
		require.NotNil(t, task.CategoryID)

		updated, err := f.svc.Update(ctx, userID, task.ID, service.TaskInput{
			ClearDueDate:  true,
			ClearCategory: true,
		})
		require.NoError(t, err)

		assert.Nil(t, updated.DueDate)
		assert.Nil(t, updated.CategoryID)
	})

	t.Run("tag set is replaced wholesale", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		urgent := f.seedTag(t, userID, "urgent")
		home := f.seedTag(t, userID, "home")
		later := f.seedTag(t, userID, "later")

		task, err := f.svc.Create(ctx, userID, service.TaskInput{
			Title:  strPtr("write report"),
			TagIDs: []uuid.UUID{urgent.ID, home.ID},
		})
		require.NoError(t, err)
		require.Len(t, task.Tags, 2)

		updated, err := f.svc.Update(ctx, userID, task.ID, service.TaskInput{
			TagIDs: []uuid.UUID{later.ID},
		})
		require.NoError(t, err)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, "later", updated.Tags[0].Name)

		// Empty but non-nil clears all tags; nil leaves them alone.
		updated, err = f.svc.Update(ctx, userID, task.ID, service.TaskInput{
			TagIDs: []uuid.UUID{},
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Tags)

		updated, err = f.svc.Update(ctx, userID, task.ID, service.TaskInput{
			Title: strPtr("renamed"),
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Tags)
	})

	t.Run("cross-user update is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		task, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("mine")})
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, uuid.New(), task.ID, service.TaskInput{
			Title: strPtr("stolen"),
		})
		assert.ErrorIs(t, err, service.ErrForbidden)

		got, err := f.svc.Get(ctx, userID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.Title)
	})

	t.Run("moving to a foreign category is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		foreign := f.seedCategory(t, uuid.New(), "theirs")
		task, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("mine")})
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, userID, task.ID, service.TaskInput{
			CategoryID: &foreign.ID,
		})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		t.Parallel()

		f := newTaskFixture(t)
		task, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("mine")})
		require.NoError(t, err)

		bad := domain.TaskStatus("paused")
		_, err = f.svc.Update(ctx, userID, task.ID, service.TaskInput{Status: &bad})
		assert.ErrorIs(t, err, domain.ErrInvalidTaskStatus)
	})
}

func TestTaskDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	f := newTaskFixture(t)
	task, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("mine")})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, uuid.New(), task.ID), service.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, userID, task.ID))
	_, err = f.svc.Get(ctx, userID, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskAddRemoveTag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	f := newTaskFixture(t)
	urgent := f.seedTag(t, userID, "urgent")
	foreign := f.seedTag(t, uuid.New(), "theirs")

	task, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("mine")})
	require.NoError(t, err)

	require.NoError(t, f.svc.AddTag(ctx, userID, task.ID, urgent.ID))
	got, err := f.svc.Get(ctx, userID, task.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)

	// Linking is idempotent at the service level.
	require.NoError(t, f.svc.AddTag(ctx, userID, task.ID, urgent.ID))

	assert.ErrorIs(t, f.svc.AddTag(ctx, userID, task.ID, foreign.ID), service.ErrForbidden)
	assert.ErrorIs(t, f.svc.AddTag(ctx, uuid.New(), task.ID, urgent.ID), service.ErrForbidden)

	require.NoError(t, f.svc.RemoveTag(ctx, userID, task.ID, urgent.ID))
	got, err = f.svc.Get(ctx, userID, task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestTaskStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	f := newTaskFixture(t)
	yesterday := time.Now().UTC().AddDate(0, 0, -1)

	_, err := f.svc.Create(ctx, userID, service.TaskInput{Title: strPtr("open")})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, userID, service.TaskInput{
		Title:   strPtr("late"),
		DueDate: &yesterday,
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, userID, service.TaskInput{
		Title:  strPtr("finished"),
		Status: statusPtr(domain.TaskStatusDone),
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, uuid.New(), service.TaskInput{Title: strPtr("not mine")})
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Todo)
	assert.Equal(t, 0, stats.InProgress)
	assert.Equal(t, 1, stats.Done)
	assert.Equal(t, 1, stats.Overdue)
}
