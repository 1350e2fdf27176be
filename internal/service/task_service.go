package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/platform/logger"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// TaskInput carries the writable fields of a task. Nil fields keep their
// current value (or default, on create).
type TaskInput struct {
	Title         *string
	Description   *string
	Status        *domain.TaskStatus
	Priority      *domain.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	CategoryID    *uuid.UUID
	ClearCategory bool
	TagIDs        []uuid.UUID
}

// TaskService implements task operations with uniform ownership enforcement:
// the task itself, any referenced category, and every referenced tag must
// belong to the acting user.
type TaskService struct {
	transactor    store.Transactor
	taskStore     store.TaskStore
	categoryStore store.CategoryStore
	tagStore      store.TagStore
}

// NewTaskService creates a TaskService with the given dependencies.
// The transactor runs multi-statement operations in one transaction.
func NewTaskService(
	transactor store.Transactor,
	taskStore store.TaskStore,
	categoryStore store.CategoryStore,
	tagStore store.TagStore,
) *TaskService {
	return &TaskService{
		transactor:    transactor,
		taskStore:     taskStore,
		categoryStore: categoryStore,
		tagStore:      tagStore,
	}
}

// Create builds a task for userID from the input and persists it together
// with its tag links in one transaction.
func (s *TaskService) Create(
	ctx context.Context,
	userID uuid.UUID,
	input TaskInput,
) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	title := ""
	if input.Title != nil {
		title = *input.Title
	}
	description := ""
	if input.Description != nil {
		description = *input.Description
	}

	task, err := domain.NewTask(userID, title, description)
	if err != nil {
		return nil, err
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.checkCategoryOwned(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = input.CategoryID
	}
	if err := s.checkTagsOwned(ctx, userID, input.TagIDs); err != nil {
		return nil, err
	}

	err = s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		taskStore := s.taskStore.WithTx(tx)
		if err := taskStore.Create(ctx, task); err != nil {
			return err
		}
		for _, tagID := range input.TagIDs {
			if err := taskStore.AddTag(ctx, task.ID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("task created", "task_id", task.ID, "user_id", userID)
	return s.taskStore.GetByID(ctx, task.ID)
}

// Get returns the task if it belongs to userID.
func (s *TaskService) Get(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	return s.getOwned(ctx, userID, taskID)
}

// List returns a page of userID's tasks matching the filter. When the filter
// references a category or tag, that reference must be owned too, so a
// listing can't be used to probe other users' IDs.
func (s *TaskService) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, int, error) {
	if filter.CategoryID != nil {
		if err := s.checkCategoryOwned(ctx, userID, *filter.CategoryID); err != nil {
			return nil, 0, err
		}
	}
	if filter.TagID != nil {
		if err := s.checkTagsOwned(ctx, userID, []uuid.UUID{*filter.TagID}); err != nil {
			return nil, 0, err
		}
	}
	return s.taskStore.List(ctx, userID, filter)
}

// Update applies the non-nil input fields to the task, re-checking ownership
// of any newly referenced category and replacing the tag set when TagIDs is
// non-nil.
func (s *TaskService) Update(
	ctx context.Context,
	userID, taskID uuid.UUID,
	input TaskInput,
) (*domain.Task, error) {
	task, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearDueDate {
		task.DueDate = nil
	}
	if input.CategoryID != nil {
		if err := s.checkCategoryOwned(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = input.CategoryID
	}
	if input.ClearCategory {
		task.CategoryID = nil
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if input.TagIDs != nil {
		if err := s.checkTagsOwned(ctx, userID, input.TagIDs); err != nil {
			return nil, err
		}
	}

	err = s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		taskStore := s.taskStore.WithTx(tx)
		if err := taskStore.Update(ctx, task); err != nil {
			return err
		}
		if input.TagIDs == nil {
			return nil
		}
		// Replace the tag set wholesale.
		for _, tag := range task.Tags {
			if err := taskStore.RemoveTag(ctx, task.ID, tag.ID); err != nil {
				return err
			}
		}
		for _, tagID := range input.TagIDs {
			if err := taskStore.AddTag(ctx, task.ID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.taskStore.GetByID(ctx, task.ID)
}

// Delete removes the task if it belongs to userID.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, taskID); err != nil {
		return err
	}
	return s.taskStore.Delete(ctx, taskID)
}

// AddTag links an owned tag to an owned task.
func (s *TaskService) AddTag(ctx context.Context, userID, taskID, tagID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, taskID); err != nil {
		return err
	}
	if err := s.checkTagsOwned(ctx, userID, []uuid.UUID{tagID}); err != nil {
		return err
	}
	return s.taskStore.AddTag(ctx, taskID, tagID)
}

// RemoveTag unlinks a tag from an owned task.
func (s *TaskService) RemoveTag(ctx context.Context, userID, taskID, tagID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, taskID); err != nil {
		return err
	}
	return s.taskStore.RemoveTag(ctx, taskID, tagID)
}

// Stats aggregates the user's task counts.
func (s *TaskService) Stats(ctx context.Context, userID uuid.UUID) (*store.TaskStats, error) {
	return s.taskStore.Stats(ctx, userID, time.Now())
}

// getOwned fetches the task and enforces ownership.
func (s *TaskService) getOwned(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		logger.FromContext(ctx).Warn("cross-user task access denied",
			"task_id", taskID,
			"owner_id", task.UserID,
			"user_id", userID)
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *TaskService) checkCategoryOwned(
	ctx context.Context,
	userID, categoryID uuid.UUID,
) error {
	category, err := s.categoryStore.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category.UserID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *TaskService) checkTagsOwned(
	ctx context.Context,
	userID uuid.UUID,
	tagIDs []uuid.UUID,
) error {
	for _, tagID := range tagIDs {
		tag, err := s.tagStore.GetByID(ctx, tagID)
		if err != nil {
			return err
		}
		if tag.UserID != userID {
			return ErrForbidden
		}
	}
	return nil
}
