package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// MockTaskStore implements store.TaskStore in memory. When CategoryStore and
// TagStore are set, GetByID denormalizes the category and tags onto the task
// the way the real store does.
type MockTaskStore struct {
	mu sync.Mutex

	CreateFn    func(ctx context.Context, task *domain.Task) error
	GetByIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn      func(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, int, error)
	UpdateFn    func(ctx context.Context, task *domain.Task) error
	DeleteFn    func(ctx context.Context, id uuid.UUID) error
	AddTagFn    func(ctx context.Context, taskID, tagID uuid.UUID) error
	RemoveTagFn func(ctx context.Context, taskID, tagID uuid.UUID) error
	StatsFn     func(ctx context.Context, userID uuid.UUID, now time.Time) (*store.TaskStats, error)

	Tasks    map[uuid.UUID]*domain.Task
	TaskTags map[uuid.UUID]map[uuid.UUID]bool

	CategoryStore *MockCategoryStore
	TagStore      *MockTagStore
}

// NewMockTaskStore creates an empty mock task store linked to the given
// category and tag stores.
func NewMockTaskStore(categories *MockCategoryStore, tags *MockTagStore) *MockTaskStore {
	return &MockTaskStore{
		Tasks:         make(map[uuid.UUID]*domain.Task),
		TaskTags:      make(map[uuid.UUID]map[uuid.UUID]bool),
		CategoryStore: categories,
		TagStore:      tags,
	}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements the store.TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *task
	m.Tasks[task.ID] = &clone
	return nil
}

// GetByID implements the store.TaskStore interface.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	task, ok := m.Tasks[id]
	if !ok {
		m.mu.Unlock()
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	tagIDs := make([]uuid.UUID, 0, len(m.TaskTags[id]))
	for tagID := range m.TaskTags[id] {
		tagIDs = append(tagIDs, tagID)
	}
	m.mu.Unlock()

	if clone.CategoryID != nil && m.CategoryStore != nil {
		if category, err := m.CategoryStore.GetByID(ctx, *clone.CategoryID); err == nil {
			clone.Category = category
		}
	}
	if m.TagStore != nil {
		clone.Tags = []domain.Tag{}
		for _, tagID := range tagIDs {
			if tag, err := m.TagStore.GetByID(ctx, tagID); err == nil {
				clone.Tags = append(clone.Tags, *tag)
			}
		}
		sort.Slice(clone.Tags, func(i, j int) bool {
			return clone.Tags[i].Name < clone.Tags[j].Name
		})
	}

	return &clone, nil
}

// List implements the store.TaskStore interface. The default honors the
// status, priority, category, tag, and title filters plus pagination;
// override ListFn for anything fancier.
func (m *MockTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, filter)
	}

	m.mu.Lock()
	var ids []uuid.UUID
	for id, task := range m.Tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		if filter.CategoryID != nil &&
			(task.CategoryID == nil || *task.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.TagID != nil && !m.TaskTags[id][*filter.TagID] {
			continue
		}
		if filter.Title != "" &&
			!strings.Contains(strings.ToLower(task.Title), strings.ToLower(filter.Title)) {
			continue
		}
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var tasks []*domain.Task
	for _, id := range ids {
		task, err := m.GetByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	total := len(tasks)
	page := filter.Page.Normalize()
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}
	return tasks[start:end], total, nil
}

// Update implements the store.TaskStore interface.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	clone := *task
	m.Tasks[task.ID] = &clone
	return nil
}

// Delete implements the store.TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	delete(m.TaskTags, id)
	return nil
}

// AddTag implements the store.TaskStore interface.
func (m *MockTaskStore) AddTag(ctx context.Context, taskID, tagID uuid.UUID) error {
	if m.AddTagFn != nil {
		return m.AddTagFn(ctx, taskID, tagID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.TaskTags[taskID] == nil {
		m.TaskTags[taskID] = make(map[uuid.UUID]bool)
	}
	m.TaskTags[taskID][tagID] = true
	return nil
}

// RemoveTag implements the store.TaskStore interface.
func (m *MockTaskStore) RemoveTag(ctx context.Context, taskID, tagID uuid.UUID) error {
	if m.RemoveTagFn != nil {
		return m.RemoveTagFn(ctx, taskID, tagID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.TaskTags[taskID], tagID)
	return nil
}

// Stats implements the store.TaskStore interface.
func (m *MockTaskStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*store.TaskStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, userID, now)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &store.TaskStats{}
	today := now.UTC().Truncate(24 * time.Hour)
	for _, task := range m.Tasks {
		if task.UserID != userID {
			continue
		}
		stats.Total++
		switch task.Status {
		case domain.TaskStatusTodo:
			stats.Todo++
		case domain.TaskStatusInProgress:
			stats.InProgress++
		case domain.TaskStatusDone:
			stats.Done++
		}
		if task.IsOverdue(now) {
			stats.Overdue++
		}
		if task.DueDate != nil && task.Status != domain.TaskStatusDone &&
			task.DueDate.UTC().Truncate(24*time.Hour).Equal(today) {
			stats.DueToday++
		}
	}
	return stats, nil
}

// WithTx implements the store.TaskStore interface.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
