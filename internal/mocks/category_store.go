package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// MockCategoryStore implements store.CategoryStore in memory.
type MockCategoryStore struct {
	mu sync.Mutex

	CreateFn  func(ctx context.Context, category *domain.Category) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	ListFn    func(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.Category, int, error)
	UpdateFn  func(ctx context.Context, category *domain.Category) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error
	StatsFn   func(ctx context.Context, userID uuid.UUID) ([]store.CategoryStats, error)

	Categories map[uuid.UUID]*domain.Category
}

// NewMockCategoryStore creates an empty mock category store.
func NewMockCategoryStore() *MockCategoryStore {
	return &MockCategoryStore{Categories: make(map[uuid.UUID]*domain.Category)}
}

var _ store.CategoryStore = (*MockCategoryStore)(nil)

// Create implements the store.CategoryStore interface.
func (m *MockCategoryStore) Create(ctx context.Context, category *domain.Category) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, category)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *category
	m.Categories[category.ID] = &clone
	return nil
}

// GetByID implements the store.CategoryStore interface.
func (m *MockCategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.Categories[id]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	clone := *category
	return &clone, nil
}

// List implements the store.CategoryStore interface.
func (m *MockCategoryStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page store.Page,
) ([]*domain.Category, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, page)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var categories []*domain.Category
	for _, category := range m.Categories {
		if category.UserID == userID {
			clone := *category
			categories = append(categories, &clone)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, len(categories), nil
}

// Update implements the store.CategoryStore interface.
func (m *MockCategoryStore) Update(ctx context.Context, category *domain.Category) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, category)
	}

	if err := category.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Categories[category.ID]; !ok {
		return store.ErrCategoryNotFound
	}
	clone := *category
	m.Categories[category.ID] = &clone
	return nil
}

// Delete implements the store.CategoryStore interface.
func (m *MockCategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Categories[id]; !ok {
		return store.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// Stats implements the store.CategoryStore interface. The default returns a
// zero-count row per category; override StatsFn for richer fixtures.
func (m *MockCategoryStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
) ([]store.CategoryStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var stats []store.CategoryStats
	for _, category := range m.Categories {
		if category.UserID == userID {
			stats = append(stats, store.CategoryStats{
				CategoryID: category.ID,
				Name:       category.Name,
			})
		}
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, nil
}

// WithTx implements the store.CategoryStore interface.
func (m *MockCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return m
}
