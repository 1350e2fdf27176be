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

// MockTagStore implements store.TagStore in memory.
type MockTagStore struct {
	mu sync.Mutex

	CreateFn    func(ctx context.Context, tag *domain.Tag) error
	GetByIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	GetByNameFn func(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)
	ListFn      func(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.Tag, int, error)
	UpdateFn    func(ctx context.Context, tag *domain.Tag) error
	DeleteFn    func(ctx context.Context, id uuid.UUID) error
	StatsFn     func(ctx context.Context, userID uuid.UUID) ([]store.TagStats, error)

	Tags map[uuid.UUID]*domain.Tag
}

// NewMockTagStore creates an empty mock tag store.
func NewMockTagStore() *MockTagStore {
	return &MockTagStore{Tags: make(map[uuid.UUID]*domain.Tag)}
}

var _ store.TagStore = (*MockTagStore)(nil)

// Create implements the store.TagStore interface.
func (m *MockTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, tag)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Tags {
		if existing.UserID == tag.UserID && existing.Name == tag.Name {
			return store.ErrTagNameExists
		}
	}
	clone := *tag
	m.Tags[tag.ID] = &clone
	return nil
}

// GetByID implements the store.TagStore interface.
func (m *MockTagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tag, ok := m.Tags[id]
	if !ok {
		return nil, store.ErrTagNotFound
	}
	clone := *tag
	return &clone, nil
}

// GetByName implements the store.TagStore interface.
func (m *MockTagStore) GetByName(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Tag, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, userID, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range m.Tags {
		if tag.UserID == userID && tag.Name == name {
			clone := *tag
			return &clone, nil
		}
	}
	return nil, store.ErrTagNotFound
}

// List implements the store.TagStore interface.
func (m *MockTagStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page store.Page,
) ([]*domain.Tag, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, page)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var tags []*domain.Tag
	for _, tag := range m.Tags {
		if tag.UserID == userID {
			clone := *tag
			tags = append(tags, &clone)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, len(tags), nil
}

// Update implements the store.TagStore interface.
func (m *MockTagStore) Update(ctx context.Context, tag *domain.Tag) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, tag)
	}

	if err := tag.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tags[tag.ID]; !ok {
		return store.ErrTagNotFound
	}
	for _, other := range m.Tags {
		if other.ID != tag.ID && other.UserID == tag.UserID && other.Name == tag.Name {
			return store.ErrTagNameExists
		}
	}
	clone := *tag
	m.Tags[tag.ID] = &clone
	return nil
}

// Delete implements the store.TagStore interface.
func (m *MockTagStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Tags[id]; !ok {
		return store.ErrTagNotFound
	}
	delete(m.Tags, id)
	return nil
}

// Stats implements the store.TagStore interface. The default reports zero
// task counts; override StatsFn for richer fixtures.
func (m *MockTagStore) Stats(ctx context.Context, userID uuid.UUID) ([]store.TagStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var stats []store.TagStats
	for _, tag := range m.Tags {
		if tag.UserID == userID {
			stats = append(stats, store.TagStats{TagID: tag.ID, Name: tag.Name})
		}
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, nil
}

// WithTx implements the store.TagStore interface.
func (m *MockTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return m
}
