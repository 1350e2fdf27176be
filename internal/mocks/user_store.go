package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/service/auth"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// MockUserStore implements store.UserStore in memory.
type MockUserStore struct {
	mu sync.Mutex

	CreateFn            func(ctx context.Context, user *domain.User) error
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIdentifierFn   func(ctx context.Context, identifier string) (*domain.User, error)
	ListFn              func(ctx context.Context, page store.Page) ([]*domain.User, int, error)
	UpdateFn            func(ctx context.Context, user *domain.User) error
	DeleteFn            func(ctx context.Context, id uuid.UUID) error
	RecordLoginFn       func(ctx context.Context, id uuid.UUID, at time.Time, refreshTokenID uuid.UUID) error
	SetRefreshTokenIDFn func(ctx context.Context, id uuid.UUID, refreshTokenID uuid.UUID) error

	// Users maps user ID to user. The default implementations hash passwords
	// with Hasher the way the real store does.
	Users  map[uuid.UUID]*domain.User
	Hasher auth.PasswordHasher
}

// NewMockUserStore creates a mock store hashing with the given hasher.
func NewMockUserStore(hasher auth.PasswordHasher) *MockUserStore {
	return &MockUserStore{
		Users:  make(map[uuid.UUID]*domain.User),
		Hasher: hasher,
	}
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create implements the store.UserStore interface.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Users {
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	hashed, err := m.Hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	user.Password = ""

	clone := *user
	m.Users[user.ID] = &clone
	return nil
}

// GetByID implements the store.UserStore interface.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// GetByIdentifier implements the store.UserStore interface.
func (m *MockUserStore) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*domain.User, error) {
	if m.GetByIdentifierFn != nil {
		return m.GetByIdentifierFn(ctx, identifier)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.Users {
		if user.Username == identifier || user.Email == identifier {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements the store.UserStore interface.
func (m *MockUserStore) List(
	ctx context.Context,
	page store.Page,
) ([]*domain.User, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]*domain.User, 0, len(m.Users))
	for _, user := range m.Users {
		clone := *user
		users = append(users, &clone)
	}
	return users, len(users), nil
}

// Update implements the store.UserStore interface.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}

	for _, other := range m.Users {
		if other.ID == user.ID {
			continue
		}
		if other.Username == user.Username {
			return store.ErrUsernameExists
		}
		if other.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	if user.Password != "" {
		hashed, err := m.Hasher.Hash(user.Password)
		if err != nil {
			return err
		}
		user.HashedPassword = hashed
		user.Password = ""
	} else {
		user.HashedPassword = existing.HashedPassword
	}

	clone := *user
	m.Users[user.ID] = &clone
	return nil
}

// Delete implements the store.UserStore interface.
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.Users, id)
	return nil
}

// RecordLogin implements the store.UserStore interface.
func (m *MockUserStore) RecordLogin(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
	refreshTokenID uuid.UUID,
) error {
	if m.RecordLoginFn != nil {
		return m.RecordLoginFn(ctx, id, at, refreshTokenID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.Users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	t := at
	user.LastLoginAt = &t
	user.RefreshTokenID = refreshTokenID
	return nil
}

// SetRefreshTokenID implements the store.UserStore interface.
func (m *MockUserStore) SetRefreshTokenID(
	ctx context.Context,
	id uuid.UUID,
	refreshTokenID uuid.UUID,
) error {
	if m.SetRefreshTokenIDFn != nil {
		return m.SetRefreshTokenIDFn(ctx, id, refreshTokenID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.Users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.RefreshTokenID = refreshTokenID
	return nil
}

// WithTx implements the store.UserStore interface. The mock has no
// transactions; it returns itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
