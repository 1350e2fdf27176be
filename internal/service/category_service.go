package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// CategoryService implements category operations with ownership enforcement.
type CategoryService struct {
	categoryStore store.CategoryStore
}

// NewCategoryService creates a CategoryService with the given dependencies.
func NewCategoryService(categoryStore store.CategoryStore) *CategoryService {
	return &CategoryService{categoryStore: categoryStore}
}

// Create persists a new category owned by userID.
func (s *CategoryService) Create(
	ctx context.Context,
	userID uuid.UUID,
	name, description string,
) (*domain.Category, error) {
	category, err := domain.NewCategory(userID, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.categoryStore.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Get returns the category if it belongs to userID.
func (s *CategoryService) Get(
	ctx context.Context,
	userID, categoryID uuid.UUID,
) (*domain.Category, error) {
	return s.getOwned(ctx, userID, categoryID)
}

// List returns a page of the user's categories.
func (s *CategoryService) List(
	ctx context.Context,
	userID uuid.UUID,
	page store.Page,
) ([]*domain.Category, int, error) {
	return s.categoryStore.List(ctx, userID, page)
}

// Update renames or re-describes an owned category. Nil fields are left
// unchanged.
func (s *CategoryService) Update(
	ctx context.Context,
	userID, categoryID uuid.UUID,
	name, description *string,
) (*domain.Category, error) {
	category, err := s.getOwned(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		category.Name = *name
	}
	if description != nil {
		category.Description = *description
	}

	if err := s.categoryStore.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes an owned category. Its tasks survive uncategorized.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, categoryID); err != nil {
		return err
	}
	return s.categoryStore.Delete(ctx, categoryID)
}

// Stats returns per-category task counts for the user.
func (s *CategoryService) Stats(
	ctx context.Context,
	userID uuid.UUID,
) ([]store.CategoryStats, error) {
	return s.categoryStore.Stats(ctx, userID)
}

func (s *CategoryService) getOwned(
	ctx context.Context,
	userID, categoryID uuid.UUID,
) (*domain.Category, error) {
	category, err := s.categoryStore.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrForbidden
	}
	return category, nil
}
