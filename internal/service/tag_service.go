package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// TagService implements tag operations with ownership enforcement.
type TagService struct {
	tagStore store.TagStore
}

// NewTagService creates a TagService with the given dependencies.
func NewTagService(tagStore store.TagStore) *TagService {
	return &TagService{tagStore: tagStore}
}

// Create persists a new tag owned by userID. Names are unique per user.
func (s *TagService) Create(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Tag, error) {
	tag, err := domain.NewTag(userID, name)
	if err != nil {
		return nil, err
	}
	if err := s.tagStore.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Get returns the tag if it belongs to userID.
func (s *TagService) Get(ctx context.Context, userID, tagID uuid.UUID) (*domain.Tag, error) {
	return s.getOwned(ctx, userID, tagID)
}

// List returns a page of the user's tags.
func (s *TagService) List(
	ctx context.Context,
	userID uuid.UUID,
	page store.Page,
) ([]*domain.Tag, int, error) {
	return s.tagStore.List(ctx, userID, page)
}

// Update renames an owned tag.
func (s *TagService) Update(
	ctx context.Context,
	userID, tagID uuid.UUID,
	name string,
) (*domain.Tag, error) {
	tag, err := s.getOwned(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	if err := s.tagStore.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes an owned tag and its task links.
func (s *TagService) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, tagID); err != nil {
		return err
	}
	return s.tagStore.Delete(ctx, tagID)
}

// Stats returns the task count per tag for the user.
func (s *TagService) Stats(ctx context.Context, userID uuid.UUID) ([]store.TagStats, error) {
	return s.tagStore.Stats(ctx, userID)
}

func (s *TagService) getOwned(
	ctx context.Context,
	userID, tagID uuid.UUID,
) (*domain.Tag, error) {
	tag, err := s.tagStore.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag.UserID != userID {
		return nil, ErrForbidden
	}
	return tag, nil
}
