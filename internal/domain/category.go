package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category name and description length bounds.
const (
	MaxCategoryNameLength        = 64
	MaxCategoryDescriptionLength = 256
)

// Category groups a user's tasks. A task belongs to at most one category.
type Category struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategory creates a category owned by userID.
func NewCategory(userID uuid.UUID, name, description string) (*Category, error) {
	now := time.Now().UTC()
	category := &Category{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	return category, nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if c.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if c.Name == "" {
		return NewValidationError("name", "cannot be empty", ErrEmptyTitle)
	}
	if len(c.Name) > MaxCategoryNameLength {
		return NewValidationError("name", "is too long", ErrValidation)
	}
	if len(c.Description) > MaxCategoryDescriptionLength {
		return NewValidationError("description", "is too long", ErrValidation)
	}
	return nil
}
