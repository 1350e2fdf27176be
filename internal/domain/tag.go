package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxTagNameLength matches the tags.name column.
const MaxTagNameLength = 64

// Tag is a free-form label a user attaches to tasks. Tag names are unique
// per user; the many-to-many relation to tasks lives in the task_tags table.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTag creates a tag owned by userID.
func NewTag(userID uuid.UUID, name string) (*Tag, error) {
	now := time.Now().UTC()
	tag := &Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if t.Name == "" {
		return NewValidationError("name", "cannot be empty", ErrEmptyTitle)
	}
	if len(t.Name) > MaxTagNameLength {
		return NewValidationError("name", "is too long", ErrValidation)
	}
	return nil
}
