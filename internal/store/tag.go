package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
)

// TagStats counts how many tasks carry each tag.
type TagStats struct {
	TagID     uuid.UUID `json:"tag_id"`
	Name      string    `json:"name"`
	TaskCount int       `json:"task_count"`
}

// TagStore defines the interface for tag data persistence.
type TagStore interface {
	// Create saves a new tag. Tag names are unique per user; returns
	// ErrTagNameExists on a duplicate name and ErrInvalidEntity if the
	// owning user does not exist.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID retrieves a tag by ID regardless of owner.
	// Returns ErrTagNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// GetByName retrieves the user's tag with the given name.
	// Returns ErrTagNotFound if it does not exist.
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)

	// List returns a page of the user's tags ordered by name, and the total
	// count.
	List(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Tag, int, error)

	// Update persists changed tag fields. Returns ErrTagNotFound if the tag
	// does not exist and ErrTagNameExists on a duplicate name.
	Update(ctx context.Context, tag *domain.Tag) error

	// Delete removes a tag and its task_tags rows.
	// Returns ErrTagNotFound if the tag does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats returns the task count per tag for the user.
	Stats(ctx context.Context, userID uuid.UUID) ([]TagStats, error)

	// WithTx returns a new TagStore instance bound to the transaction.
	WithTx(tx *sql.Tx) TagStore
}
