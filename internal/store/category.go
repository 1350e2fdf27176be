package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
)

// CategoryStats counts a category's tasks by status.
type CategoryStats struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Total      int       `json:"total"`
	Todo       int       `json:"todo"`
	InProgress int       `json:"in_progress"`
	Done       int       `json:"done"`
}

// CategoryStore defines the interface for category data persistence.
type CategoryStore interface {
	// Create saves a new category. Returns ErrInvalidEntity if the owning
	// user does not exist.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by ID regardless of owner.
	// Returns ErrCategoryNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// List returns a page of the user's categories ordered by name, and the
	// total count.
	List(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Category, int, error)

	// Update persists changed category fields.
	// Returns ErrCategoryNotFound if the category does not exist.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category. Tasks referencing it keep existing with
	// category_id set to NULL by the schema's ON DELETE SET NULL.
	// Returns ErrCategoryNotFound if the category does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats returns per-category task counts by status for the user.
	Stats(ctx context.Context, userID uuid.UUID) ([]CategoryStats, error)

	// WithTx returns a new CategoryStore instance bound to the transaction.
	WithTx(tx *sql.Tx) CategoryStore
}
