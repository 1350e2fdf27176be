package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/platform/logger"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// PostgresCategoryStore implements the store.CategoryStore interface using
// a PostgreSQL database as the storage backend.
type PostgresCategoryStore struct {
	db store.DBTX
}

// NewPostgresCategoryStore creates a new PostgreSQL implementation of the
// CategoryStore interface.
func NewPostgresCategoryStore(db store.DBTX) *PostgresCategoryStore {
	return &PostgresCategoryStore{db: db}
}

// Ensure PostgresCategoryStore implements store.CategoryStore interface
var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// WithTx implements store.CategoryStore.WithTx
func (s *PostgresCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return &PostgresCategoryStore{db: tx}
}

// Create implements store.CategoryStore.Create
func (s *PostgresCategoryStore) Create(ctx context.Context, category *domain.Category) error {
	log := logger.FromContext(ctx)

	if err := category.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO categories (id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.UserID,
		category.Name,
		category.Description,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %s not found", store.ErrInvalidEntity, category.UserID)
		}
		log.Error("failed to create category", "error", err, "category_id", category.ID)
		return fmt.Errorf("failed to create category: %w", err)
	}

	log.Info("category created", "category_id", category.ID, "user_id", category.UserID)
	return nil
}

// GetByID implements store.CategoryStore.GetByID
func (s *PostgresCategoryStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Category, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM categories
		WHERE id = $1
	`
	var category domain.Category
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// List implements store.CategoryStore.List
func (s *PostgresCategoryStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page store.Page,
) ([]*domain.Category, int, error) {
	page = page.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM categories WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []*domain.Category
	for rows.Next() {
		var category domain.Category
		err := rows.Scan(
			&category.ID,
			&category.UserID,
			&category.Name,
			&category.Description,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &category)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, total, nil
}

// Update implements store.CategoryStore.Update
func (s *PostgresCategoryStore) Update(ctx context.Context, category *domain.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}

	category.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE categories
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		category.Name,
		category.Description,
		category.UpdatedAt,
		category.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return requireRowAffected(result, store.ErrCategoryNotFound)
}

// Delete implements store.CategoryStore.Delete
// Tasks referencing the category survive with category_id cleared by the
// schema's ON DELETE SET NULL.
func (s *PostgresCategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRowAffected(result, store.ErrCategoryNotFound)
}

// Stats implements store.CategoryStore.Stats
func (s *PostgresCategoryStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
) ([]store.CategoryStats, error) {
	query := `
		SELECT c.id, c.name,
		       COUNT(t.id),
		       COUNT(t.id) FILTER (WHERE t.status = 'todo'),
		       COUNT(t.id) FILTER (WHERE t.status = 'in_progress'),
		       COUNT(t.id) FILTER (WHERE t.status = 'done')
		FROM categories c
		LEFT JOIN tasks t ON t.category_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id, c.name
		ORDER BY c.name
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []store.CategoryStats
	for rows.Next() {
		var row store.CategoryStats
		err := rows.Scan(
			&row.CategoryID,
			&row.Name,
			&row.Total,
			&row.Todo,
			&row.InProgress,
			&row.Done,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		stats = append(stats, row)
	}
	return stats, rows.Err()
}
