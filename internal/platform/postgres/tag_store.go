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

// Unique constraint name from the tags table migration.
const tagsUserNameConstraint = "tags_user_id_name_key"

// PostgresTagStore implements the store.TagStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db store.DBTX
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the
// TagStore interface.
func NewPostgresTagStore(db store.DBTX) *PostgresTagStore {
	return &PostgresTagStore{db: db}
}

// Ensure PostgresTagStore implements store.TagStore interface
var _ store.TagStore = (*PostgresTagStore)(nil)

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{db: tx}
}

// Create implements store.TagStore.Create
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContext(ctx)

	if err := tag.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO tags (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		tag.ID,
		tag.UserID,
		tag.Name,
		tag.CreatedAt,
		tag.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, tagsUserNameConstraint) {
			return store.ErrTagNameExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %s not found", store.ErrInvalidEntity, tag.UserID)
		}
		log.Error("failed to create tag", "error", err, "tag_id", tag.ID)
		return fmt.Errorf("failed to create tag: %w", err)
	}

	log.Info("tag created", "tag_id", tag.ID, "user_id", tag.UserID)
	return nil
}

// GetByID implements store.TagStore.GetByID
func (s *PostgresTagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM tags
		WHERE id = $1
	`
	return s.scanTag(s.db.QueryRowContext(ctx, query, id))
}

// GetByName implements store.TagStore.GetByName
func (s *PostgresTagStore) GetByName(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Tag, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM tags
		WHERE user_id = $1 AND name = $2
	`
	return s.scanTag(s.db.QueryRowContext(ctx, query, userID, name))
}

// List implements store.TagStore.List
func (s *PostgresTagStore) List(
	ctx context.Context,
	userID uuid.UUID,
	page store.Page,
) ([]*domain.Tag, int, error) {
	page = page.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM tags WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tags: %w", err)
	}

	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM tags
		WHERE user_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, total, nil
}

// Update implements store.TagStore.Update
func (s *PostgresTagStore) Update(ctx context.Context, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}

	tag.UpdatedAt = time.Now().UTC()

	query := `UPDATE tags SET name = $1, updated_at = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, tag.Name, tag.UpdatedAt, tag.ID)
	if err != nil {
		if isUniqueViolation(err, tagsUserNameConstraint) {
			return store.ErrTagNameExists
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}

	return requireRowAffected(result, store.ErrTagNotFound)
}

// Delete implements store.TagStore.Delete
func (s *PostgresTagStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return requireRowAffected(result, store.ErrTagNotFound)
}

// Stats implements store.TagStore.Stats
func (s *PostgresTagStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
) ([]store.TagStats, error) {
	query := `
		SELECT tg.id, tg.name, COUNT(tt.task_id)
		FROM tags tg
		LEFT JOIN task_tags tt ON tt.tag_id = tg.id
		WHERE tg.user_id = $1
		GROUP BY tg.id, tg.name
		ORDER BY tg.name
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tag stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []store.TagStats
	for rows.Next() {
		var row store.TagStats
		if err := rows.Scan(&row.TagID, &row.Name, &row.TaskCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag stats: %w", err)
		}
		stats = append(stats, row)
	}
	return stats, rows.Err()
}

func (s *PostgresTagStore) scanTag(row *sql.Row) (*domain.Tag, error) {
	var tag domain.Tag
	err := row.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}
