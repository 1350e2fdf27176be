package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/platform/logger"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, category_id, title, description, status, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		nullableUUIDPtr(task.CategoryID),
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		nullableTime(task.DueDate),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced user or category not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create task", "error", err, "task_id", task.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	log.Info("task created", "task_id", task.ID, "user_id", task.UserID)
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := taskSelect + ` WHERE t.id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}

	if err := s.loadTags(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, int, error) {
	where, args := buildTaskFilter(userID, filter)

	countQuery := `SELECT COUNT(*) FROM tasks t WHERE ` + where
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	page := filter.Page.Normalize()
	query := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		taskSelect, where, taskOrderBy(filter), len(args)+1, len(args)+2)
	args = append(args, page.PerPage, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	for _, task := range tasks {
		if err := s.loadTags(ctx, task); err != nil {
			return nil, 0, err
		}
	}

	return tasks, total, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, category_id = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		nullableTime(task.DueDate),
		nullableUUIDPtr(task.CategoryID),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced category not found", store.ErrInvalidEntity)
		}
		log.Error("failed to update task", "error", err, "task_id", task.ID)
		return fmt.Errorf("failed to update task: %w", err)
	}

	return requireRowAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireRowAffected(result, store.ErrTaskNotFound)
}

// AddTag implements store.TaskStore.AddTag
func (s *PostgresTaskStore) AddTag(ctx context.Context, taskID, tagID uuid.UUID) error {
	query := `
		INSERT INTO task_tags (task_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, tag_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, taskID, tagID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: task or tag not found", store.ErrInvalidEntity)
		}
		return fmt.Errorf("failed to add tag to task: %w", err)
	}
	return nil
}

// RemoveTag implements store.TaskStore.RemoveTag
func (s *PostgresTaskStore) RemoveTag(ctx context.Context, taskID, tagID uuid.UUID) error {
	query := `DELETE FROM task_tags WHERE task_id = $1 AND tag_id = $2`
	if _, err := s.db.ExecContext(ctx, query, taskID, tagID); err != nil {
		return fmt.Errorf("failed to remove tag from task: %w", err)
	}
	return nil
}

// Stats implements store.TaskStore.Stats
func (s *PostgresTaskStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*store.TaskStats, error) {
	today := now.UTC().Truncate(24 * time.Hour)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'todo'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'done'),
			COUNT(*) FILTER (WHERE due_date IS NOT NULL AND due_date < $2 AND status <> 'done'),
			COUNT(*) FILTER (WHERE due_date = $2 AND status <> 'done')
		FROM tasks
		WHERE user_id = $1
	`
	var stats store.TaskStats
	err := s.db.QueryRowContext(ctx, query, userID, today).Scan(
		&stats.Total,
		&stats.Todo,
		&stats.InProgress,
		&stats.Done,
		&stats.Overdue,
		&stats.DueToday,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate task stats: %w", err)
	}

	return &stats, nil
}

const taskSelect = `
	SELECT t.id, t.user_id, t.category_id, t.title, t.description, t.status, t.priority, t.due_date, t.created_at, t.updated_at,
	       c.id, c.user_id, c.name, c.description, c.created_at, c.updated_at
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id
`

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var categoryID uuid.NullUUID
	var dueDate sql.NullTime

	var catID, catUserID uuid.NullUUID
	var catName, catDescription sql.NullString
	var catCreatedAt, catUpdatedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&categoryID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
		&catID,
		&catUserID,
		&catName,
		&catDescription,
		&catCreatedAt,
		&catUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if categoryID.Valid {
		id := categoryID.UUID
		task.CategoryID = &id
	}
	if dueDate.Valid {
		d := dueDate.Time
		task.DueDate = &d
	}
	if catID.Valid {
		task.Category = &domain.Category{
			ID:          catID.UUID,
			UserID:      catUserID.UUID,
			Name:        catName.String,
			Description: catDescription.String,
			CreatedAt:   catCreatedAt.Time,
			UpdatedAt:   catUpdatedAt.Time,
		}
	}

	return &task, nil
}

// loadTags populates task.Tags, ordered by tag name.
func (s *PostgresTaskStore) loadTags(ctx context.Context, task *domain.Task) error {
	query := `
		SELECT tg.id, tg.user_id, tg.name, tg.created_at, tg.updated_at
		FROM tags tg
		JOIN task_tags tt ON tt.tag_id = tg.id
		WHERE tt.task_id = $1
		ORDER BY tg.name
	`
	rows, err := s.db.QueryContext(ctx, query, task.ID)
	if err != nil {
		return fmt.Errorf("failed to load task tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	task.Tags = nil
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		task.Tags = append(task.Tags, tag)
	}
	return rows.Err()
}

// buildTaskFilter renders the WHERE clause and argument list for a task
// listing. The first argument is always the owning user's ID.
func buildTaskFilter(userID uuid.UUID, filter store.TaskFilter) (string, []any) {
	conds := []string{"t.user_id = $1"}
	args := []any{userID}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Title != "" {
		conds = append(conds, "t.title ILIKE '%' || "+arg(filter.Title)+" || '%'")
	}
	if filter.Status != nil {
		conds = append(conds, "t.status = "+arg(*filter.Status))
	}
	if filter.Priority != nil {
		conds = append(conds, "t.priority = "+arg(*filter.Priority))
	}
	if filter.CategoryID != nil {
		conds = append(conds, "t.category_id = "+arg(*filter.CategoryID))
	}
	if filter.TagID != nil {
		conds = append(conds,
			"t.id IN (SELECT task_id FROM task_tags WHERE tag_id = "+arg(*filter.TagID)+")")
	}
	if filter.Overdue != nil {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		today := arg(now.UTC().Truncate(24 * time.Hour))
		if *filter.Overdue {
			conds = append(conds,
				"t.due_date IS NOT NULL AND t.due_date < "+today+" AND t.status <> 'done'")
		} else {
			conds = append(conds,
				"(t.due_date IS NULL OR t.due_date >= "+today+" OR t.status = 'done')")
		}
	}
	if filter.DueFrom != nil {
		conds = append(conds, "t.due_date >= "+arg(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		conds = append(conds, "t.due_date <= "+arg(*filter.DueTo))
	}

	return strings.Join(conds, " AND "), args
}

// taskOrderBy renders a safe ORDER BY clause. Sort fields are allow-listed;
// anything unknown falls back to creation time. Priority sorts by rank, not
// alphabetically.
func taskOrderBy(filter store.TaskFilter) string {
	var column string
	switch filter.SortBy {
	case store.TaskSortUpdatedAt:
		column = "t.updated_at"
	case store.TaskSortDueDate:
		column = "t.due_date"
	case store.TaskSortTitle:
		column = "t.title"
	case store.TaskSortPriority:
		column = "CASE t.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"
	case store.TaskSortCreatedAt, "":
		column = "t.created_at"
	default:
		column = "t.created_at"
	}

	direction := "ASC"
	if filter.SortDescending {
		direction = "DESC"
	}

	return column + " " + direction + ", t.created_at DESC"
}

func nullableUUIDPtr(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
