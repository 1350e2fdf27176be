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
	"github.com/tasksvc/tasksvc-api/internal/service/auth"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// Unique constraint names from the users table migration.
const (
	usersUsernameConstraint = "users_username_key"
	usersEmailConstraint    = "users_email_key"
)

// PostgresUserStore implements the store.UserStore interface using a
// PostgreSQL database as the storage backend. Password hashing happens here,
// on the way into the database; the plaintext never leaves the process.
type PostgresUserStore struct {
	db     store.DBTX
	hasher auth.PasswordHasher
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. The database handle and hasher are owned by the caller.
func NewPostgresUserStore(db store.DBTX, hasher auth.PasswordHasher) *PostgresUserStore {
	return &PostgresUserStore{
		db:     db,
		hasher: hasher,
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, hasher: s.hasher}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	user.Password = ""

	query := `
		INSERT INTO users (id, username, email, hashed_password, role, refresh_token_id, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.Role,
		nullableUUID(user.RefreshTokenID),
		nullableTime(user.LastLoginAt),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUserConstraintError(err); mapped != nil {
			return mapped
		}
		log.Error("failed to create user",
			"error", err,
			"user_id", user.ID)
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created", "user_id", user.ID, "username", user.Username)
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := userSelect + ` WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByIdentifier implements store.UserStore.GetByIdentifier
func (s *PostgresUserStore) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*domain.User, error) {
	query := userSelect + ` WHERE username = $1 OR email = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, identifier))
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(
	ctx context.Context,
	page store.Page,
) ([]*domain.User, int, error) {
	page = page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := userSelect + ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		user, err := s.scanUserRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return err
	}

	if user.Password != "" {
		hashed, err := s.hasher.Hash(user.Password)
		if err != nil {
			return err
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, email = $2, hashed_password = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if mapped := mapUserConstraintError(err); mapped != nil {
			return mapped
		}
		log.Error("failed to update user", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}

	return requireRowAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRowAffected(result, store.ErrUserNotFound)
}

// RecordLogin implements store.UserStore.RecordLogin
func (s *PostgresUserStore) RecordLogin(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
	refreshTokenID uuid.UUID,
) error {
	query := `
		UPDATE users
		SET last_login_at = $1, refresh_token_id = $2, updated_at = $1
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, at, nullableUUID(refreshTokenID), id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return requireRowAffected(result, store.ErrUserNotFound)
}

// SetRefreshTokenID implements store.UserStore.SetRefreshTokenID
func (s *PostgresUserStore) SetRefreshTokenID(
	ctx context.Context,
	id uuid.UUID,
	refreshTokenID uuid.UUID,
) error {
	query := `UPDATE users SET refresh_token_id = $1, updated_at = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, nullableUUID(refreshTokenID), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set refresh token id: %w", err)
	}
	return requireRowAffected(result, store.ErrUserNotFound)
}

const userSelect = `
	SELECT id, username, email, hashed_password, role, refresh_token_id, last_login_at, created_at, updated_at
	FROM users
`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (*domain.User, error) {
	user, err := s.scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	return user, err
}

func (s *PostgresUserStore) scanUserRow(row rowScanner) (*domain.User, error) {
	var user domain.User
	var refreshTokenID uuid.NullUUID
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.Role,
		&refreshTokenID,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if refreshTokenID.Valid {
		user.RefreshTokenID = refreshTokenID.UUID
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}

	return &user, nil
}

// mapUserConstraintError converts users-table unique violations into the
// store sentinels, or returns nil for anything else.
func mapUserConstraintError(err error) error {
	switch {
	case isUniqueViolation(err, usersUsernameConstraint):
		return store.ErrUsernameExists
	case isUniqueViolation(err, usersEmailConstraint):
		return store.ErrEmailExists
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return nil
}

func requireRowAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
