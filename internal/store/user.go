package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It hashes the transient plaintext Password internally; the plaintext
	// is never written anywhere.
	// Returns ErrUsernameExists or ErrEmailExists on uniqueness violations.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByIdentifier retrieves a user by username or email address.
	// Returns ErrUserNotFound if no user matches.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)

	// List returns a page of users ordered by creation time, newest first,
	// along with the total user count. Used by the admin listing endpoint.
	List(ctx context.Context, page Page) ([]*domain.User, int, error)

	// Update modifies an existing user's identity fields (username, email).
	// If a transient plaintext Password is set, it is hashed and the stored
	// hash replaced.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrUsernameExists/ErrEmailExists on uniqueness violations.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and, via cascading constraints, all of their
	// tasks, categories and tags.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordLogin sets last_login_at and the jti of the refresh token
	// issued by the login.
	// Returns ErrUserNotFound if the user does not exist.
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, refreshTokenID uuid.UUID) error

	// SetRefreshTokenID replaces the stored refresh token jti. Rotation:
	// only the most recently stored jti is accepted by /auth/refresh.
	// Returns ErrUserNotFound if the user does not exist.
	SetRefreshTokenID(ctx context.Context, id uuid.UUID, refreshTokenID uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}
