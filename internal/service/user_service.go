package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tasksvc/tasksvc-api/internal/config"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/platform/logger"
	"github.com/tasksvc/tasksvc-api/internal/service/auth"
	"github.com/tasksvc/tasksvc-api/internal/store"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ProfileUpdate carries the optional fields of a profile update.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// UserService implements registration, credential verification, token
// issuance and refresh rotation, and profile management.
type UserService struct {
	userStore  store.UserStore
	jwtService auth.JWTService
	hasher     *auth.BcryptHasher
	authConfig config.AuthConfig
}

// NewUserService creates a UserService with the given dependencies.
func NewUserService(
	userStore store.UserStore,
	jwtService auth.JWTService,
	hasher *auth.BcryptHasher,
	authConfig config.AuthConfig,
) *UserService {
	return &UserService{
		userStore:  userStore,
		jwtService: jwtService,
		hasher:     hasher,
		authConfig: authConfig,
	}
}

// Register creates a new user with the default role. The password is checked
// against the configured policy here; hashing happens in the store on the
// way to disk. Uniqueness races resolve in the database: of two concurrent
// registrations with the same identifier, exactly one wins and the other
// receives the duplicate sentinel.
func (s *UserService) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	if err := domain.ValidatePassword(password, s.authConfig.PasswordMinLength); err != nil {
		return nil, err
	}

	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the identifier/password pair and issues a token pair.
// The stored refresh token ID is replaced, so any previously issued refresh
// token stops working. Unknown identifiers burn a dummy bcrypt comparison
// so response timing doesn't betray account existence.
func (s *UserService) Login(
	ctx context.Context,
	identifier, password string,
) (*domain.User, *TokenPair, error) {
	log := logger.FromContext(ctx)

	user, err := s.userStore.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.hasher.CompareDummy(password)
			return nil, nil, auth.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return nil, nil, auth.ErrInvalidCredentials
	}

	pair, refreshTokenID, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	if err := s.userStore.RecordLogin(ctx, user.ID, now, refreshTokenID); err != nil {
		return nil, nil, err
	}
	user.LastLoginAt = &now
	user.RefreshTokenID = refreshTokenID

	log.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair. Refresh
// tokens are single-use: the presented token's ID must match the one stored
// at issue time, and a successful exchange stores the replacement's ID.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	log := logger.FromContext(ctx)

	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// The subject disappeared since issuance. Indistinguishable
			// from a bad token on purpose.
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, err
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil || user.RefreshTokenID != tokenID {
		log.Warn("rotated refresh token presented again", "user_id", user.ID)
		return nil, auth.ErrRefreshTokenReused
	}

	pair, refreshTokenID, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.userStore.SetRefreshTokenID(ctx, user.ID, refreshTokenID); err != nil {
		return nil, err
	}

	return pair, nil
}

// issueTokens mints an access/refresh pair and reports the refresh token's
// jti for rotation bookkeeping.
func (s *UserService) issueTokens(
	ctx context.Context,
	userID uuid.UUID,
) (*TokenPair, uuid.UUID, error) {
	accessToken, err := s.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, uuid.Nil, err
	}

	// Decode our own tokens to surface the access expiry and the refresh
	// jti; cheaper than widening the JWTService interface.
	accessClaims, err := s.jwtService.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to decode issued access token: %w", err)
	}
	refreshClaims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to decode issued refresh token: %w", err)
	}
	refreshTokenID, err := uuid.Parse(refreshClaims.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("issued refresh token has malformed jti: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessClaims.ExpiresAt,
	}, refreshTokenID, nil
}

// GetProfile returns the user's own record.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userStore.GetByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields of the update to the user's own
// record. A new password goes through the same policy as registration.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update ProfileUpdate,
) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Password != nil {
		if err := domain.ValidatePassword(*update.Password, s.authConfig.PasswordMinLength); err != nil {
			return nil, err
		}
		user.Password = *update.Password
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteAccount removes the user's own record and, through cascading
// constraints, everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.userStore.Delete(ctx, userID)
}

// ListUsers returns a page of all users. The admin-only gate is enforced in
// the middleware layer; the service trusts its caller.
func (s *UserService) ListUsers(
	ctx context.Context,
	page store.Page,
) ([]*domain.User, int, error) {
	return s.userStore.List(ctx, page)
}
