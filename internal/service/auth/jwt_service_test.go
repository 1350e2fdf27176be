package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksvc/tasksvc-api/internal/config"
	"github.com/tasksvc/tasksvc-api/internal/service/auth"
)

const testSecret = "test-secret-key-thats-at-least-32-chars"

// fixedClock returns a timeFunc pinned to the given instant.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("rejects short secret", func(t *testing.T) {
		t.Parallel()

		_, err := auth.NewJWTService(config.AuthConfig{
			JWTSecret:                   "too-short",
			TokenLifetimeMinutes:        15,
			RefreshTokenLifetimeMinutes: 1440,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("accepts valid config", func(t *testing.T) {
		t.Parallel()

		svc, err := auth.NewJWTService(config.AuthConfig{
			JWTSecret:                   testSecret,
			TokenLifetimeMinutes:        15,
			RefreshTokenLifetimeMinutes: 1440,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.Equal(now.Add(15*time.Minute)))
}

func TestValidateTokenFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
		token, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)

		later := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now.Add(16*time.Minute)))
		_, err = later.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
		token, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)

		other := auth.NewTestJWTService("another-secret-key-also-32-chars-long", 15*time.Minute, fixedClock(now))
		_, err = other.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
		_, err := svc.ValidateToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
		refresh, err := svc.GenerateRefreshToken(ctx, userID)
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, refresh)
		assert.ErrorIs(t, err, auth.ErrWrongTokenType)
	})
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
		token, err := svc.GenerateRefreshToken(ctx, userID)
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, auth.TokenTypeRefresh, claims.TokenType)
		assert.True(t, claims.ExpiresAt.Equal(now.Add(150*time.Minute)))
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
		access, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)

		_, err = svc.ValidateRefreshToken(ctx, access)
		assert.ErrorIs(t, err, auth.ErrWrongTokenType)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
		token, err := svc.GenerateRefreshToken(ctx, userID)
		require.NoError(t, err)

		later := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now.Add(151*time.Minute)))
		_, err = later.ValidateRefreshToken(ctx, token)
		assert.ErrorIs(t, err, auth.ErrExpiredRefreshToken)
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		t.Parallel()

		svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
		_, err := svc.ValidateRefreshToken(ctx, "garbage")
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := auth.NewTestJWTService(testSecret, 15*time.Minute, fixedClock(now))
	userID := uuid.New()

	first, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)
	second, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	firstClaims, err := svc.ValidateRefreshToken(ctx, first)
	require.NoError(t, err)
	secondClaims, err := svc.ValidateRefreshToken(ctx, second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}
