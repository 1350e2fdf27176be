package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksvc/tasksvc-api/internal/api"
	"github.com/tasksvc/tasksvc-api/internal/config"
	"github.com/tasksvc/tasksvc-api/internal/mocks"
	"github.com/tasksvc/tasksvc-api/internal/service"
	"github.com/tasksvc/tasksvc-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-thats-at-least-32-chars"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler(t *testing.T) *api.AuthHandler {
	t.Helper()

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	userStore := mocks.NewMockUserStore(hasher)
	jwtService := auth.NewTestJWTService(testSecret, 15*time.Minute, time.Now)
	userService := service.NewUserService(userStore, jwtService, hasher, config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 15,
		PasswordMinLength:    8,
	})
	return api.NewAuthHandler(userService, testLogger())
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerAlice(t *testing.T, h *api.AuthHandler) {
	t.Helper()

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid registration returns the user without tokens", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "password1",
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "user", body["role"])
		assert.NotContains(t, body, "access_token")
		assert.NotContains(t, body, "password")
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		registerAlice(t, h)

		rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
			"username": "alice",
			"email":    "other@example.com",
			"password": "password1",
		})

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Username already exists", decodeBody(t, rec)["error"])
	})

	t.Run("weak password is unprocessable", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "letters-only",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("bad email is unprocessable", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
			"username": "alice",
			"email":    "not-an-email",
			"password": "password1",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "password1",
			"role":     "admin",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials return user and token pair", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		registerAlice(t, h)

		rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
			"identifier": "alice",
			"password":   "password1",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice", user["username"])

		token, ok := body["token"].(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, token["access_token"])
		assert.NotEmpty(t, token["refresh_token"])

		expiresAt, err := time.Parse(time.RFC3339, token["expires_at"].(string))
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		registerAlice(t, h)

		rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
			"identifier": "alice",
			"password":   "password2",
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"])
	})

	t.Run("unknown identifier gets the same answer", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
			"identifier": "nobody",
			"password":   "password1",
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"])
	})

	t.Run("missing fields are unprocessable", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
			"identifier": "alice",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()

	login := func(t *testing.T, h *api.AuthHandler) map[string]any {
		t.Helper()

		rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
			"identifier": "alice",
			"password":   "password1",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		token, ok := decodeBody(t, rec)["token"].(map[string]any)
		require.True(t, ok)
		return token
	}

	t.Run("valid refresh returns a new pair", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		registerAlice(t, h)
		token := login(t, h)

		rec := postJSON(t, h.RefreshToken, "/api/auth/refresh", map[string]string{
			"refresh_token": token["refresh_token"].(string),
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["access_token"])
		assert.NotEqual(t, token["refresh_token"], body["refresh_token"])
	})

	t.Run("replaying a rotated token is unauthorized", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		registerAlice(t, h)
		token := login(t, h)
		refreshToken := token["refresh_token"].(string)

		rec := postJSON(t, h.RefreshToken, "/api/auth/refresh", map[string]string{
			"refresh_token": refreshToken,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = postJSON(t, h.RefreshToken, "/api/auth/refresh", map[string]string{
			"refresh_token": refreshToken,
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid refresh token", decodeBody(t, rec)["error"])
	})

	t.Run("access token is not accepted", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		registerAlice(t, h)
		token := login(t, h)

		rec := postJSON(t, h.RefreshToken, "/api/auth/refresh", map[string]string{
			"refresh_token": token["access_token"].(string),
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		t.Parallel()

		h := newAuthHandler(t)
		rec := postJSON(t, h.RefreshToken, "/api/auth/refresh", map[string]string{
			"refresh_token": "garbage",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
