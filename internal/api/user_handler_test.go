package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasksvc/tasksvc-api/internal/api"
	apimiddleware "github.com/tasksvc/tasksvc-api/internal/api/middleware"
	"github.com/tasksvc/tasksvc-api/internal/config"
	"github.com/tasksvc/tasksvc-api/internal/domain"
	"github.com/tasksvc/tasksvc-api/internal/mocks"
	"github.com/tasksvc/tasksvc-api/internal/service"
	"github.com/tasksvc/tasksvc-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

// userEnv wires the user routes with the real auth and admin middleware.
type userEnv struct {
	router      http.Handler
	jwtService  auth.JWTService
	userService *service.UserService
	userStore   *mocks.MockUserStore
}

func newUserEnv(t *testing.T) *userEnv {
	t.Helper()

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	userStore := mocks.NewMockUserStore(hasher)
	jwtService := auth.NewTestJWTService(testSecret, 15*time.Minute, time.Now)
	userService := service.NewUserService(userStore, jwtService, hasher, config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 15,
		PasswordMinLength:    8,
	})

	userHandler := api.NewUserHandler(userService, testLogger())
	authMiddleware := apimiddleware.NewAuthMiddleware(jwtService)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userStore)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", userHandler.GetProfile)
			r.Put("/users/me", userHandler.UpdateProfile)
			r.Delete("/users/me", userHandler.DeleteAccount)

			r.With(adminMiddleware.RequireAdmin).Get("/users", userHandler.ListUsers)
		})
	})

	return &userEnv{
		router:      r,
		jwtService:  jwtService,
		userService: userService,
		userStore:   userStore,
	}
}

func (e *userEnv) register(t *testing.T, username string, role domain.Role) (*domain.User, string) {
	t.Helper()

	user, err := e.userService.Register(context.Background(), username, username+"@example.com", "password1")
	require.NoError(t, err)

	if role != domain.RoleUser {
		stored := e.userStore.Users[user.ID]
		stored.Role = role
	}

	token, err := e.jwtService.GenerateToken(context.Background(), user.ID)
	require.NoError(t, err)
	return user, token
}

func (e *userEnv) request(t *testing.T, method, target, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(body)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestGetProfileEndpoint(t *testing.T) {
	t.Parallel()

	env := newUserEnv(t)
	user, token := env.register(t, "alice", domain.RoleUser)

	t.Run("returns the caller's own profile", func(t *testing.T) {
		t.Parallel()

		rec := env.request(t, http.MethodGet, "/api/users/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, user.ID.String(), body["id"])
		assert.Equal(t, "alice", body["username"])
		assert.NotContains(t, body, "password")
	})

	t.Run("no token is unauthorized", func(t *testing.T) {
		t.Parallel()

		rec := env.request(t, http.MethodGet, "/api/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateProfileEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("partial update", func(t *testing.T) {
		t.Parallel()

		env := newUserEnv(t)
		_, token := env.register(t, "alice", domain.RoleUser)

		rec := env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{
			"email": "new@example.com",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "new@example.com", body["email"])
	})

	t.Run("taken username conflicts", func(t *testing.T) {
		t.Parallel()

		env := newUserEnv(t)
		env.register(t, "alice", domain.RoleUser)
		_, token := env.register(t, "bob", domain.RoleUser)

		rec := env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{
			"username": "alice",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("bad email is unprocessable", func(t *testing.T) {
		t.Parallel()

		env := newUserEnv(t)
		_, token := env.register(t, "alice", domain.RoleUser)

		rec := env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{
			"email": "not-an-email",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("weak new password is unprocessable", func(t *testing.T) {
		t.Parallel()

		env := newUserEnv(t)
		_, token := env.register(t, "alice", domain.RoleUser)

		rec := env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{
			"password": "short",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestDeleteAccountEndpoint(t *testing.T) {
	t.Parallel()

	env := newUserEnv(t)
	_, token := env.register(t, "alice", domain.RoleUser)

	rec := env.request(t, http.MethodDelete, "/api/users/me", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The account is gone; the still-valid token resolves to nothing.
	rec = env.request(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsersEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("admin sees all users", func(t *testing.T) {
		t.Parallel()

		env := newUserEnv(t)
		env.register(t, "alice", domain.RoleUser)
		env.register(t, "bob", domain.RoleUser)
		_, adminToken := env.register(t, "root", domain.RoleAdmin)

		rec := env.request(t, http.MethodGet, "/api/users", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, float64(3), body["total"])
		users, ok := body["users"].([]any)
		require.True(t, ok)
		assert.Len(t, users, 3)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		t.Parallel()

		env := newUserEnv(t)
		_, token := env.register(t, "alice", domain.RoleUser)

		rec := env.request(t, http.MethodGet, "/api/users", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("token of a deleted user cannot pass the gate", func(t *testing.T) {
		t.Parallel()

		env := newUserEnv(t)
		user, adminToken := env.register(t, "root", domain.RoleAdmin)
		require.NoError(t, env.userService.DeleteAccount(context.Background(), user.ID))

		rec := env.request(t, http.MethodGet, "/api/users", adminToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
