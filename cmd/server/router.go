package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tasksvc/tasksvc-api/internal/api"
	apimiddleware "github.com/tasksvc/tasksvc-api/internal/api/middleware"
)

// setupRouter builds the router: standard middleware, handlers wired to the
// application's services, and the route tree.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.Trace)

	authHandler := api.NewAuthHandler(app.userService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	categoryHandler := api.NewCategoryHandler(app.categoryService, app.logger)
	tagHandler := api.NewTagHandler(app.tagService, app.logger)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)
	adminMiddleware := apimiddleware.NewAdminMiddleware(app.userStore)

	r.Route("/api", func(r chi.Router) {
		// Public authentication endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", userHandler.GetProfile)
			r.Put("/users/me", userHandler.UpdateProfile)
			r.Delete("/users/me", userHandler.DeleteAccount)

			r.With(adminMiddleware.RequireAdmin).Get("/users", userHandler.ListUsers)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/", taskHandler.List)
				r.Get("/stats", taskHandler.Stats)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{id}/tags/{tagID}", taskHandler.AttachTag)
				r.Delete("/{id}/tags/{tagID}", taskHandler.DetachTag)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", categoryHandler.Create)
				r.Get("/", categoryHandler.List)
				r.Get("/stats", categoryHandler.Stats)
				r.Get("/{id}", categoryHandler.Get)
				r.Put("/{id}", categoryHandler.Update)
				r.Delete("/{id}", categoryHandler.Delete)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Post("/", tagHandler.Create)
				r.Get("/", tagHandler.List)
				r.Get("/stats", tagHandler.Stats)
				r.Get("/{id}", tagHandler.Get)
				r.Put("/{id}", tagHandler.Update)
				r.Delete("/{id}", tagHandler.Delete)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
