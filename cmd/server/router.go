package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oriontask/orion-api/internal/api"
	apiMiddleware "github.com/oriontask/orion-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordHasher,
		app.passwordHasher,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	dharmaHandler := api.NewDharmaHandler(app.dharmaService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task endpoints
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
			r.Post("/tasks/{id}/now", taskHandler.MoveToNow)
			r.Post("/tasks/{id}/status", taskHandler.ChangeStatus)
			r.Post("/tasks/{id}/snooze", taskHandler.SnoozeTask)
			r.Post("/tasks/{id}/done", taskHandler.MarkAsDone)

			// Dharma endpoints
			r.Post("/dharmas", dharmaHandler.CreateDharma)
			r.Get("/dharmas", dharmaHandler.ListDharmas)
			r.Put("/dharmas/{id}", dharmaHandler.UpdateDharma)
			r.Delete("/dharmas/{id}", dharmaHandler.DeleteDharma)
			r.Post("/dharmas/{id}/hidden", dharmaHandler.ToggleHidden)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
