package main

import (
	"net/http"

	"github.com/eisenboard/eisenboard-api/internal/api"
	apiMiddleware "github.com/eisenboard/eisenboard-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(app.metrics.Middleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)

	taskHandler := api.NewTaskHandler(app.boardService, app.logger)
	boardHandler := api.NewBoardHandler(app.boardService, app.logger)
	transferHandler := api.NewTransferHandler(app.boardService, app.logger)
	assistHandler := api.NewAssistHandler(app.assistService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Board views
		r.Get("/lanes", boardHandler.Lanes)
		r.Get("/board", boardHandler.Board)
		r.Get("/stats", boardHandler.Stats)
		r.Get("/alerts", boardHandler.Alerts)
		r.Post("/sample", boardHandler.LoadSample)

		// Task endpoints
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Delete("/", taskHandler.ClearAll)
			r.Post("/quick", taskHandler.QuickAdd)
			r.Post("/categorize", assistHandler.CategorizeAndAdd)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Patch("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Post("/move", taskHandler.MoveTask)
				r.Post("/toggle", taskHandler.ToggleExpanded)
				r.Post("/breakdown", assistHandler.Breakdown)
				r.Post("/expand", assistHandler.Expand)
			})
		})

		// Assistant endpoints
		r.Post("/categorize", assistHandler.Categorize)
		r.Post("/ai", assistHandler.Proxy)
		r.Get("/jobs/{id}", assistHandler.GetJob)

		// Import and export
		r.Get("/export", transferHandler.Export)
		r.Post("/import", transferHandler.Import)
	})

	r.Get("/health", api.Health(app.assistService))

	if app.metrics != nil {
		r.Method(http.MethodGet, "/metrics", app.metrics.Handler())
	}

	return r
}
