package api

import (
	"github.com/go-chi/chi/v5"
)

// setupProjectRoutes wires the public and owner-scoped catalog endpoints.
func setupProjectRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/projects", func(r chi.Router) {
		// Public read paths
		r.Group(func(r chi.Router) {
			r.Use(ColoredHTTPLoggingMiddleware)

			r.Get("/", handlers.projectHandler.getPublishedProjects())
			r.Get("/{slug}", handlers.projectHandler.getPublishedProject())
		})

		// Owner-scoped paths
		r.Group(func(r chi.Router) {
			r.Use(ColoredHTTPLoggingMiddleware)
			r.Use(authMiddleware.authenticate)

			r.Get("/admin/all", handlers.projectHandler.getOwnedProjects())
			r.Get("/admin/{projectID}", handlers.projectHandler.getOwnedProject())
			r.Post("/", handlers.projectHandler.createProject())
			r.Put("/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/{projectID}", handlers.projectHandler.deleteProject())
		})
	})
}
