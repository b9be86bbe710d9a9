package api

import (
	"net/http"
	"time"

	"github.com/atelier-studio/atelier-backend/config"
	"github.com/atelier-studio/atelier-backend/database"
	"github.com/atelier-studio/atelier-backend/services"
	"github.com/atelier-studio/atelier-backend/storage"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, store storage.ImageStore, c map[string]string) *routeHandlers {
	catalog := services.NewCatalog(db.ProjectRepo(), store)

	return &routeHandlers{
		projectHandler: newProjectHandler(
			catalog,
			config.GetBool(c, "EXPOSE_OWNER_ON_DETAIL", true),
			config.GetInt64(c, "MAX_REQUEST_BYTES", defaultMaxRequestBytes),
		),
	}
}

// healthCheck reports liveness for deploy probes.
func healthCheck(responder Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, map[string]string{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
