package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"github.com/atelier-studio/atelier-backend/config"
	"github.com/atelier-studio/atelier-backend/database"
	"github.com/atelier-studio/atelier-backend/storage"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(db database.Database, store storage.ImageStore) (Server, error) {
	c := config.New()

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	router := newRouter(db, store, withConfig(c), withStartupTime(startupTime))

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(db database.Database, store storage.ImageStore, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	// CORS allow-list is read once at startup and immutable afterwards.
	acceptedOrigins := config.GetStringSlice(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	rateLimit := config.GetInt(router.config, "RATE_LIMIT_REQUESTS", 100)
	rateWindow := time.Duration(config.GetInt(router.config, "RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute
	chiRouter.Use(httprate.LimitByIP(rateLimit, rateWindow))

	handlers := initializeHandlers(db, store, router.config)

	authMiddleware := newAuthMiddleware(config.GetString(router.config, "JWT_SECRET", ""))

	chiRouter.Get("/health", healthCheck(NewResponder(log.Logger)))

	setupProjectRoutes(chiRouter, handlers, authMiddleware)

	// Local-backend blobs are served statically at their public path so the
	// URLs the store hands out actually resolve.
	if local, ok := store.(*storage.LocalStore); ok {
		serveUploads(chiRouter, local)
	}

	return chiRouter
}

func serveUploads(r chi.Router, local *storage.LocalStore) {
	publicPath := strings.TrimSuffix(local.PublicPath(), "/")
	fs := http.StripPrefix(publicPath, http.FileServer(http.Dir(local.BaseDir())))
	r.Get(publicPath+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
