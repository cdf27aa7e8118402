package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/statuscope-ai/statuscope/internal/api"
	"github.com/statuscope-ai/statuscope/internal/api/handlers"
	"github.com/statuscope-ai/statuscope/internal/api/middleware"
)

type RouterConfig struct {
	ServiceKey       string
	RetrievalHandler *handlers.RetrievalHandler
	SyncHandler      *handlers.SyncHandler
	ChunksHandler    *handlers.ChunksHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ServiceKeyAuth(cfg.ServiceKey))

		r.Post("/retrieve", cfg.RetrievalHandler.Retrieve)
		r.Post("/context", cfg.RetrievalHandler.Context)
		r.Get("/stats", cfg.RetrievalHandler.Stats)

		r.Route("/sync", func(r chi.Router) {
			r.Post("/org", cfg.SyncHandler.SyncOrg)
			r.Post("/projects/{id}", cfg.SyncHandler.SyncProject)
			r.Get("/status", cfg.SyncHandler.Status)
		})

		r.Delete("/knowledge/projects/{id}", cfg.SyncHandler.RemoveProject)

		r.Get("/chunks", cfg.ChunksHandler.List)
	})

	return r
}
