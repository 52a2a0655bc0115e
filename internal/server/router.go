package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/scratch/internal/api"
	"github.com/cloo-solutions/scratch/internal/api/handlers"
	"github.com/cloo-solutions/scratch/internal/api/middleware"
)

const defaultMaxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	AuthValidator     middleware.AuthValidator
	NoteHandler       *handlers.NoteHandler
	AttachmentHandler *handlers.AttachmentHandler
	AuthHandler       *handlers.AuthHandler
	MaxBodyBytes      int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBody))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", cfg.NoteHandler.List)
			r.Post("/", cfg.NoteHandler.Create)
			r.Get("/{id}", cfg.NoteHandler.Get)
			r.Put("/{id}", cfg.NoteHandler.Update)
			r.Delete("/{id}", cfg.NoteHandler.Delete)
			r.Get("/{id}/attachment", cfg.AttachmentHandler.Download)
		})

		r.Post("/attachments", cfg.AttachmentHandler.InitUpload)

		r.Get("/me", cfg.AuthHandler.Me)
		r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)
	})

	return r
}
