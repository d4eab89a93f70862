package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *handler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		accessLog(h.logger),
	)

	r.Get("/v1/healthz", h.health)

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Post("/", h.createJob)
		r.Get("/", h.listJobs)
		r.Get("/ws", h.jobSocket)
		r.Get("/{id}", h.getJob)
		r.Delete("/{id}", h.cancelJob)
	})

	r.Post("/v1/uploads", h.upload)

	return r
}
