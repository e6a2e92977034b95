package httpapi

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the full route table. The public share route and the
// auth endpoints are the only paths reachable without a credential.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)

		r.Get("/public/{token}", h.PublicContent)

		// content fetch also accepts ?token= for embedded viewers
		r.With(h.requireAuth(true)).Get("/files/{id}", h.FileContent)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth(false))

			r.Get("/auth/me", h.Me)

			r.Post("/files/upload", h.UploadFile)
			r.Get("/files", h.ListFiles)
			r.Patch("/files/{id}/lock", h.SetFileLock)
			r.Delete("/files/{id}", h.DeleteFile)

			r.Post("/files/{id}/shares", h.CreateShare)
			r.Get("/files/{id}/shares", h.ListShares)
			r.Delete("/shares/{id}", h.DeleteShare)
		})
	})

	return r
}
