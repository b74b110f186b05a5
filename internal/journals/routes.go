package journals

import "github.com/go-chi/chi/v5"

// MountRoutes registers journal endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/journals", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}
