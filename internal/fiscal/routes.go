package fiscal

import "github.com/go-chi/chi/v5"

// MountRoutes registers fiscal year endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/fiscal-years", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/current", h.Current)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/set_current", h.SetCurrent)
	})
}
