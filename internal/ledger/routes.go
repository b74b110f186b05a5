package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes registers accounting entry endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounting-entries", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/validate", h.Validate)
		r.Post("/{id}/post_to_ledger", h.PostToLedger)
		r.Post("/{id}/cancel", h.Cancel)
		r.Post("/{id}/create_reversing_entry", h.CreateReversingEntry)
	})
}
