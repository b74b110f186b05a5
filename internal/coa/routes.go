package coa

import "github.com/go-chi/chi/v5"

// MountRoutes registers chart of accounts endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/gl-accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/balance-sheet", h.ListBalanceSheetAccounts)
		r.Get("/income-statement", h.ListIncomeStatementAccounts)
		r.Get("/{id}", h.GetAccount)
		r.Put("/{id}", h.UpdateAccount)
		r.Delete("/{id}", h.DeleteAccount)
	})
	r.Get("/accounting-classes", h.ListClasses)
	r.Get("/accounting-chapters", h.ListChapters)
	r.Get("/accounting-sections", h.ListSections)
}
