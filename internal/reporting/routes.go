package reporting

import "github.com/go-chi/chi/v5"

// MountRoutes registers the financial statement endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/account_balance", h.AccountBalance)
		r.Get("/trial_balance", h.TrialBalance)
		r.Get("/general_ledger", h.GeneralLedger)
		r.Get("/income_statement", h.IncomeStatement)
		r.Get("/balance_sheet", h.BalanceSheet)
	})
}
