package reporting

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler exposes the financial statements over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

func parseDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD: %w", name, httpx.ErrValidation)
	}
	return &t, nil
}

func requireFiscalYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("fiscal_year")
	if raw == "" {
		return 0, fmt.Errorf("fiscal_year is required: %w", httpx.ErrValidation)
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("fiscal_year must be a number: %w", httpx.ErrValidation)
	}
	return year, nil
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	year, err := requireFiscalYear(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	asOf, err := parseDate(r, "as_of_date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	includeZero, _ := strconv.ParseBool(r.URL.Query().Get("include_zero_balances"))

	tb, err := h.service.TrialBalance(r.Context(), TrialBalanceQuery{
		StatementQuery: StatementQuery{Year: year, AsOf: asOf},
		IncludeZero:    includeZero,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	year, err := requireFiscalYear(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	start, err := parseDate(r, "start_date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	end, err := parseDate(r, "end_date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	gl, err := h.service.GeneralLedger(r.Context(), GeneralLedgerQuery{
		Year:          year,
		AccountNumber: r.URL.Query().Get("account"),
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, gl)
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	h.statement(w, r, func(q StatementQuery) (any, error) {
		return h.service.IncomeStatement(r.Context(), q)
	})
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	h.statement(w, r, func(q StatementQuery) (any, error) {
		return h.service.BalanceSheet(r.Context(), q)
	})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request, load func(StatementQuery) (any, error)) {
	year, err := requireFiscalYear(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	asOf, err := parseDate(r, "as_of_date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := load(StatementQuery{Year: year, AsOf: asOf})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		httpx.RespondError(w, fmt.Errorf("account is required: %w", httpx.ErrValidation))
		return
	}
	q := AccountBalanceQuery{
		AccountNumber: account,
		JournalCode:   r.URL.Query().Get("journal"),
	}
	if raw := r.URL.Query().Get("fiscal_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("fiscal_year must be a number: %w", httpx.ErrValidation))
			return
		}
		q.Year = &year
	}
	asOf, err := parseDate(r, "as_of_date")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q.AsOf = asOf

	res, err := h.service.AccountBalance(r.Context(), q)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
