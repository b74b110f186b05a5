package coa

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler wires chart of accounts endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type accountPayload struct {
	SectionID               *int64  `json:"section_id"`
	AccountNumber           string  `json:"account_number"`
	ShortName               string  `json:"short_name"`
	FullName                string  `json:"full_name"`
	IsBalanceSheet          bool    `json:"is_balance_sheet"`
	BudgetAccountCode       *string `json:"budget_account_code"`
	RecoveryStatus          *string `json:"recovery_status"`
	FinancialStatementGroup *string `json:"financial_statement_group"`
}

func (p accountPayload) toModel() GeneralLedgerAccount {
	return GeneralLedgerAccount{
		SectionID:               p.SectionID,
		AccountNumber:           p.AccountNumber,
		ShortName:               p.ShortName,
		FullName:                p.FullName,
		IsBalanceSheet:          p.IsBalanceSheet,
		BudgetAccountCode:       p.BudgetAccountCode,
		RecoveryStatus:          p.RecoveryStatus,
		FinancialStatementGroup: p.FinancialStatementGroup,
	}
}

type accountResponse struct {
	ID                      int64   `json:"id"`
	SectionID               *int64  `json:"section_id"`
	AccountNumber           string  `json:"account_number"`
	ShortName               string  `json:"short_name"`
	FullName                string  `json:"full_name"`
	IsBalanceSheet          bool    `json:"is_balance_sheet"`
	ClassCode               string  `json:"class_code"`
	ChapterCode             string  `json:"chapter_code"`
	SectionCode             string  `json:"section_code"`
	BudgetAccountCode       *string `json:"budget_account_code,omitempty"`
	RecoveryStatus          *string `json:"recovery_status,omitempty"`
	FinancialStatementGroup *string `json:"financial_statement_group,omitempty"`
}

func toAccountResponse(a GeneralLedgerAccount) accountResponse {
	return accountResponse{
		ID:                      a.ID,
		SectionID:               a.SectionID,
		AccountNumber:           a.AccountNumber,
		ShortName:               a.ShortName,
		FullName:                a.FullName,
		IsBalanceSheet:          a.IsBalanceSheet,
		ClassCode:               a.ClassCode(),
		ChapterCode:             a.ChapterCode(),
		SectionCode:             a.SectionCode(),
		BudgetAccountCode:       a.BudgetAccountCode,
		RecoveryStatus:          a.RecoveryStatus,
		FinancialStatementGroup: a.FinancialStatementGroup,
	}
}

func toAccountResponses(accounts []GeneralLedgerAccount) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context(), nil)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponses(accounts))
}

func (h *Handler) ListBalanceSheetAccounts(w http.ResponseWriter, r *http.Request) {
	h.listByKind(w, r, true)
}

func (h *Handler) ListIncomeStatementAccounts(w http.ResponseWriter, r *http.Request) {
	h.listByKind(w, r, false)
}

func (h *Handler) listByKind(w http.ResponseWriter, r *http.Request, balanceSheet bool) {
	accounts, err := h.service.ListAccounts(r.Context(), &balanceSheet)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponses(accounts))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var payload accountPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	account, err := h.service.CreateAccount(r.Context(), payload.toModel())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	var payload accountPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.service.UpdateAccount(r.Context(), id, payload.toModel()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.service.ListClasses(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, classes)
}

func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.service.ListChapters(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, chapters)
}

func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.ListSections(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sections)
}
