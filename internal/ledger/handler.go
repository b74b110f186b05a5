package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler wires accounting entry endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUnbalanced):
		httpx.Problem(w, http.StatusBadRequest, "Unbalanced Entry", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusBadRequest, "Invalid State", err.Error())
	case errors.Is(err, ErrUnknownAccount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := EntryStatus(raw)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("journal"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid journal filter")
			return
		}
		filter.JournalID = &id
	}
	if raw := r.URL.Query().Get("fiscal_year"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal_year filter")
			return
		}
		filter.FiscalYearID = &id
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		filter.PerPage, _ = strconv.Atoi(raw)
	}

	entries, page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list entries", slog.Any("error", err))
		respondLedgerError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, listResponse{Entries: out, Pagination: page})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	input, err := payload.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

// Validate transitions a draft entry to validated after checking balance.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Validate(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

// PostToLedger transitions a validated entry to posted.
func (h *Handler) PostToLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	var body struct {
		PostingDate string `json:"posting_date"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
			return
		}
	}
	var postingDate *time.Time
	if body.PostingDate != "" {
		parsed, err := time.Parse("2006-01-02", body.PostingDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "posting_date must be YYYY-MM-DD")
			return
		}
		postingDate = &parsed
	}
	entry, err := h.service.Post(r.Context(), id, postingDate)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

// Cancel transitions a draft or validated entry to cancelled.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

// CreateReversingEntry builds a draft entry negating a posted one.
func (h *Handler) CreateReversingEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	var body struct {
		EntryDate string `json:"entry_date"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
			return
		}
	}
	var entryDate *time.Time
	if body.EntryDate != "" {
		parsed, err := time.Parse("2006-01-02", body.EntryDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "entry_date must be YYYY-MM-DD")
			return
		}
		entryDate = &parsed
	}
	reversal, err := h.service.Reverse(r.Context(), id, entryDate)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(reversal))
}

func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return 0, false
	}
	return id, true
}
