package journals

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler wires journal endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type journalPayload struct {
	JournalID        string  `json:"journal_id"`
	Code             string  `json:"code"`
	ShortName        string  `json:"short_name"`
	Name             string  `json:"name"`
	IsOpeningBalance bool    `json:"is_opening_balance"`
	CompanyCode      *string `json:"company_code"`
}

func (p journalPayload) toModel() Journal {
	return Journal{
		JournalID:        p.JournalID,
		Code:             p.Code,
		ShortName:        p.ShortName,
		Name:             p.Name,
		IsOpeningBalance: p.IsOpeningBalance,
		CompanyCode:      p.CompanyCode,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	journals, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, journals)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid journal id")
		return
	}
	journal, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, journal)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload journalPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	journal, err := h.service.Create(r.Context(), payload.toModel())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, journal)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid journal id")
		return
	}
	var payload journalPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.service.Update(r.Context(), id, payload.toModel()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	journal, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, journal)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid journal id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
