package fiscal

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler wires fiscal year endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type yearPayload struct {
	Year      int    `json:"year"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsClosed  bool   `json:"is_closed"`
}

type yearResponse struct {
	ID        int64  `json:"id"`
	Year      int    `json:"year"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsClosed  bool   `json:"is_closed"`
	IsCurrent bool   `json:"is_current"`
}

func toYearResponse(y Year) yearResponse {
	return yearResponse{
		ID:        y.ID,
		Year:      y.Year,
		Name:      y.Name,
		StartDate: y.StartDate.Format("2006-01-02"),
		EndDate:   y.EndDate.Format("2006-01-02"),
		IsClosed:  y.IsClosed,
		IsCurrent: y.IsCurrent,
	}
}

func (p yearPayload) toModel() (Year, error) {
	start, err := time.Parse("2006-01-02", p.StartDate)
	if err != nil {
		return Year{}, err
	}
	end, err := time.Parse("2006-01-02", p.EndDate)
	if err != nil {
		return Year{}, err
	}
	return Year{Year: p.Year, Name: p.Name, StartDate: start, EndDate: end, IsClosed: p.IsClosed}, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list fiscal years", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]yearResponse, 0, len(years))
	for _, y := range years {
		out = append(out, toYearResponse(y))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year id")
		return
	}
	year, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toYearResponse(year))
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	year, err := h.service.Current(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toYearResponse(year))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload yearPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	model, err := payload.toModel()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "dates must be YYYY-MM-DD")
		return
	}
	year, err := h.service.Create(r.Context(), model)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toYearResponse(year))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year id")
		return
	}
	var payload yearPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	model, err := payload.toModel()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "dates must be YYYY-MM-DD")
		return
	}
	if err := h.service.Update(r.Context(), id, model); err != nil {
		httpx.RespondError(w, err)
		return
	}
	year, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toYearResponse(year))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year id")
		return
	}
	year, err := h.service.SetCurrent(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toYearResponse(year))
}
