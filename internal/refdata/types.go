package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// AccountingType is a read-only reference entity maintained by the importer.
type AccountingType struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	ShortName string  `json:"short_name"`
	FullName  string  `json:"full_name"`
	Nature    *string `json:"nature,omitempty"`
}

// Querier is the subset of pgxpool.Pool the read side needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TypeRepository lists imported accounting types.
type TypeRepository struct {
	db Querier
}

func NewTypeRepository(db Querier) *TypeRepository {
	return &TypeRepository{db: db}
}

func (r *TypeRepository) ListAccountingTypes(ctx context.Context) ([]AccountingType, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, code, short_name, full_name, nature
FROM accounting_types
ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("refdata: list accounting types: %w", err)
	}
	defer rows.Close()

	out := []AccountingType{}
	for rows.Next() {
		var t AccountingType
		if err := rows.Scan(&t.ID, &t.Code, &t.ShortName, &t.FullName, &t.Nature); err != nil {
			return nil, fmt.Errorf("refdata: scan accounting type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Handler exposes the reference entities over HTTP.
type Handler struct {
	logger *slog.Logger
	types  *TypeRepository
}

func NewHandler(logger *slog.Logger, types *TypeRepository) *Handler {
	return &Handler{logger: logger, types: types}
}

func (h *Handler) ListAccountingTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.types.ListAccountingTypes(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, types)
}

// MountRoutes registers the reference data endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounting-types", h.ListAccountingTypes)
}
