package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-erp/meridian-erp/internal/coa"
	"github.com/meridian-erp/meridian-erp/internal/fiscal"
	"github.com/meridian-erp/meridian-erp/internal/journals"
	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/observability"
	"github.com/meridian-erp/meridian-erp/internal/refdata"
	"github.com/meridian-erp/meridian-erp/internal/reporting"
)

// RouterParams aggregates the handlers mounted by the HTTP server.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	LedgerHandler    *ledger.Handler
	ReportingHandler *reporting.Handler
	COAHandler       *coa.Handler
	FiscalHandler    *fiscal.Handler
	JournalsHandler  *journals.Handler
	RefDataHandler   *refdata.Handler
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.LedgerHandler.MountRoutes(r)
		params.ReportingHandler.MountRoutes(r)
		params.COAHandler.MountRoutes(r)
		params.FiscalHandler.MountRoutes(r)
		params.JournalsHandler.MountRoutes(r)
		params.RefDataHandler.MountRoutes(r)
	})

	return r
}
