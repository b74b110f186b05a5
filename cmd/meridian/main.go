package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-erp/meridian-erp/internal/app"
	"github.com/meridian-erp/meridian-erp/internal/coa"
	"github.com/meridian-erp/meridian-erp/internal/fiscal"
	"github.com/meridian-erp/meridian-erp/internal/journals"
	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/observability"
	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/internal/refdata"
	"github.com/meridian-erp/meridian-erp/internal/reporting"
)

// postHooks fans a successful posting out to the report cache and the
// posting counter.
type postHooks struct {
	cache   *reporting.Cache
	metrics *observability.Metrics
}

func (h postHooks) Invalidate(ctx context.Context) error {
	h.metrics.EntryPosted()
	return h.cache.Invalidate(ctx)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	// The migrate pgx/v5 driver registers under its own scheme.
	migrateDSN := strings.Replace(cfg.PGDSN, "postgres://", "pgx5://", 1)
	if err := db.Migrate(cfg.MigrationsURL, migrateDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("report cache subscription", slog.Any("error", err))
	}
	reportingRepo := reporting.NewRepository(dbpool)
	reportingService := reporting.NewService(reportingRepo, reportCache, logger)
	reportingHandler := reporting.NewHandler(logger, reportingService)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, postHooks{cache: reportCache, metrics: metrics}, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	coaService := coa.NewService(coa.NewRepository(dbpool))
	coaHandler := coa.NewHandler(logger, coaService)

	fiscalService := fiscal.NewService(fiscal.NewRepository(dbpool))
	fiscalHandler := fiscal.NewHandler(logger, fiscalService)

	journalsService := journals.NewService(journals.NewRepository(dbpool))
	journalsHandler := journals.NewHandler(logger, journalsService)

	refdataHandler := refdata.NewHandler(logger, refdata.NewTypeRepository(dbpool))

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          metrics,
		LedgerHandler:    ledgerHandler,
		ReportingHandler: reportingHandler,
		COAHandler:       coaHandler,
		FiscalHandler:    fiscalHandler,
		JournalsHandler:  journalsHandler,
		RefDataHandler:   refdataHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
