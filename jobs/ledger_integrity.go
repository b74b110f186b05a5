package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/meridian-erp/meridian-erp/internal/observability"
)

// Querier is the subset of pgxpool.Pool the integrity scan needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// IntegrityViolation is a posted entry whose lines no longer balance.
// The lifecycle manager refuses to post unbalanced entries, so any hit
// here means the data was corrupted outside the application.
type IntegrityViolation struct {
	EntryID     int64
	EntryNumber string
	TotalDebit  string
	TotalCredit string
}

// IntegrityChecker scans posted entries for debit and credit mismatches.
type IntegrityChecker struct {
	db      Querier
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewIntegrityChecker(db Querier, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{db: db, logger: logger}
}

// WithMetrics attaches job instrumentation. A nil metrics value is a no-op.
func (c *IntegrityChecker) WithMetrics(m *observability.Metrics) *IntegrityChecker {
	c.metrics = m
	return c
}

// Scan returns every posted entry whose lines do not balance, optionally
// scoped to one fiscal year.
func (c *IntegrityChecker) Scan(ctx context.Context, fiscalYearID int64) ([]IntegrityViolation, error) {
	conds := "e.status = 'posted'"
	args := []any{}
	if fiscalYearID != 0 {
		args = append(args, fiscalYearID)
		conds += " AND e.fiscal_year_id = $1"
	}
	query := fmt.Sprintf(`
SELECT e.id, e.entry_number,
       COALESCE(SUM(CASE WHEN l.is_debit THEN l.amount ELSE 0 END), 0)::text,
       COALESCE(SUM(CASE WHEN l.is_debit THEN 0 ELSE l.amount END), 0)::text
FROM accounting_entries e
LEFT JOIN accounting_entry_lines l ON l.entry_id = e.id
WHERE %s
GROUP BY e.id, e.entry_number
HAVING COALESCE(SUM(CASE WHEN l.is_debit THEN l.amount ELSE -l.amount END), 0) <> 0
ORDER BY e.entry_number`, conds)

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("jobs: integrity scan: %w", err)
	}
	defer rows.Close()

	var out []IntegrityViolation
	for rows.Next() {
		var v IntegrityViolation
		if err := rows.Scan(&v.EntryID, &v.EntryNumber, &v.TotalDebit, &v.TotalCredit); err != nil {
			return nil, fmt.Errorf("jobs: scan violation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Handler adapts the checker to Asynq. The scan only reports; repairing a
// corrupted entry is a manual operation.
func (c *IntegrityChecker) Handler(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	start := time.Now()
	violations, err := c.Scan(ctx, payload.FiscalYearID)
	c.metrics.ObserveJob(TaskLedgerIntegrity, start, err)
	if err != nil {
		return err
	}
	c.metrics.AddUnbalancedEntries(len(violations))
	if len(violations) == 0 {
		c.logger.Info("ledger integrity scan clean", slog.String("job", TaskLedgerIntegrity))
		return nil
	}
	for _, v := range violations {
		c.logger.Error("unbalanced posted entry",
			slog.String("job", TaskLedgerIntegrity),
			slog.Int64("entry_id", v.EntryID),
			slog.String("entry_number", v.EntryNumber),
			slog.String("total_debit", v.TotalDebit),
			slog.String("total_credit", v.TotalCredit))
	}
	return nil
}
