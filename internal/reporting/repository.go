package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/ledger/reports"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Querier is the subset of pgxpool.Pool the report feeds need.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads aggregated posted activity for the statement builders.
// It never writes; the ledger package owns all entry mutations.
type Repository struct {
	db Querier
}

func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// ActivityFilter scopes per-account aggregation. Only posted entries
// contribute regardless of the filter.
type ActivityFilter struct {
	FiscalYearID int64
	AsOf         *time.Time
	JournalID    *int64
}

// BalanceFilter scopes a single account balance. All fields are optional.
type BalanceFilter struct {
	FiscalYearID *int64
	AsOf         *time.Time
	JournalID    *int64
}

// LineFilter scopes the general ledger feed.
type LineFilter struct {
	FiscalYearID int64
	AccountID    *int64
	StartDate    *time.Time
	EndDate      *time.Time
}

// ResolveFiscalYear maps a fiscal year number to its id.
func (r *Repository) ResolveFiscalYear(ctx context.Context, year int) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM fiscal_years WHERE year = $1`, year).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("fiscal year %d: %w", year, httpx.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve fiscal year: %w", err)
	}
	return id, nil
}

// ResolveAccount maps an account number to its id.
func (r *Repository) ResolveAccount(ctx context.Context, number string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM general_ledger_accounts WHERE account_number = $1`, number).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("account %s: %w", number, httpx.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve account: %w", err)
	}
	return id, nil
}

// ResolveJournal maps a journal code to its id.
func (r *Repository) ResolveJournal(ctx context.Context, code string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM accounting_journals WHERE code = $1`, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("journal %s: %w", code, httpx.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve journal: %w", err)
	}
	return id, nil
}

// AccountActivity aggregates each account's signed posted balance within the
// filter. Every account is returned, including those with no activity, so
// the trial balance can honour include_zero_balances. The class code comes
// from the hierarchy links and falls back to the account number's first
// digit for accounts not attached to a section.
func (r *Repository) AccountActivity(ctx context.Context, f ActivityFilter) ([]reports.AccountActivity, error) {
	conds := "e.status = 'posted' AND e.fiscal_year_id = $1"
	args := []any{f.FiscalYearID}
	if f.AsOf != nil {
		args = append(args, *f.AsOf)
		conds += fmt.Sprintf(" AND e.entry_date <= $%d", len(args))
	}
	if f.JournalID != nil {
		args = append(args, *f.JournalID)
		conds += fmt.Sprintf(" AND e.journal_id = $%d", len(args))
	}
	query := fmt.Sprintf(`
SELECT a.account_number,
       a.full_name,
       COALESCE(cl.code, LEFT(a.account_number, 1)) AS class_code,
       a.is_balance_sheet,
       COALESCE(act.balance, 0)::text AS balance
FROM general_ledger_accounts a
LEFT JOIN accounting_sections s ON s.id = a.section_id
LEFT JOIN accounting_chapters ch ON ch.id = s.chapter_id
LEFT JOIN accounting_classes cl ON cl.id = ch.class_id
LEFT JOIN (
    SELECT l.account_id,
           SUM(CASE WHEN l.is_debit THEN l.amount ELSE -l.amount END) AS balance
    FROM accounting_entry_lines l
    JOIN accounting_entries e ON e.id = l.entry_id
    WHERE %s
    GROUP BY l.account_id
) act ON act.account_id = a.id
ORDER BY a.account_number`, conds)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load account activity: %w", err)
	}
	defer rows.Close()

	var out []reports.AccountActivity
	for rows.Next() {
		var a reports.AccountActivity
		var balance string
		if err := rows.Scan(&a.Number, &a.Name, &a.ClassCode, &a.IsBalanceSheet, &balance); err != nil {
			return nil, fmt.Errorf("scan account activity: %w", err)
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("parse balance for %s: %w", a.Number, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AccountBalance sums one account's signed posted activity.
func (r *Repository) AccountBalance(ctx context.Context, accountID int64, f BalanceFilter) (decimal.Decimal, error) {
	conds := "e.status = 'posted' AND l.account_id = $1"
	args := []any{accountID}
	if f.FiscalYearID != nil {
		args = append(args, *f.FiscalYearID)
		conds += fmt.Sprintf(" AND e.fiscal_year_id = $%d", len(args))
	}
	if f.AsOf != nil {
		args = append(args, *f.AsOf)
		conds += fmt.Sprintf(" AND e.entry_date <= $%d", len(args))
	}
	if f.JournalID != nil {
		args = append(args, *f.JournalID)
		conds += fmt.Sprintf(" AND e.journal_id = $%d", len(args))
	}
	query := fmt.Sprintf(`
SELECT COALESCE(SUM(CASE WHEN l.is_debit THEN l.amount ELSE -l.amount END), 0)::text
FROM accounting_entry_lines l
JOIN accounting_entries e ON e.id = l.entry_id
WHERE %s`, conds)

	var balance string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("load account balance: %w", err)
	}
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse account balance: %w", err)
	}
	return d, nil
}

// EntryLines returns flat posted lines for the general ledger, ordered by
// entry date, entry number and line number.
func (r *Repository) EntryLines(ctx context.Context, f LineFilter) ([]reports.LineRow, error) {
	conds := "e.status = 'posted' AND e.fiscal_year_id = $1"
	args := []any{f.FiscalYearID}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		conds += fmt.Sprintf(" AND l.account_id = $%d", len(args))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds += fmt.Sprintf(" AND e.entry_date >= $%d", len(args))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds += fmt.Sprintf(" AND e.entry_date <= $%d", len(args))
	}
	query := fmt.Sprintf(`
SELECT e.id, e.entry_number, e.entry_date, j.code, e.reference,
       l.line_number, a.account_number, a.full_name, l.is_debit, l.amount::text, l.description
FROM accounting_entry_lines l
JOIN accounting_entries e ON e.id = l.entry_id
JOIN accounting_journals j ON j.id = e.journal_id
JOIN general_ledger_accounts a ON a.id = l.account_id
WHERE %s
ORDER BY e.entry_date, e.entry_number, l.line_number`, conds)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load entry lines: %w", err)
	}
	defer rows.Close()

	var out []reports.LineRow
	for rows.Next() {
		var lr reports.LineRow
		var amount string
		if err := rows.Scan(&lr.EntryID, &lr.EntryNumber, &lr.EntryDate, &lr.JournalCode, &lr.Reference,
			&lr.LineNumber, &lr.AccountNumber, &lr.AccountName, &lr.IsDebit, &amount, &lr.Description); err != nil {
			return nil, fmt.Errorf("scan entry line: %w", err)
		}
		if lr.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse line amount: %w", err)
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}
