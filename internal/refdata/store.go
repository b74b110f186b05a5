package refdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
)

// AccountRecord is one chart of accounts row ready for upsert.
type AccountRecord struct {
	AccountNumber           string
	ShortName               string
	FullName                string
	SectionID               *int64
	IsBalanceSheet          bool
	BudgetAccountCode       *string
	RecoveryStatus          *string
	FinancialStatementGroup *string
}

// JournalRecord is one accounting journal row ready for upsert.
type JournalRecord struct {
	JournalID        string
	Code             string
	ShortName        string
	Name             string
	IsOpeningBalance bool
	CompanyCode      *string
}

// FiscalYearRecord is one fiscal year row ready for upsert.
type FiscalYearRecord struct {
	Year      int
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsCurrent bool
	IsClosed  bool
}

// AccountingTypeRecord is one accounting type row ready for upsert.
type AccountingTypeRecord struct {
	Code      string
	ShortName string
	FullName  string
	Nature    *string
}

// TxStore is the write surface an import file runs against. All upserts are
// keyed by natural code so re-running an import converges instead of
// duplicating.
type TxStore interface {
	EnsureClass(ctx context.Context, code, name string) (int64, error)
	EnsureChapter(ctx context.Context, code, name string, classID int64) (int64, error)
	EnsureSection(ctx context.Context, code, name string, chapterID int64) (int64, error)
	UpsertAccount(ctx context.Context, rec AccountRecord) error
	UpsertJournal(ctx context.Context, rec JournalRecord) error
	UpsertFiscalYear(ctx context.Context, rec FiscalYearRecord) error
	UpsertAccountingType(ctx context.Context, rec AccountingTypeRecord) error
}

// Store runs each import file in a single transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxStore{tx: tx})
	})
}

type pgTxStore struct {
	tx pgx.Tx
}

func (s *pgTxStore) EnsureClass(ctx context.Context, code, name string) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx, `
INSERT INTO accounting_classes (code, name)
VALUES ($1, $2)
ON CONFLICT (code) DO UPDATE
SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE accounting_classes.name END
RETURNING id`, code, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("refdata: ensure class %s: %w", code, err)
	}
	return id, nil
}

func (s *pgTxStore) EnsureChapter(ctx context.Context, code, name string, classID int64) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx, `
INSERT INTO accounting_chapters (code, name, class_id)
VALUES ($1, $2, $3)
ON CONFLICT (code) DO UPDATE
SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE accounting_chapters.name END,
    class_id = EXCLUDED.class_id
RETURNING id`, code, name, classID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("refdata: ensure chapter %s: %w", code, err)
	}
	return id, nil
}

func (s *pgTxStore) EnsureSection(ctx context.Context, code, name string, chapterID int64) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx, `
INSERT INTO accounting_sections (code, name, chapter_id)
VALUES ($1, $2, $3)
ON CONFLICT (code) DO UPDATE
SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE accounting_sections.name END,
    chapter_id = EXCLUDED.chapter_id
RETURNING id`, code, name, chapterID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("refdata: ensure section %s: %w", code, err)
	}
	return id, nil
}

func (s *pgTxStore) UpsertAccount(ctx context.Context, rec AccountRecord) error {
	_, err := s.tx.Exec(ctx, `
INSERT INTO general_ledger_accounts
    (account_number, short_name, full_name, section_id, is_balance_sheet,
     budget_account_code, recovery_status, financial_statement_group)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (account_number) DO UPDATE
SET short_name = EXCLUDED.short_name,
    full_name = EXCLUDED.full_name,
    section_id = EXCLUDED.section_id,
    is_balance_sheet = EXCLUDED.is_balance_sheet,
    budget_account_code = EXCLUDED.budget_account_code,
    recovery_status = EXCLUDED.recovery_status,
    financial_statement_group = EXCLUDED.financial_statement_group`,
		rec.AccountNumber, rec.ShortName, rec.FullName, rec.SectionID, rec.IsBalanceSheet,
		rec.BudgetAccountCode, rec.RecoveryStatus, rec.FinancialStatementGroup)
	if err != nil {
		return fmt.Errorf("refdata: upsert account %s: %w", rec.AccountNumber, err)
	}
	return nil
}

func (s *pgTxStore) UpsertJournal(ctx context.Context, rec JournalRecord) error {
	_, err := s.tx.Exec(ctx, `
INSERT INTO accounting_journals (journal_id, code, short_name, name, is_opening_balance, company_code)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (journal_id) DO UPDATE
SET code = EXCLUDED.code,
    short_name = EXCLUDED.short_name,
    name = EXCLUDED.name,
    is_opening_balance = EXCLUDED.is_opening_balance,
    company_code = EXCLUDED.company_code`,
		rec.JournalID, rec.Code, rec.ShortName, rec.Name, rec.IsOpeningBalance, rec.CompanyCode)
	if err != nil {
		return fmt.Errorf("refdata: upsert journal %s: %w", rec.Code, err)
	}
	return nil
}

func (s *pgTxStore) UpsertFiscalYear(ctx context.Context, rec FiscalYearRecord) error {
	_, err := s.tx.Exec(ctx, `
INSERT INTO fiscal_years (year, name, start_date, end_date, is_current, is_closed)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (year) DO UPDATE
SET name = EXCLUDED.name,
    start_date = EXCLUDED.start_date,
    end_date = EXCLUDED.end_date,
    is_current = EXCLUDED.is_current,
    is_closed = EXCLUDED.is_closed`,
		rec.Year, rec.Name, rec.StartDate, rec.EndDate, rec.IsCurrent, rec.IsClosed)
	if err != nil {
		return fmt.Errorf("refdata: upsert fiscal year %d: %w", rec.Year, err)
	}
	return nil
}

func (s *pgTxStore) UpsertAccountingType(ctx context.Context, rec AccountingTypeRecord) error {
	_, err := s.tx.Exec(ctx, `
INSERT INTO accounting_types (code, short_name, full_name, nature)
VALUES ($1, $2, $3, $4)
ON CONFLICT (code) DO UPDATE
SET short_name = EXCLUDED.short_name,
    full_name = EXCLUDED.full_name,
    nature = EXCLUDED.nature`,
		rec.Code, rec.ShortName, rec.FullName, rec.Nature)
	if err != nil {
		return fmt.Errorf("refdata: upsert accounting type %s: %w", rec.Code, err)
	}
	return nil
}
