package coa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

const fkViolation = "23503"

// Repository persists chart of accounts entities.
type Repository interface {
	ListClasses(ctx context.Context) ([]AccountingClass, error)
	ListChapters(ctx context.Context) ([]AccountingChapter, error)
	ListSections(ctx context.Context) ([]AccountingSection, error)
	ListAccounts(ctx context.Context, balanceSheet *bool) ([]GeneralLedgerAccount, error)
	GetAccount(ctx context.Context, id int64) (GeneralLedgerAccount, error)
	GetAccountByNumber(ctx context.Context, number string) (GeneralLedgerAccount, error)
	CreateAccount(ctx context.Context, account GeneralLedgerAccount) (GeneralLedgerAccount, error)
	UpdateAccount(ctx context.Context, id int64, account GeneralLedgerAccount) error
	DeleteAccount(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository backed by PostgreSQL.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListClasses(ctx context.Context) ([]AccountingClass, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, created_at, updated_at FROM accounting_classes ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var classes []AccountingClass
	for rows.Next() {
		var c AccountingClass
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *repository) ListChapters(ctx context.Context) ([]AccountingChapter, error) {
	rows, err := r.db.Query(ctx, `SELECT id, class_id, code, name, created_at, updated_at FROM accounting_chapters ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chapters []AccountingChapter
	for rows.Next() {
		var c AccountingChapter
		if err := rows.Scan(&c.ID, &c.ClassID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

func (r *repository) ListSections(ctx context.Context) ([]AccountingSection, error) {
	rows, err := r.db.Query(ctx, `SELECT id, chapter_id, code, name, created_at, updated_at FROM accounting_sections ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sections []AccountingSection
	for rows.Next() {
		var s AccountingSection
		if err := rows.Scan(&s.ID, &s.ChapterID, &s.Code, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

const accountColumns = `id, section_id, account_number, short_name, full_name, is_balance_sheet,
budget_account_code, recovery_status, financial_statement_group, created_at, updated_at`

func scanAccount(row pgx.Row) (GeneralLedgerAccount, error) {
	var a GeneralLedgerAccount
	err := row.Scan(&a.ID, &a.SectionID, &a.AccountNumber, &a.ShortName, &a.FullName, &a.IsBalanceSheet,
		&a.BudgetAccountCode, &a.RecoveryStatus, &a.FinancialStatementGroup, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) ListAccounts(ctx context.Context, balanceSheet *bool) ([]GeneralLedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM general_ledger_accounts`
	args := []any{}
	if balanceSheet != nil {
		query += ` WHERE is_balance_sheet = $1`
		args = append(args, *balanceSheet)
	}
	query += ` ORDER BY account_number`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []GeneralLedgerAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) GetAccount(ctx context.Context, id int64) (GeneralLedgerAccount, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM general_ledger_accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return GeneralLedgerAccount{}, fmt.Errorf("%w: account %d", httpx.ErrNotFound, id)
	}
	return a, err
}

func (r *repository) GetAccountByNumber(ctx context.Context, number string) (GeneralLedgerAccount, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM general_ledger_accounts WHERE account_number = $1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return GeneralLedgerAccount{}, fmt.Errorf("%w: account %s", httpx.ErrNotFound, number)
	}
	return a, err
}

func (r *repository) CreateAccount(ctx context.Context, account GeneralLedgerAccount) (GeneralLedgerAccount, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO general_ledger_accounts
(section_id, account_number, short_name, full_name, is_balance_sheet, budget_account_code, recovery_status, financial_statement_group, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9) RETURNING id`,
		account.SectionID, account.AccountNumber, account.ShortName, account.FullName, account.IsBalanceSheet,
		account.BudgetAccountCode, account.RecoveryStatus, account.FinancialStatementGroup, now).Scan(&account.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return GeneralLedgerAccount{}, fmt.Errorf("%w: account %s", httpx.ErrDuplicate, account.AccountNumber)
		}
		return GeneralLedgerAccount{}, err
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	return account, nil
}

func (r *repository) UpdateAccount(ctx context.Context, id int64, account GeneralLedgerAccount) error {
	tag, err := r.db.Exec(ctx, `UPDATE general_ledger_accounts
SET section_id = $1, account_number = $2, short_name = $3, full_name = $4, is_balance_sheet = $5,
budget_account_code = $6, recovery_status = $7, financial_statement_group = $8, updated_at = $9
WHERE id = $10`,
		account.SectionID, account.AccountNumber, account.ShortName, account.FullName, account.IsBalanceSheet,
		account.BudgetAccountCode, account.RecoveryStatus, account.FinancialStatementGroup, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %d", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *repository) DeleteAccount(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM general_ledger_accounts WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return fmt.Errorf("%w: account %d has ledger activity", httpx.ErrReferenced, id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %d", httpx.ErrNotFound, id)
	}
	return nil
}
