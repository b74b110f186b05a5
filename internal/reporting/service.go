package reporting

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/ledger/reports"
)

// RepositoryPort is the data feed contract the service depends on.
type RepositoryPort interface {
	ResolveFiscalYear(ctx context.Context, year int) (int64, error)
	ResolveAccount(ctx context.Context, number string) (int64, error)
	ResolveJournal(ctx context.Context, code string) (int64, error)
	AccountActivity(ctx context.Context, f ActivityFilter) ([]reports.AccountActivity, error)
	AccountBalance(ctx context.Context, accountID int64, f BalanceFilter) (decimal.Decimal, error)
	EntryLines(ctx context.Context, f LineFilter) ([]reports.LineRow, error)
}

// Service resolves identifiers, feeds the statement builders and caches the
// rendered reports. Identifier resolution happens before any cache or data
// access so unknown years, accounts and journals surface as not found.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

type StatementQuery struct {
	Year int
	AsOf *time.Time
}

type TrialBalanceQuery struct {
	StatementQuery
	IncludeZero bool
}

type GeneralLedgerQuery struct {
	Year          int
	AccountNumber string
	StartDate     *time.Time
	EndDate       *time.Time
}

type AccountBalanceQuery struct {
	AccountNumber string
	Year          *int
	AsOf          *time.Time
	JournalCode   string
}

// AccountBalanceResult carries the balance with its resolved scope.
type AccountBalanceResult struct {
	AccountNumber string          `json:"account_number"`
	FiscalYear    *int            `json:"fiscal_year,omitempty"`
	AsOfDate      *time.Time      `json:"as_of_date,omitempty"`
	JournalCode   string          `json:"journal_code,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
}

func dateToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func (s *Service) TrialBalance(ctx context.Context, q TrialBalanceQuery) (reports.TrialBalance, error) {
	var tb reports.TrialBalance
	fyID, err := s.repo.ResolveFiscalYear(ctx, q.Year)
	if err != nil {
		return tb, err
	}
	key, err := s.cache.BuildKey(ctx, "reports", "trial_balance", strconv.Itoa(q.Year), dateToken(q.AsOf), strconv.FormatBool(q.IncludeZero))
	if err != nil {
		return tb, err
	}
	err = s.cache.FetchJSON(ctx, key, &tb, func(ctx context.Context) (interface{}, error) {
		activity, err := s.repo.AccountActivity(ctx, ActivityFilter{FiscalYearID: fyID, AsOf: q.AsOf})
		if err != nil {
			return nil, err
		}
		return reports.BuildTrialBalance(activity, q.IncludeZero), nil
	})
	return tb, err
}

func (s *Service) GeneralLedger(ctx context.Context, q GeneralLedgerQuery) (reports.GeneralLedger, error) {
	var gl reports.GeneralLedger
	fyID, err := s.repo.ResolveFiscalYear(ctx, q.Year)
	if err != nil {
		return gl, err
	}
	filter := LineFilter{FiscalYearID: fyID, StartDate: q.StartDate, EndDate: q.EndDate}
	if q.AccountNumber != "" {
		accountID, err := s.repo.ResolveAccount(ctx, q.AccountNumber)
		if err != nil {
			return gl, err
		}
		filter.AccountID = &accountID
	}
	key, err := s.cache.BuildKey(ctx, "reports", "general_ledger", strconv.Itoa(q.Year), q.AccountNumber, dateToken(q.StartDate), dateToken(q.EndDate))
	if err != nil {
		return gl, err
	}
	err = s.cache.FetchJSON(ctx, key, &gl, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.EntryLines(ctx, filter)
		if err != nil {
			return nil, err
		}
		return reports.BuildGeneralLedger(rows), nil
	})
	return gl, err
}

func (s *Service) IncomeStatement(ctx context.Context, q StatementQuery) (reports.IncomeStatement, error) {
	var is reports.IncomeStatement
	fyID, err := s.repo.ResolveFiscalYear(ctx, q.Year)
	if err != nil {
		return is, err
	}
	key, err := s.cache.BuildKey(ctx, "reports", "income_statement", strconv.Itoa(q.Year), dateToken(q.AsOf))
	if err != nil {
		return is, err
	}
	err = s.cache.FetchJSON(ctx, key, &is, func(ctx context.Context) (interface{}, error) {
		activity, err := s.repo.AccountActivity(ctx, ActivityFilter{FiscalYearID: fyID, AsOf: q.AsOf})
		if err != nil {
			return nil, err
		}
		return reports.BuildIncomeStatement(activity), nil
	})
	return is, err
}

// BalanceSheet builds the balance sheet with the same period's net income
// folded into equity as retained earnings.
func (s *Service) BalanceSheet(ctx context.Context, q StatementQuery) (reports.BalanceSheet, error) {
	var bs reports.BalanceSheet
	fyID, err := s.repo.ResolveFiscalYear(ctx, q.Year)
	if err != nil {
		return bs, err
	}
	key, err := s.cache.BuildKey(ctx, "reports", "balance_sheet", strconv.Itoa(q.Year), dateToken(q.AsOf))
	if err != nil {
		return bs, err
	}
	err = s.cache.FetchJSON(ctx, key, &bs, func(ctx context.Context) (interface{}, error) {
		activity, err := s.repo.AccountActivity(ctx, ActivityFilter{FiscalYearID: fyID, AsOf: q.AsOf})
		if err != nil {
			return nil, err
		}
		netIncome := reports.BuildIncomeStatement(activity).NetIncome
		return reports.BuildBalanceSheet(activity, netIncome), nil
	})
	return bs, err
}

// AccountBalance returns one account's signed posted balance. An account
// with no matching activity reports 0.00 rather than an error.
func (s *Service) AccountBalance(ctx context.Context, q AccountBalanceQuery) (AccountBalanceResult, error) {
	res := AccountBalanceResult{
		AccountNumber: q.AccountNumber,
		FiscalYear:    q.Year,
		AsOfDate:      q.AsOf,
		JournalCode:   q.JournalCode,
		Balance:       decimal.Zero,
	}
	accountID, err := s.repo.ResolveAccount(ctx, q.AccountNumber)
	if err != nil {
		return res, err
	}
	filter := BalanceFilter{AsOf: q.AsOf}
	if q.Year != nil {
		fyID, err := s.repo.ResolveFiscalYear(ctx, *q.Year)
		if err != nil {
			return res, err
		}
		filter.FiscalYearID = &fyID
	}
	if q.JournalCode != "" {
		journalID, err := s.repo.ResolveJournal(ctx, q.JournalCode)
		if err != nil {
			return res, err
		}
		filter.JournalID = &journalID
	}
	res.Balance, err = s.repo.AccountBalance(ctx, accountID, filter)
	return res, err
}
