package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/ledger/reports"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	_ "github.com/meridian-erp/meridian-erp/testing"
)

type mockRepo struct {
	years    map[int]int64
	accounts map[string]int64
	journals map[string]int64

	activity      []reports.AccountActivity
	activityCalls int
	balance       decimal.Decimal
	balanceFilter BalanceFilter
	lines         []reports.LineRow
	lineFilter    LineFilter
}

func (m *mockRepo) ResolveFiscalYear(_ context.Context, year int) (int64, error) {
	if id, ok := m.years[year]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("fiscal year %d: %w", year, httpx.ErrNotFound)
}

func (m *mockRepo) ResolveAccount(_ context.Context, number string) (int64, error) {
	if id, ok := m.accounts[number]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("account %s: %w", number, httpx.ErrNotFound)
}

func (m *mockRepo) ResolveJournal(_ context.Context, code string) (int64, error) {
	if id, ok := m.journals[code]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("journal %s: %w", code, httpx.ErrNotFound)
}

func (m *mockRepo) AccountActivity(_ context.Context, _ ActivityFilter) ([]reports.AccountActivity, error) {
	m.activityCalls++
	return m.activity, nil
}

func (m *mockRepo) AccountBalance(_ context.Context, _ int64, f BalanceFilter) (decimal.Decimal, error) {
	m.balanceFilter = f
	return m.balance, nil
}

func (m *mockRepo) EntryLines(_ context.Context, f LineFilter) ([]reports.LineRow, error) {
	m.lineFilter = f
	return m.lines, nil
}

func newTestService(t *testing.T, repo *mockRepo) (*Service, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	return NewService(repo, cache, slog.Default()), cache
}

func TestTrialBalanceUnknownFiscalYear(t *testing.T) {
	svc, _ := newTestService(t, &mockRepo{years: map[int]int64{}})
	_, err := svc.TrialBalance(context.Background(), TrialBalanceQuery{StatementQuery: StatementQuery{Year: 2099}})
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTrialBalanceCachesUntilBump(t *testing.T) {
	repo := &mockRepo{
		years: map[int]int64{2025: 1},
		activity: []reports.AccountActivity{
			{Number: "512000", Name: "Bank", ClassCode: "5", Balance: decimal.RequireFromString("100.00")},
			{Number: "706000", Name: "Services", ClassCode: "7", Balance: decimal.RequireFromString("-100.00")},
		},
	}
	svc, cache := newTestService(t, repo)
	q := TrialBalanceQuery{StatementQuery: StatementQuery{Year: 2025}}

	tb, err := svc.TrialBalance(context.Background(), q)
	if err != nil {
		t.Fatalf("trial balance: %v", err)
	}
	if !tb.IsBalanced || len(tb.Rows) != 2 {
		t.Fatalf("unexpected report: %+v", tb)
	}
	if _, err := svc.TrialBalance(context.Background(), q); err != nil {
		t.Fatalf("cached trial balance: %v", err)
	}
	if repo.activityCalls != 1 {
		t.Fatalf("expected one repository load, got %d", repo.activityCalls)
	}

	if err := cache.Bump(context.Background()); err != nil {
		t.Fatalf("bump: %v", err)
	}
	if _, err := svc.TrialBalance(context.Background(), q); err != nil {
		t.Fatalf("trial balance after bump: %v", err)
	}
	if repo.activityCalls != 2 {
		t.Fatalf("expected reload after bump, got %d calls", repo.activityCalls)
	}
}

func TestBalanceSheetFoldsNetIncome(t *testing.T) {
	repo := &mockRepo{
		years: map[int]int64{2025: 1},
		activity: []reports.AccountActivity{
			{Number: "512000", Name: "Bank", ClassCode: "5", IsBalanceSheet: true, Balance: decimal.RequireFromString("200.00")},
			{Number: "706000", Name: "Services", ClassCode: "7", Balance: decimal.RequireFromString("-200.00")},
		},
	}
	svc, _ := newTestService(t, repo)

	bs, err := svc.BalanceSheet(context.Background(), StatementQuery{Year: 2025})
	if err != nil {
		t.Fatalf("balance sheet: %v", err)
	}
	if !bs.RetainedEarnings.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("unexpected retained earnings: %v", bs.RetainedEarnings)
	}
	if !bs.IsBalanced {
		t.Fatalf("expected balanced sheet: %+v", bs)
	}
}

func TestGeneralLedgerResolvesAccount(t *testing.T) {
	repo := &mockRepo{
		years:    map[int]int64{2025: 1},
		accounts: map[string]int64{"411000": 7},
	}
	svc, _ := newTestService(t, repo)

	if _, err := svc.GeneralLedger(context.Background(), GeneralLedgerQuery{Year: 2025, AccountNumber: "411000"}); err != nil {
		t.Fatalf("general ledger: %v", err)
	}
	if repo.lineFilter.AccountID == nil || *repo.lineFilter.AccountID != 7 {
		t.Fatalf("account filter not applied: %+v", repo.lineFilter)
	}

	_, err := svc.GeneralLedger(context.Background(), GeneralLedgerQuery{Year: 2025, AccountNumber: "999999"})
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found for unknown account, got %v", err)
	}
}

func TestAccountBalanceScopes(t *testing.T) {
	year := 2025
	repo := &mockRepo{
		years:    map[int]int64{2025: 3},
		accounts: map[string]int64{"512000": 9},
		journals: map[string]int64{"BNK": 4},
		balance:  decimal.RequireFromString("-42.50"),
	}
	svc, _ := newTestService(t, repo)

	res, err := svc.AccountBalance(context.Background(), AccountBalanceQuery{
		AccountNumber: "512000",
		Year:          &year,
		JournalCode:   "BNK",
	})
	if err != nil {
		t.Fatalf("account balance: %v", err)
	}
	if !res.Balance.Equal(decimal.RequireFromString("-42.50")) {
		t.Fatalf("unexpected balance: %v", res.Balance)
	}
	if repo.balanceFilter.FiscalYearID == nil || *repo.balanceFilter.FiscalYearID != 3 {
		t.Fatalf("fiscal year not resolved: %+v", repo.balanceFilter)
	}
	if repo.balanceFilter.JournalID == nil || *repo.balanceFilter.JournalID != 4 {
		t.Fatalf("journal not resolved: %+v", repo.balanceFilter)
	}
}
