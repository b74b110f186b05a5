package reporting

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestHandler(t *testing.T, repo *mockRepo) *Handler {
	t.Helper()
	svc, _ := newTestService(t, repo)
	return NewHandler(slog.Default(), svc)
}

func TestAccountBalanceRequiresAccount(t *testing.T) {
	h := newTestHandler(t, &mockRepo{})

	rr := httptest.NewRecorder()
	h.AccountBalance(rr, httptest.NewRequest(http.MethodGet, "/reports/account_balance", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "account is required") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestAccountBalanceRejectsBadFiscalYear(t *testing.T) {
	h := newTestHandler(t, &mockRepo{accounts: map[string]int64{"512000": 7}})

	rr := httptest.NewRecorder()
	h.AccountBalance(rr, httptest.NewRequest(http.MethodGet,
		"/reports/account_balance?account=512000&fiscal_year=abc", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "fiscal_year must be a number") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestAccountBalanceReturnsBalance(t *testing.T) {
	repo := &mockRepo{
		accounts: map[string]int64{"512000": 7},
		years:    map[int]int64{2024: 3},
		balance:  decimal.RequireFromString("150.00"),
	}
	h := newTestHandler(t, repo)

	rr := httptest.NewRecorder()
	h.AccountBalance(rr, httptest.NewRequest(http.MethodGet,
		"/reports/account_balance?account=512000&fiscal_year=2024", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"balance":"150"`) {
		t.Fatalf("body = %s", rr.Body.String())
	}
}
