package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/meridian-erp/meridian-erp/testing"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildTrialBalance(t *testing.T) {
	activity := []AccountActivity{
		{Number: "512000", Name: "Bank", ClassCode: "5", Balance: dec("1500.00")},
		{Number: "401000", Name: "Suppliers", ClassCode: "4", Balance: dec("-900.00")},
		{Number: "606300", Name: "Supplies", ClassCode: "6", Balance: dec("-600.00")},
		{Number: "411000", Name: "Clients", ClassCode: "4", Balance: decimal.Zero},
	}

	tb := BuildTrialBalance(activity, false)
	if len(tb.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tb.Rows))
	}
	if tb.Rows[0].AccountNumber != "401000" {
		t.Fatalf("rows not sorted by account number: %s first", tb.Rows[0].AccountNumber)
	}
	if !tb.Rows[0].Credit.Equal(dec("900.00")) || !tb.Rows[0].Debit.IsZero() {
		t.Fatalf("credit balance split wrong: %+v", tb.Rows[0])
	}
	if !tb.TotalDebit.Equal(dec("1500.00")) || !tb.TotalCredit.Equal(dec("1500.00")) {
		t.Fatalf("unexpected totals: %v / %v", tb.TotalDebit, tb.TotalCredit)
	}
	if !tb.IsBalanced {
		t.Fatal("expected a balanced trial balance")
	}

	tb = BuildTrialBalance(activity, true)
	if len(tb.Rows) != 4 {
		t.Fatalf("expected zero-balance row to be kept, got %d rows", len(tb.Rows))
	}
}

func TestBuildTrialBalanceUnbalancedData(t *testing.T) {
	tb := BuildTrialBalance([]AccountActivity{
		{Number: "512000", Name: "Bank", ClassCode: "5", Balance: dec("10.00")},
	}, false)
	if tb.IsBalanced {
		t.Fatal("one-sided activity must report is_balanced=false")
	}
}

func TestBuildIncomeStatement(t *testing.T) {
	activity := []AccountActivity{
		{Number: "706000", Name: "Services", ClassCode: "7", Balance: dec("-2000.00")},
		{Number: "701000", Name: "Sales", ClassCode: "7", Balance: dec("-500.00")},
		{Number: "606300", Name: "Supplies", ClassCode: "6", Balance: dec("800.00")},
		{Number: "512000", Name: "Bank", ClassCode: "5", Balance: dec("1700.00")},
		{Number: "707000", Name: "Goods", ClassCode: "7", Balance: decimal.Zero},
	}

	is := BuildIncomeStatement(activity)
	if len(is.Revenues) != 2 || len(is.Expenses) != 1 {
		t.Fatalf("unexpected row counts: %d revenues, %d expenses", len(is.Revenues), len(is.Expenses))
	}
	if is.Revenues[0].AccountNumber != "701000" {
		t.Fatalf("revenues not sorted: %s first", is.Revenues[0].AccountNumber)
	}
	if !is.Revenues[1].Amount.Equal(dec("2000.00")) {
		t.Fatalf("revenue balance not negated: %v", is.Revenues[1].Amount)
	}
	if !is.TotalRevenue.Equal(dec("2500.00")) || !is.TotalExpenses.Equal(dec("800.00")) {
		t.Fatalf("unexpected totals: %v / %v", is.TotalRevenue, is.TotalExpenses)
	}
	if !is.NetIncome.Equal(dec("1700.00")) {
		t.Fatalf("unexpected net income: %v", is.NetIncome)
	}
}

func TestBuildBalanceSheet(t *testing.T) {
	activity := []AccountActivity{
		{Number: "512000", Name: "Bank", ClassCode: "5", IsBalanceSheet: true, Balance: dec("1700.00")},
		{Number: "401000", Name: "Suppliers", ClassCode: "4", IsBalanceSheet: true, Balance: dec("-500.00")},
		{Number: "101000", Name: "Capital", ClassCode: "1", IsBalanceSheet: true, Balance: dec("-1000.00")},
		{Number: "606300", Name: "Supplies", ClassCode: "6", IsBalanceSheet: false, Balance: dec("800.00")},
	}
	netIncome := dec("200.00")

	bs := BuildBalanceSheet(activity, netIncome)
	if len(bs.Assets) != 1 || bs.Assets[0].AccountNumber != "512000" {
		t.Fatalf("unexpected assets: %+v", bs.Assets)
	}
	if !bs.TotalAssets.Equal(dec("1700.00")) {
		t.Fatalf("unexpected total assets: %v", bs.TotalAssets)
	}
	// Class 1 credit balances count as both liability and equity.
	if len(bs.Liabilities) != 2 {
		t.Fatalf("unexpected liabilities: %+v", bs.Liabilities)
	}
	if !bs.TotalLiabilities.Equal(dec("1500.00")) {
		t.Fatalf("unexpected total liabilities: %v", bs.TotalLiabilities)
	}
	if len(bs.Equity) != 1 || !bs.TotalEquity.Equal(dec("1000.00")) {
		t.Fatalf("unexpected equity: %+v total %v", bs.Equity, bs.TotalEquity)
	}
	if !bs.RetainedEarnings.Equal(netIncome) {
		t.Fatalf("unexpected retained earnings: %v", bs.RetainedEarnings)
	}
	if !bs.TotalEquityWithEarnings.Equal(dec("1200.00")) {
		t.Fatalf("unexpected equity with earnings: %v", bs.TotalEquityWithEarnings)
	}
}

func TestBuildBalanceSheetClassOneDebitBalance(t *testing.T) {
	// A class 1 account carrying a debit balance (e.g. uncalled capital) is
	// an asset AND a negative equity row; it must not vanish from equity.
	activity := []AccountActivity{
		{Number: "101000", Name: "Capital", ClassCode: "1", IsBalanceSheet: true, Balance: dec("-1000.00")},
		{Number: "109000", Name: "Uncalled capital", ClassCode: "1", IsBalanceSheet: true, Balance: dec("300.00")},
		{Number: "512000", Name: "Bank", ClassCode: "5", IsBalanceSheet: true, Balance: dec("700.00")},
	}

	bs := BuildBalanceSheet(activity, dec("0.00"))
	if len(bs.Assets) != 2 || !bs.TotalAssets.Equal(dec("1000.00")) {
		t.Fatalf("unexpected assets: %+v total %v", bs.Assets, bs.TotalAssets)
	}
	if len(bs.Equity) != 2 {
		t.Fatalf("expected both class 1 accounts in equity, got %+v", bs.Equity)
	}
	if !bs.Equity[1].Amount.Equal(dec("-300.00")) {
		t.Fatalf("debit class 1 balance should be negative equity, got %v", bs.Equity[1].Amount)
	}
	if !bs.TotalEquity.Equal(dec("700.00")) {
		t.Fatalf("unexpected total equity: %v", bs.TotalEquity)
	}
}

func TestBuildGeneralLedger(t *testing.T) {
	feb := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := []LineRow{
		{EntryID: 2, EntryNumber: "JE-000002", EntryDate: feb, JournalCode: "BNK", LineNumber: 1, AccountNumber: "512000", IsDebit: true, Amount: dec("50.00")},
		{EntryID: 1, EntryNumber: "JE-000001", EntryDate: jan, JournalCode: "OD", LineNumber: 2, AccountNumber: "706000", IsDebit: false, Amount: dec("100.00")},
		{EntryID: 1, EntryNumber: "JE-000001", EntryDate: jan, JournalCode: "OD", LineNumber: 1, AccountNumber: "411000", IsDebit: true, Amount: dec("100.00")},
		{EntryID: 2, EntryNumber: "JE-000002", EntryDate: feb, JournalCode: "BNK", LineNumber: 2, AccountNumber: "411000", IsDebit: false, Amount: dec("50.00")},
	}

	gl := BuildGeneralLedger(rows)
	if len(gl.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(gl.Entries))
	}
	if gl.Entries[0].EntryNumber != "JE-000001" {
		t.Fatalf("entries not ordered by date: %s first", gl.Entries[0].EntryNumber)
	}
	if gl.Entries[0].Lines[0].LineNumber != 1 || gl.Entries[0].Lines[1].LineNumber != 2 {
		t.Fatalf("lines not ordered: %+v", gl.Entries[0].Lines)
	}
	if !gl.TotalDebit.Equal(dec("150.00")) || !gl.TotalCredit.Equal(dec("150.00")) {
		t.Fatalf("unexpected totals: %v / %v", gl.TotalDebit, gl.TotalCredit)
	}
}
