package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow splits one account's signed balance into debit and credit
// columns. Exactly one of the two is non-zero unless the balance is zero.
type TrialBalanceRow struct {
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	IsBalanced  bool              `json:"is_balanced"`
}

// BuildTrialBalance lists every account ordered by account number with its
// balance split into debit and credit columns. Zero-balance accounts are
// omitted unless includeZero is set. A trial balance over a consistent
// ledger always balances; a mismatch means corrupted data.
func BuildTrialBalance(activity []AccountActivity, includeZero bool) TrialBalance {
	tb := TrialBalance{
		Rows:        make([]TrialBalanceRow, 0, len(activity)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, a := range activity {
		if a.Balance.IsZero() && !includeZero {
			continue
		}
		row := TrialBalanceRow{
			AccountNumber: a.Number,
			AccountName:   a.Name,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
		}
		if a.Balance.IsPositive() {
			row.Debit = a.Balance
		} else if a.Balance.IsNegative() {
			row.Credit = a.Balance.Neg()
		}
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].AccountNumber < tb.Rows[j].AccountNumber })
	tb.IsBalanced = tb.TotalDebit.Equal(tb.TotalCredit)
	return tb
}
