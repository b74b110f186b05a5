package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

type IncomeStatementRow struct {
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	Amount        decimal.Decimal `json:"amount"`
}

type IncomeStatement struct {
	Revenues      []IncomeStatementRow `json:"revenues"`
	Expenses      []IncomeStatementRow `json:"expenses"`
	TotalRevenue  decimal.Decimal      `json:"total_revenue"`
	TotalExpenses decimal.Decimal      `json:"total_expenses"`
	NetIncome     decimal.Decimal      `json:"net_income"`
}

// BuildIncomeStatement picks class 7 accounts as revenues and class 6 as
// expenses. Revenue accounts carry credit balances, so their signed balance
// is negated to report a positive figure. Zero-balance accounts are dropped
// and each side is sorted by account number independently.
func BuildIncomeStatement(activity []AccountActivity) IncomeStatement {
	is := IncomeStatement{
		Revenues:      []IncomeStatementRow{},
		Expenses:      []IncomeStatementRow{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, a := range activity {
		if a.Balance.IsZero() {
			continue
		}
		switch a.ClassCode {
		case classRevenue:
			amount := a.Balance.Neg()
			is.Revenues = append(is.Revenues, IncomeStatementRow{a.Number, a.Name, amount})
			is.TotalRevenue = is.TotalRevenue.Add(amount)
		case classExpense:
			is.Expenses = append(is.Expenses, IncomeStatementRow{a.Number, a.Name, a.Balance})
			is.TotalExpenses = is.TotalExpenses.Add(a.Balance)
		}
	}
	sort.Slice(is.Revenues, func(i, j int) bool { return is.Revenues[i].AccountNumber < is.Revenues[j].AccountNumber })
	sort.Slice(is.Expenses, func(i, j int) bool { return is.Expenses[i].AccountNumber < is.Expenses[j].AccountNumber })
	is.NetIncome = is.TotalRevenue.Sub(is.TotalExpenses)
	return is
}
