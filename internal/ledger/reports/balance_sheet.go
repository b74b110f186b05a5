package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

type BalanceSheetRow struct {
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	Amount        decimal.Decimal `json:"amount"`
}

type BalanceSheet struct {
	Assets      []BalanceSheetRow `json:"assets"`
	Liabilities []BalanceSheetRow `json:"liabilities"`
	Equity      []BalanceSheetRow `json:"equity"`

	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`

	// RetainedEarnings is the period's net income, folded into equity.
	RetainedEarnings        decimal.Decimal `json:"retained_earnings"`
	TotalEquityWithEarnings decimal.Decimal `json:"total_equity_with_earnings"`
	IsBalanced              bool            `json:"is_balanced"`
}

// BuildBalanceSheet classifies balance-sheet accounts by chart class and
// balance sign: debit balances in classes 1 through 5 are assets, credit
// balances in classes 1, 4 and 5 are liabilities, and every non-zero class 1
// balance also counts as equity at its negated value. A class 1 debit
// balance therefore shows up both as an asset and as a negative equity row,
// keeping the accounting identity intact. The current period's net income is
// added to equity as retained earnings before checking that identity.
func BuildBalanceSheet(activity []AccountActivity, netIncome decimal.Decimal) BalanceSheet {
	bs := BalanceSheet{
		Assets:           []BalanceSheetRow{},
		Liabilities:      []BalanceSheetRow{},
		Equity:           []BalanceSheetRow{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		RetainedEarnings: netIncome,
	}
	for _, a := range activity {
		if !a.IsBalanceSheet || a.Balance.IsZero() {
			continue
		}
		row := BalanceSheetRow{AccountNumber: a.Number, AccountName: a.Name}
		if a.Balance.IsPositive() {
			if assetClasses[a.ClassCode] {
				row.Amount = a.Balance
				bs.Assets = append(bs.Assets, row)
				bs.TotalAssets = bs.TotalAssets.Add(row.Amount)
			}
		} else if liabilityClasses[a.ClassCode] {
			row.Amount = a.Balance.Neg()
			bs.Liabilities = append(bs.Liabilities, row)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(row.Amount)
		}
		if a.ClassCode == classEquity {
			equity := BalanceSheetRow{AccountNumber: a.Number, AccountName: a.Name, Amount: a.Balance.Neg()}
			bs.Equity = append(bs.Equity, equity)
			bs.TotalEquity = bs.TotalEquity.Add(equity.Amount)
		}
	}
	for _, rows := range [][]BalanceSheetRow{bs.Assets, bs.Liabilities, bs.Equity} {
		rows := rows
		sort.Slice(rows, func(i, j int) bool { return rows[i].AccountNumber < rows[j].AccountNumber })
	}
	bs.TotalEquityWithEarnings = bs.TotalEquity.Add(bs.RetainedEarnings)
	bs.IsBalanced = bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquityWithEarnings))
	return bs
}
