// Package reports builds financial statements from posted ledger activity.
// Builders are pure: they aggregate already-loaded rows and never touch the
// database, so the same code serves the HTTP layer and the integrity job.
package reports

import "github.com/shopspring/decimal"

// AccountActivity is one account's aggregated posted balance.
// Balance is signed: debit activity is positive, credit activity negative.
type AccountActivity struct {
	Number         string
	Name           string
	ClassCode      string
	IsBalanceSheet bool
	Balance        decimal.Decimal
}

// Chart of accounts class codes carrying report semantics.
// Classes 1-5 hold balance sheet accounts, 6 expenses, 7 revenues.
const (
	classEquity  = "1"
	classExpense = "6"
	classRevenue = "7"
)

var assetClasses = map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true}
var liabilityClasses = map[string]bool{"1": true, "4": true, "5": true}
