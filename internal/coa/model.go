// Package coa models the chart of accounts hierarchy:
// class (1 digit) -> chapter (2 digits) -> section (3 digits) -> account.
package coa

import "time"

// AccountingClass is the root level of the chart of accounts (codes 1-9).
type AccountingClass struct {
	ID        int64
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountingChapter subdivides a class with a two digit code.
type AccountingChapter struct {
	ID        int64
	ClassID   int64
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountingSection subdivides a chapter with a three digit code.
type AccountingSection struct {
	ID        int64
	ChapterID int64
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GeneralLedgerAccount is the leaf level of the chart of accounts.
// SectionID may be nil for legacy accounts imported without a hierarchy link;
// classification then falls back to account number prefixes.
type GeneralLedgerAccount struct {
	ID                      int64
	SectionID               *int64
	AccountNumber           string
	ShortName               string
	FullName                string
	IsBalanceSheet          bool
	BudgetAccountCode       *string
	RecoveryStatus          *string
	FinancialStatementGroup *string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// ClassCode returns the accounting class code derived from the account number.
func (a GeneralLedgerAccount) ClassCode() string {
	if a.AccountNumber == "" {
		return ""
	}
	return a.AccountNumber[:1]
}

// ChapterCode returns the accounting chapter code derived from the account number.
func (a GeneralLedgerAccount) ChapterCode() string {
	if len(a.AccountNumber) < 2 {
		return ""
	}
	return a.AccountNumber[:2]
}

// SectionCode returns the accounting section code derived from the account number.
func (a GeneralLedgerAccount) SectionCode() string {
	if len(a.AccountNumber) < 3 {
		return ""
	}
	return a.AccountNumber[:3]
}
