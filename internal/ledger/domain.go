// Package ledger owns the accounting entry lifecycle: draft entries are
// validated, posted, cancelled, or reversed, and posted data becomes immutable.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus enumerates accounting entry lifecycle values.
type EntryStatus string

const (
	StatusDraft     EntryStatus = "draft"
	StatusValidated EntryStatus = "validated"
	StatusPosted    EntryStatus = "posted"
	StatusCancelled EntryStatus = "cancelled"
)

// Entry is one double-entry transaction in a journal.
type Entry struct {
	ID               int64
	EntryNumber      string
	EntryDate        time.Time
	PostingDate      *time.Time
	Reference        string
	Status           EntryStatus
	IsOpeningBalance bool
	IsClosingEntry   bool
	IsReversingEntry bool
	OriginalEntryID  *int64
	SourceDocument   string
	SourceDocumentID string
	JournalID        int64
	FiscalYearID     int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Lines            []Line
}

// Line is one debit or credit movement within an entry. The sign is carried by
// IsDebit; Amount is always strictly positive.
type Line struct {
	ID                   int64
	EntryID              int64
	LineNumber           int
	AccountID            int64
	AccountNumber        string
	IsDebit              bool
	Amount               decimal.Decimal
	Description          string
	AuxiliaryAccountType *string
	AuxiliaryAccountID   *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TotalDebit sums the amounts of all debit lines.
func (e Entry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		if line.IsDebit {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// TotalCredit sums the amounts of all credit lines.
func (e Entry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		if !line.IsDebit {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// IsBalanced reports whether debits equal credits at full decimal precision.
func (e Entry) IsBalanced() bool {
	return e.TotalDebit().Equal(e.TotalCredit())
}

// LineInput describes one line of a new entry.
type LineInput struct {
	AccountID            int64
	IsDebit              bool
	Amount               decimal.Decimal
	Description          string
	AuxiliaryAccountType *string
	AuxiliaryAccountID   *string
}

// CreateInput groups fields required to create a draft entry.
type CreateInput struct {
	EntryNumber      string
	EntryDate        time.Time
	Reference        string
	JournalID        int64
	FiscalYearID     int64
	IsOpeningBalance bool
	IsClosingEntry   bool
	SourceDocument   string
	SourceDocumentID string
	Lines            []LineInput
}

var (
	// ErrEntryNotFound indicates a missing entry.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrInvalidStatus indicates a transition not allowed from the current status.
	ErrInvalidStatus = errors.New("ledger: invalid status transition")
	// ErrUnbalanced indicates total debits differ from total credits.
	ErrUnbalanced = errors.New("ledger: entry is not balanced")
	// ErrUnknownAccount indicates a line references a nonexistent account.
	ErrUnknownAccount = errors.New("ledger: unknown account")
)

var hundred = decimal.NewFromInt(100)

// Validate ensures create input meets minimum criteria. Balance is NOT checked
// here; drafts may be created unbalanced and fixed before validation.
func (in CreateInput) Validate() error {
	if in.JournalID == 0 {
		return errors.New("ledger: journal required")
	}
	if in.FiscalYearID == 0 {
		return errors.New("ledger: fiscal year required")
	}
	if in.EntryDate.IsZero() {
		return errors.New("ledger: entry date required")
	}
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("ledger: line %d missing account", idx+1)
		}
		if !line.Amount.IsPositive() {
			return fmt.Errorf("ledger: line %d amount must be positive", idx+1)
		}
		if !line.Amount.Mul(hundred).Equal(line.Amount.Mul(hundred).Floor()) {
			return fmt.Errorf("ledger: line %d amount has more than 2 decimal places", idx+1)
		}
	}
	return nil
}

// reversalReference derives the reference of a reversing entry.
func reversalReference(original Entry) string {
	return fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Reference)
}

// reverseLines mirrors the original lines with is_debit flipped. Line numbers
// are preserved positionally, including any gaps, so downstream reports can
// match reversal lines to their originals.
func reverseLines(original Entry) []Line {
	out := make([]Line, 0, len(original.Lines))
	for _, line := range original.Lines {
		out = append(out, Line{
			LineNumber:           line.LineNumber,
			AccountID:            line.AccountID,
			IsDebit:              !line.IsDebit,
			Amount:               line.Amount,
			Description:          fmt.Sprintf("Reversal of %s-%d: %s", original.EntryNumber, line.LineNumber, line.Description),
			AuxiliaryAccountType: line.AuxiliaryAccountType,
			AuxiliaryAccountID:   line.AuxiliaryAccountID,
		})
	}
	return out
}
