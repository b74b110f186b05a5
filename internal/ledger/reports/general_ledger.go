package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// GeneralLedgerLine is one posted entry line enriched with its account.
type GeneralLedgerLine struct {
	LineNumber    int             `json:"line_number"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	IsDebit       bool            `json:"is_debit"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

type GeneralLedgerEntry struct {
	EntryNumber string              `json:"entry_number"`
	EntryDate   time.Time           `json:"entry_date"`
	JournalCode string              `json:"journal_code"`
	Reference   string              `json:"reference,omitempty"`
	Lines       []GeneralLedgerLine `json:"lines"`
}

type GeneralLedger struct {
	Entries     []GeneralLedgerEntry `json:"entries"`
	TotalDebit  decimal.Decimal      `json:"total_debit"`
	TotalCredit decimal.Decimal      `json:"total_credit"`
}

// LineRow is one flat row of posted activity as loaded from storage.
type LineRow struct {
	EntryID     int64
	EntryNumber string
	EntryDate   time.Time
	JournalCode string
	Reference   string

	LineNumber    int
	AccountNumber string
	AccountName   string
	IsDebit       bool
	Amount        decimal.Decimal
	Description   string
}

// BuildGeneralLedger groups flat line rows back into their entries, ordered
// by entry date then entry number, with lines in their stored order.
func BuildGeneralLedger(rows []LineRow) GeneralLedger {
	gl := GeneralLedger{
		Entries:     []GeneralLedgerEntry{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	index := make(map[int64]int, len(rows))
	for _, r := range rows {
		i, ok := index[r.EntryID]
		if !ok {
			i = len(gl.Entries)
			index[r.EntryID] = i
			gl.Entries = append(gl.Entries, GeneralLedgerEntry{
				EntryNumber: r.EntryNumber,
				EntryDate:   r.EntryDate,
				JournalCode: r.JournalCode,
				Reference:   r.Reference,
			})
		}
		gl.Entries[i].Lines = append(gl.Entries[i].Lines, GeneralLedgerLine{
			LineNumber:    r.LineNumber,
			AccountNumber: r.AccountNumber,
			AccountName:   r.AccountName,
			IsDebit:       r.IsDebit,
			Amount:        r.Amount,
			Description:   r.Description,
		})
		if r.IsDebit {
			gl.TotalDebit = gl.TotalDebit.Add(r.Amount)
		} else {
			gl.TotalCredit = gl.TotalCredit.Add(r.Amount)
		}
	}
	sort.SliceStable(gl.Entries, func(i, j int) bool {
		if !gl.Entries[i].EntryDate.Equal(gl.Entries[j].EntryDate) {
			return gl.Entries[i].EntryDate.Before(gl.Entries[j].EntryDate)
		}
		return gl.Entries[i].EntryNumber < gl.Entries[j].EntryNumber
	})
	for i := range gl.Entries {
		sort.Slice(gl.Entries[i].Lines, func(a, b int) bool {
			return gl.Entries[i].Lines[a].LineNumber < gl.Entries[i].Lines[b].LineNumber
		})
	}
	return gl
}
