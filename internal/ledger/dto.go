package ledger

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

var validate = validator.New()

type linePayload struct {
	AccountID            int64   `json:"account_id" validate:"required"`
	IsDebit              bool    `json:"is_debit"`
	Amount               string  `json:"amount" validate:"required"`
	Description          string  `json:"description"`
	AuxiliaryAccountType *string `json:"auxiliary_account_type"`
	AuxiliaryAccountID   *string `json:"auxiliary_account_id"`
}

type createPayload struct {
	EntryNumber      string        `json:"entry_number"`
	EntryDate        string        `json:"entry_date" validate:"required"`
	Reference        string        `json:"reference"`
	JournalID        int64         `json:"journal_id" validate:"required"`
	FiscalYearID     int64         `json:"fiscal_year_id" validate:"required"`
	IsOpeningBalance bool          `json:"is_opening_balance"`
	IsClosingEntry   bool          `json:"is_closing_entry"`
	SourceDocument   string        `json:"source_document"`
	SourceDocumentID string        `json:"source_document_id"`
	Lines            []linePayload `json:"lines" validate:"dive"`
}

func (p createPayload) toInput() (CreateInput, error) {
	if err := validate.Struct(p); err != nil {
		return CreateInput{}, err
	}
	date, err := time.Parse("2006-01-02", p.EntryDate)
	if err != nil {
		return CreateInput{}, fmt.Errorf("entry_date must be YYYY-MM-DD")
	}
	lines := make([]LineInput, 0, len(p.Lines))
	for idx, line := range p.Lines {
		amount, err := decimal.NewFromString(line.Amount)
		if err != nil {
			return CreateInput{}, fmt.Errorf("line %d: invalid amount %q", idx+1, line.Amount)
		}
		lines = append(lines, LineInput{
			AccountID:            line.AccountID,
			IsDebit:              line.IsDebit,
			Amount:               amount,
			Description:          line.Description,
			AuxiliaryAccountType: line.AuxiliaryAccountType,
			AuxiliaryAccountID:   line.AuxiliaryAccountID,
		})
	}
	return CreateInput{
		EntryNumber:      p.EntryNumber,
		EntryDate:        date,
		Reference:        p.Reference,
		JournalID:        p.JournalID,
		FiscalYearID:     p.FiscalYearID,
		IsOpeningBalance: p.IsOpeningBalance,
		IsClosingEntry:   p.IsClosingEntry,
		SourceDocument:   p.SourceDocument,
		SourceDocumentID: p.SourceDocumentID,
		Lines:            lines,
	}, nil
}

type listResponse struct {
	Entries    []entryResponse   `json:"entries"`
	Pagination shared.Pagination `json:"pagination"`
}

type lineResponse struct {
	ID                   int64   `json:"id"`
	LineNumber           int     `json:"line_number"`
	AccountID            int64   `json:"account_id"`
	AccountNumber        string  `json:"account_number"`
	IsDebit              bool    `json:"is_debit"`
	Amount               string  `json:"amount"`
	Description          string  `json:"description"`
	AuxiliaryAccountType *string `json:"auxiliary_account_type,omitempty"`
	AuxiliaryAccountID   *string `json:"auxiliary_account_id,omitempty"`
}

type entryResponse struct {
	ID               int64          `json:"id"`
	EntryNumber      string         `json:"entry_number"`
	EntryDate        string         `json:"entry_date"`
	PostingDate      *string        `json:"posting_date"`
	Reference        string         `json:"reference"`
	Status           EntryStatus    `json:"status"`
	IsOpeningBalance bool           `json:"is_opening_balance"`
	IsClosingEntry   bool           `json:"is_closing_entry"`
	IsReversingEntry bool           `json:"is_reversing_entry"`
	OriginalEntryID  *int64         `json:"original_entry_id,omitempty"`
	SourceDocument   string         `json:"source_document,omitempty"`
	SourceDocumentID string         `json:"source_document_id,omitempty"`
	JournalID        int64          `json:"journal_id"`
	FiscalYearID     int64          `json:"fiscal_year_id"`
	TotalDebit       string         `json:"total_debit"`
	TotalCredit      string         `json:"total_credit"`
	IsBalanced       bool           `json:"is_balanced"`
	Lines            []lineResponse `json:"lines"`
}

func toEntryResponse(e Entry) entryResponse {
	var postingDate *string
	if e.PostingDate != nil {
		formatted := e.PostingDate.Format("2006-01-02")
		postingDate = &formatted
	}
	lines := make([]lineResponse, 0, len(e.Lines))
	for _, line := range e.Lines {
		lines = append(lines, lineResponse{
			ID:                   line.ID,
			LineNumber:           line.LineNumber,
			AccountID:            line.AccountID,
			AccountNumber:        line.AccountNumber,
			IsDebit:              line.IsDebit,
			Amount:               line.Amount.StringFixed(2),
			Description:          line.Description,
			AuxiliaryAccountType: line.AuxiliaryAccountType,
			AuxiliaryAccountID:   line.AuxiliaryAccountID,
		})
	}
	return entryResponse{
		ID:               e.ID,
		EntryNumber:      e.EntryNumber,
		EntryDate:        e.EntryDate.Format("2006-01-02"),
		PostingDate:      postingDate,
		Reference:        e.Reference,
		Status:           e.Status,
		IsOpeningBalance: e.IsOpeningBalance,
		IsClosingEntry:   e.IsClosingEntry,
		IsReversingEntry: e.IsReversingEntry,
		OriginalEntryID:  e.OriginalEntryID,
		SourceDocument:   e.SourceDocument,
		SourceDocumentID: e.SourceDocumentID,
		JournalID:        e.JournalID,
		FiscalYearID:     e.FiscalYearID,
		TotalDebit:       e.TotalDebit().StringFixed(2),
		TotalCredit:      e.TotalCredit().StringFixed(2),
		IsBalanced:       e.IsBalanced(),
		Lines:            lines,
	}
}
