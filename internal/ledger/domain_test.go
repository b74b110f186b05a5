package ledger

import (
	"strings"
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

func TestEntryTotalsAndBalance(t *testing.T) {
	entry := Entry{Lines: []Line{
		{IsDebit: true, Amount: dec("100.10")},
		{IsDebit: true, Amount: dec("0.90")},
		{IsDebit: false, Amount: dec("101.00")},
	}}
	if !entry.TotalDebit().Equal(dec("101.00")) {
		t.Fatalf("unexpected debit total: %v", entry.TotalDebit())
	}
	if !entry.TotalCredit().Equal(dec("101.00")) {
		t.Fatalf("unexpected credit total: %v", entry.TotalCredit())
	}
	if !entry.IsBalanced() {
		t.Fatal("expected balanced entry")
	}

	entry.Lines[2].Amount = dec("101.01")
	if entry.IsBalanced() {
		t.Fatal("one cent off must not balance")
	}
}

func TestCreateInputValidate(t *testing.T) {
	base := CreateInput{
		EntryDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		JournalID:    1,
		FiscalYearID: 1,
		Lines: []LineInput{
			{AccountID: 1, IsDebit: true, Amount: dec("10.00")},
			{AccountID: 2, IsDebit: false, Amount: dec("10.00")},
		},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	// An unbalanced draft is still creatable.
	unbalanced := base
	unbalanced.Lines = []LineInput{{AccountID: 1, IsDebit: true, Amount: dec("10.00")}}
	if err := unbalanced.Validate(); err != nil {
		t.Fatalf("unbalanced draft rejected: %v", err)
	}

	missingJournal := base
	missingJournal.JournalID = 0
	if err := missingJournal.Validate(); err == nil {
		t.Fatal("missing journal accepted")
	}

	zeroAmount := base
	zeroAmount.Lines = []LineInput{{AccountID: 1, IsDebit: true, Amount: decimal.Zero}}
	if err := zeroAmount.Validate(); err == nil {
		t.Fatal("zero amount accepted")
	}

	negative := base
	negative.Lines = []LineInput{{AccountID: 1, IsDebit: true, Amount: dec("-5.00")}}
	if err := negative.Validate(); err == nil {
		t.Fatal("negative amount accepted")
	}

	tooPrecise := base
	tooPrecise.Lines = []LineInput{{AccountID: 1, IsDebit: true, Amount: dec("10.001")}}
	if err := tooPrecise.Validate(); err == nil {
		t.Fatal("sub-cent amount accepted")
	}
}

func TestReverseLinesMirrorsOriginal(t *testing.T) {
	aux := "FOU"
	original := Entry{
		EntryNumber: "JE-000042",
		Reference:   "March invoices",
		Lines: []Line{
			{LineNumber: 1, AccountID: 10, IsDebit: true, Amount: dec("50.00"), Description: "supplies"},
			{LineNumber: 3, AccountID: 20, IsDebit: false, Amount: dec("50.00"), AuxiliaryAccountType: &aux},
		},
	}

	lines := reverseLines(original)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	// Line numbers survive as-is, gaps included.
	if lines[0].LineNumber != 1 || lines[1].LineNumber != 3 {
		t.Fatalf("line numbers not preserved: %d, %d", lines[0].LineNumber, lines[1].LineNumber)
	}
	if lines[0].IsDebit || !lines[1].IsDebit {
		t.Fatalf("debit flags not flipped: %+v", lines)
	}
	if lines[0].Description != "Reversal of JE-000042-1: supplies" {
		t.Fatalf("unexpected description: %q", lines[0].Description)
	}
	if lines[1].AuxiliaryAccountType == nil || *lines[1].AuxiliaryAccountType != "FOU" {
		t.Fatal("auxiliary account lost on reversal")
	}
	if ref := reversalReference(original); ref != "Reversal of JE-000042: March invoices" {
		t.Fatalf("unexpected reference: %q", ref)
	}
}

func TestReversalReferenceEmptyOriginal(t *testing.T) {
	ref := reversalReference(Entry{EntryNumber: "JE-000007"})
	if !strings.HasPrefix(ref, "Reversal of JE-000007:") {
		t.Fatalf("unexpected reference: %q", ref)
	}
}
