package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	_ "github.com/meridian-erp/meridian-erp/testing"
)

// memRepo is an in-memory RepositoryPort/TxRepository pair backing the service
// tests. WithTx runs the callback against the same store with no isolation.
type memRepo struct {
	entries map[int64]*Entry
	nextID  int64
	nextSeq int64
}

func newMemRepo() *memRepo {
	return &memRepo{entries: map[int64]*Entry{}, nextID: 0, nextSeq: 41}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memRepo) GetEntry(_ context.Context, id int64) (Entry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, id)
	}
	return *entry, nil
}

func (m *memRepo) ListEntries(_ context.Context, filter ListFilter) ([]Entry, int, error) {
	out := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.Status != nil && entry.Status != *filter.Status {
			continue
		}
		if filter.JournalID != nil && entry.JournalID != *filter.JournalID {
			continue
		}
		if filter.FiscalYearID != nil && entry.FiscalYearID != *filter.FiscalYearID {
			continue
		}
		out = append(out, *entry)
	}
	return out, len(out), nil
}

func (m *memRepo) NextEntryNumber(context.Context) (int64, error) {
	m.nextSeq++
	return m.nextSeq, nil
}

func (m *memRepo) InsertEntry(_ context.Context, in CreateInput, number string, status EntryStatus) (Entry, error) {
	m.nextID++
	entry := Entry{
		ID:               m.nextID,
		EntryNumber:      number,
		EntryDate:        in.EntryDate,
		Reference:        in.Reference,
		Status:           status,
		IsOpeningBalance: in.IsOpeningBalance,
		IsClosingEntry:   in.IsClosingEntry,
		JournalID:        in.JournalID,
		FiscalYearID:     in.FiscalYearID,
		SourceDocument:   in.SourceDocument,
		SourceDocumentID: in.SourceDocumentID,
	}
	m.entries[entry.ID] = &entry
	return entry, nil
}

func (m *memRepo) InsertReversingEntry(ctx context.Context, in CreateInput, number string, originalID int64) (Entry, error) {
	entry, err := m.InsertEntry(ctx, in, number, StatusDraft)
	if err != nil {
		return Entry{}, err
	}
	entry.IsReversingEntry = true
	entry.OriginalEntryID = &originalID
	m.entries[entry.ID] = &entry
	return entry, nil
}

func (m *memRepo) InsertLines(_ context.Context, entryID int64, lines []Line) error {
	entry, ok := m.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrEntryNotFound, entryID)
	}
	entry.Lines = append(entry.Lines, lines...)
	return nil
}

func (m *memRepo) GetEntryForUpdate(ctx context.Context, id int64) (Entry, error) {
	return m.GetEntry(ctx, id)
}

func (m *memRepo) UpdateStatus(_ context.Context, id int64, status EntryStatus) error {
	entry, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrEntryNotFound, id)
	}
	entry.Status = status
	return nil
}

func (m *memRepo) MarkPosted(_ context.Context, id int64, postingDate time.Time) error {
	entry, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrEntryNotFound, id)
	}
	entry.Status = StatusPosted
	entry.PostingDate = &postingDate
	return nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func newTestService(t *testing.T) (*Service, *memRepo, *countingInvalidator) {
	t.Helper()
	repo := newMemRepo()
	inv := &countingInvalidator{}
	svc := NewService(repo, inv, slog.Default())
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) })
	return svc, repo, inv
}

func balancedInput() CreateInput {
	return CreateInput{
		EntryDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Reference:    "March invoices",
		JournalID:    1,
		FiscalYearID: 1,
		Lines: []LineInput{
			{AccountID: 100, IsDebit: true, Amount: dec("120.00"), Description: "supplies"},
			{AccountID: 200, IsDebit: false, Amount: dec("120.00")},
		},
	}
}

func TestCreateAssignsNumberAndLineOrder(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.EntryNumber != "JE-000042" {
		t.Fatalf("entry number = %q, want JE-000042", entry.EntryNumber)
	}
	if entry.Status != StatusDraft {
		t.Fatalf("status = %s, want draft", entry.Status)
	}
	if len(entry.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(entry.Lines))
	}
	for idx, line := range entry.Lines {
		if line.LineNumber != idx+1 {
			t.Fatalf("line %d numbered %d", idx, line.LineNumber)
		}
	}
}

func TestCreateKeepsExplicitNumber(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := balancedInput()
	in.EntryNumber = "OD-2024-007"
	entry, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.EntryNumber != "OD-2024-007" {
		t.Fatalf("entry number = %q", entry.EntryNumber)
	}
}

func TestCreateAllowsUnbalancedDraft(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := balancedInput()
	in.Lines[1].Amount = dec("90.00")
	entry, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.IsBalanced() {
		t.Fatal("expected unbalanced draft")
	}
}

func TestValidateRequiresBalance(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := balancedInput()
	in.Lines[1].Amount = dec("90.00")
	entry, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Validate(context.Background(), entry.ID)
	if !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("err = %v, want ErrUnbalanced", err)
	}
}

func TestValidateTransitionsDraft(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	validated, err := svc.Validate(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if validated.Status != StatusValidated {
		t.Fatalf("status = %s", validated.Status)
	}

	// A second validation must fail: the entry is no longer a draft.
	if _, err := svc.Validate(context.Background(), entry.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestPostStampsDateAndInvalidatesReports(t *testing.T) {
	svc, _, inv := newTestService(t)

	entry, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Validate(context.Background(), entry.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}

	posted, err := svc.Post(context.Background(), entry.ID, nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if posted.Status != StatusPosted {
		t.Fatalf("status = %s", posted.Status)
	}
	if posted.PostingDate == nil || !posted.PostingDate.Equal(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("posting date = %v, want clock value", posted.PostingDate)
	}
	if inv.calls != 1 {
		t.Fatalf("invalidator calls = %d, want 1", inv.calls)
	}
}

func TestPostHonoursExplicitDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Validate(context.Background(), entry.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}

	want := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	posted, err := svc.Post(context.Background(), entry.ID, &want)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if posted.PostingDate == nil || !posted.PostingDate.Equal(want) {
		t.Fatalf("posting date = %v, want %v", posted.PostingDate, want)
	}
}

func TestPostRejectsDraft(t *testing.T) {
	svc, _, inv := newTestService(t)

	entry, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Post(context.Background(), entry.ID, nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if inv.calls != 0 {
		t.Fatalf("invalidator called on failed post")
	}
}

func TestCancelRejectsPosted(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Validate(context.Background(), entry.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := svc.Post(context.Background(), entry.ID, nil); err != nil {
		t.Fatalf("post: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), entry.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestCancelDraftAndValidated(t *testing.T) {
	svc, _, _ := newTestService(t)

	draft, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cancelled, err := svc.Cancel(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("cancel draft: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("status = %s", cancelled.Status)
	}

	// Cancelling twice is rejected.
	if _, err := svc.Cancel(context.Background(), draft.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestReverseCreatesMirroredDraft(t *testing.T) {
	svc, repo, _ := newTestService(t)

	entry, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Validate(context.Background(), entry.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := svc.Post(context.Background(), entry.ID, nil); err != nil {
		t.Fatalf("post: %v", err)
	}

	reversal, err := svc.Reverse(context.Background(), entry.ID, nil)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if !reversal.IsReversingEntry {
		t.Fatal("expected reversing entry flag")
	}
	if reversal.OriginalEntryID == nil || *reversal.OriginalEntryID != entry.ID {
		t.Fatalf("original entry id = %v", reversal.OriginalEntryID)
	}
	if reversal.Status != StatusDraft {
		t.Fatalf("status = %s, want draft", reversal.Status)
	}
	if reversal.EntryNumber != "JE-000043" {
		t.Fatalf("entry number = %q", reversal.EntryNumber)
	}
	if reversal.Reference != "Reversal of JE-000042: March invoices" {
		t.Fatalf("reference = %q", reversal.Reference)
	}
	if len(reversal.Lines) != 2 {
		t.Fatalf("lines = %d", len(reversal.Lines))
	}
	if reversal.Lines[0].IsDebit || !reversal.Lines[1].IsDebit {
		t.Fatal("reversal lines did not flip debit flags")
	}
	if !reversal.IsBalanced() {
		t.Fatal("reversal must balance")
	}

	// The original is untouched: still posted, still linked from the reversal.
	original, err := repo.GetEntry(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("get original: %v", err)
	}
	if original.Status != StatusPosted {
		t.Fatalf("original status = %s", original.Status)
	}
}

func TestReverseRejectsUnposted(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Reverse(context.Background(), entry.ID, nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.Create(context.Background(), balancedInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), balancedInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Validate(context.Background(), first.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}

	status := StatusValidated
	entries, page, err := svc.List(context.Background(), ListFilter{Status: &status})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != first.ID {
		t.Fatalf("filtered list = %+v", entries)
	}
	if page.Total != 1 || page.Page != 1 {
		t.Fatalf("pagination = %+v", page)
	}
}
