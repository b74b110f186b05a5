package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetEntry(ctx context.Context, id int64) (Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]Entry, int, error)
}

// ReportInvalidator discards derived report data after the set of posted
// entries changes. Optional; a nil invalidator is a no-op.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ListFilter narrows entry listings. Page and PerPage are normalised by
// shared.NewPagination before the query runs.
type ListFilter struct {
	Status       *EntryStatus
	JournalID    *int64
	FiscalYearID *int64
	Page         int
	PerPage      int
}

// Service coordinates the entry lifecycle: create, validate, post, cancel, reverse.
type Service struct {
	repo       RepositoryPort
	invalidate ReportInvalidator
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo RepositoryPort, invalidate ReportInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, invalidate: invalidate, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create persists a new draft entry with its lines numbered 1..N in input
// order. No balance check is applied; drafts may be edited before validation.
func (s *Service) Create(ctx context.Context, input CreateInput) (Entry, error) {
	if err := input.Validate(); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number := input.EntryNumber
		if number == "" {
			seq, err := tx.NextEntryNumber(ctx)
			if err != nil {
				return err
			}
			number = fmt.Sprintf("JE-%06d", seq)
		}
		inserted, err := tx.InsertEntry(ctx, input, number, StatusDraft)
		if err != nil {
			return err
		}
		lines := make([]Line, 0, len(input.Lines))
		for idx, line := range input.Lines {
			lines = append(lines, Line{
				LineNumber:           idx + 1,
				AccountID:            line.AccountID,
				IsDebit:              line.IsDebit,
				Amount:               line.Amount,
				Description:          line.Description,
				AuxiliaryAccountType: line.AuxiliaryAccountType,
				AuxiliaryAccountID:   line.AuxiliaryAccountID,
			})
		}
		if err := tx.InsertLines(ctx, inserted.ID, lines); err != nil {
			return err
		}
		entry = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return s.repo.GetEntry(ctx, entry.ID)
}

// Get loads an entry with its lines.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// List returns one page of entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, shared.Pagination, error) {
	entries, total, err := s.repo.ListEntries(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Validate transitions a balanced draft entry to validated.
// The entry row is locked for the duration of the transaction so concurrent
// transitions cannot both win.
func (s *Service) Validate(ctx context.Context, id int64) (Entry, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetEntryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if entry.Status != StatusDraft {
			return fmt.Errorf("%w: cannot validate a %s entry", ErrInvalidStatus, entry.Status)
		}
		if !entry.IsBalanced() {
			return fmt.Errorf("%w: debits %s != credits %s", ErrUnbalanced,
				entry.TotalDebit().StringFixed(2), entry.TotalCredit().StringFixed(2))
		}
		return tx.UpdateStatus(ctx, id, StatusValidated)
	})
	if err != nil {
		return Entry{}, err
	}
	return s.repo.GetEntry(ctx, id)
}

// Post transitions a validated entry to posted and stamps the posting date
// (today when none is supplied). Posted entries are immutable afterwards;
// corrections go through Reverse.
func (s *Service) Post(ctx context.Context, id int64, postingDate *time.Time) (Entry, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetEntryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if entry.Status != StatusValidated {
			return fmt.Errorf("%w: only validated entries can be posted, entry is %s", ErrInvalidStatus, entry.Status)
		}
		date := s.now()
		if postingDate != nil {
			date = *postingDate
		}
		return tx.MarkPosted(ctx, id, date)
	})
	if err != nil {
		return Entry{}, err
	}
	s.invalidateReports(ctx)
	return s.repo.GetEntry(ctx, id)
}

// Cancel transitions a draft or validated entry to cancelled. Posted entries
// are never cancelled; the audit trail requires a reversing entry instead.
func (s *Service) Cancel(ctx context.Context, id int64) (Entry, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetEntryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if entry.Status == StatusPosted {
			return fmt.Errorf("%w: posted entries cannot be cancelled, create a reversing entry instead", ErrInvalidStatus)
		}
		if entry.Status == StatusCancelled {
			return fmt.Errorf("%w: entry already cancelled", ErrInvalidStatus)
		}
		return tx.UpdateStatus(ctx, id, StatusCancelled)
	})
	if err != nil {
		return Entry{}, err
	}
	return s.repo.GetEntry(ctx, id)
}

// Reverse creates a new draft entry that negates a posted entry line by line.
func (s *Service) Reverse(ctx context.Context, id int64, entryDate *time.Time) (Entry, error) {
	var reversal Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if original.Status != StatusPosted {
			return fmt.Errorf("%w: only posted entries can be reversed, entry is %s", ErrInvalidStatus, original.Status)
		}
		date := s.now()
		if entryDate != nil {
			date = *entryDate
		}
		seq, err := tx.NextEntryNumber(ctx)
		if err != nil {
			return err
		}
		input := CreateInput{
			EntryDate:        date,
			Reference:        reversalReference(original),
			JournalID:        original.JournalID,
			FiscalYearID:     original.FiscalYearID,
			SourceDocument:   original.SourceDocument,
			SourceDocumentID: original.SourceDocumentID,
		}
		inserted, err := tx.InsertReversingEntry(ctx, input, fmt.Sprintf("JE-%06d", seq), original.ID)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, reverseLines(original)); err != nil {
			return err
		}
		reversal = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return s.repo.GetEntry(ctx, reversal.ID)
}

func (s *Service) invalidateReports(ctx context.Context) {
	if s.invalidate == nil {
		return
	}
	if err := s.invalidate.Invalidate(ctx); err != nil && s.logger != nil {
		s.logger.Warn("report cache invalidation failed", slog.Any("error", err))
	}
}
