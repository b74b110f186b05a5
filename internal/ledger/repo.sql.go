package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Repository persists accounting entries and lines.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	NextEntryNumber(ctx context.Context) (int64, error)
	InsertEntry(ctx context.Context, in CreateInput, number string, status EntryStatus) (Entry, error)
	InsertReversingEntry(ctx context.Context, in CreateInput, number string, originalID int64) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []Line) error
	GetEntryForUpdate(ctx context.Context, id int64) (Entry, error)
	UpdateStatus(ctx context.Context, id int64, status EntryStatus) error
	MarkPosted(ctx context.Context, id int64, postingDate time.Time) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes fn within a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const entryColumns = `e.id, e.entry_number, e.entry_date, e.posting_date, e.reference, e.status,
e.is_opening_balance, e.is_closing_entry, e.is_reversing_entry, e.original_entry_id,
e.source_document, e.source_document_id, e.journal_id, e.fiscal_year_id, e.created_at, e.updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var status string
	err := row.Scan(&e.ID, &e.EntryNumber, &e.EntryDate, &e.PostingDate, &e.Reference, &status,
		&e.IsOpeningBalance, &e.IsClosingEntry, &e.IsReversingEntry, &e.OriginalEntryID,
		&e.SourceDocument, &e.SourceDocumentID, &e.JournalID, &e.FiscalYearID, &e.CreatedAt, &e.UpdatedAt)
	e.Status = EntryStatus(status)
	return e, err
}

func (r *txRepository) NextEntryNumber(ctx context.Context) (int64, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `SELECT nextval('accounting_entry_number_seq')`).Scan(&seq)
	return seq, err
}

func (r *txRepository) InsertEntry(ctx context.Context, in CreateInput, number string, status EntryStatus) (Entry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounting_entries
(entry_number, entry_date, reference, status, is_opening_balance, is_closing_entry, is_reversing_entry,
 source_document, source_document_id, journal_id, fiscal_year_id)
VALUES ($1,$2,$3,$4,$5,$6,false,$7,$8,$9,$10)
RETURNING `+entryColumnsBare, number, in.EntryDate, in.Reference, string(status),
		in.IsOpeningBalance, in.IsClosingEntry, in.SourceDocument, in.SourceDocumentID, in.JournalID, in.FiscalYearID)
	entry, err := scanEntry(row)
	if err != nil {
		return Entry{}, mapWriteError(err)
	}
	return entry, nil
}

func (r *txRepository) InsertReversingEntry(ctx context.Context, in CreateInput, number string, originalID int64) (Entry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounting_entries
(entry_number, entry_date, reference, status, is_opening_balance, is_closing_entry, is_reversing_entry,
 original_entry_id, source_document, source_document_id, journal_id, fiscal_year_id)
VALUES ($1,$2,$3,'draft',false,false,true,$4,$5,$6,$7,$8)
RETURNING `+entryColumnsBare, number, in.EntryDate, in.Reference, originalID,
		in.SourceDocument, in.SourceDocumentID, in.JournalID, in.FiscalYearID)
	entry, err := scanEntry(row)
	if err != nil {
		return Entry{}, mapWriteError(err)
	}
	return entry, nil
}

const entryColumnsBare = `id, entry_number, entry_date, posting_date, reference, status,
is_opening_balance, is_closing_entry, is_reversing_entry, original_entry_id,
source_document, source_document_id, journal_id, fiscal_year_id, created_at, updated_at`

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []Line) error {
	for _, line := range lines {
		_, err := r.tx.Exec(ctx, `INSERT INTO accounting_entry_lines
(entry_id, line_number, account_id, is_debit, amount, description, auxiliary_account_type, auxiliary_account_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			entryID, line.LineNumber, line.AccountID, line.IsDebit, line.Amount.StringFixed(2),
			line.Description, line.AuxiliaryAccountType, line.AuxiliaryAccountID)
		if err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, id int64) (Entry, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumnsBare+` FROM accounting_entries WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, id)
		}
		return Entry{}, err
	}
	lines, err := loadLines(ctx, r.tx, []int64{entry.ID})
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines[entry.ID]
	return entry, nil
}

func (r *txRepository) UpdateStatus(ctx context.Context, id int64, status EntryStatus) error {
	_, err := r.tx.Exec(ctx, `UPDATE accounting_entries SET status = $1, updated_at = now() WHERE id = $2`, string(status), id)
	return err
}

func (r *txRepository) MarkPosted(ctx context.Context, id int64, postingDate time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE accounting_entries SET status = 'posted', posting_date = $1, updated_at = now() WHERE id = $2`, postingDate, id)
	return err
}

// GetEntry loads an entry with its lines outside a transaction.
func (r *Repository) GetEntry(ctx context.Context, id int64) (Entry, error) {
	entry, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumnsBare+` FROM accounting_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, id)
		}
		return Entry{}, err
	}
	lines, err := loadLines(ctx, r.pool, []int64{entry.ID})
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines[entry.ID]
	return entry, nil
}

// ListEntries returns one page of entries matching the filter, newest first,
// with lines, plus the total row count before paging.
func (r *Repository) ListEntries(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	conds := ` FROM accounting_entries WHERE 1=1`
	args := []any{}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.JournalID != nil {
		args = append(args, *filter.JournalID)
		conds += fmt.Sprintf(` AND journal_id = $%d`, len(args))
	}
	if filter.FiscalYearID != nil {
		args = append(args, *filter.FiscalYearID)
		conds += fmt.Sprintf(` AND fiscal_year_id = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+conds, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(filter.Page, filter.PerPage, total)
	args = append(args, page.PerPage, page.Offset())
	query := `SELECT ` + entryColumnsBare + conds +
		fmt.Sprintf(` ORDER BY entry_date DESC, entry_number DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []Entry
	var ids []int64
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return entries, total, nil
	}
	lines, err := loadLines(ctx, r.pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].ID]
	}
	return entries, total, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadLines(ctx context.Context, q querier, entryIDs []int64) (map[int64][]Line, error) {
	rows, err := q.Query(ctx, `SELECT l.id, l.entry_id, l.line_number, l.account_id, a.account_number,
l.is_debit, l.amount::text, l.description, l.auxiliary_account_type, l.auxiliary_account_id, l.created_at, l.updated_at
FROM accounting_entry_lines l
JOIN general_ledger_accounts a ON a.id = l.account_id
WHERE l.entry_id = ANY($1)
ORDER BY l.entry_id, l.line_number`, entryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Line)
	for rows.Next() {
		var line Line
		var amount string
		if err := rows.Scan(&line.ID, &line.EntryID, &line.LineNumber, &line.AccountID, &line.AccountNumber,
			&line.IsDebit, &amount, &line.Description, &line.AuxiliaryAccountType, &line.AuxiliaryAccountID,
			&line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, err
		}
		line.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("ledger: bad amount %q: %w", amount, err)
		}
		out[line.EntryID] = append(out[line.EntryID], line)
	}
	return out, rows.Err()
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			if pgErr.ConstraintName == "accounting_entry_lines_account_id_fkey" {
				return fmt.Errorf("%w: %s", ErrUnknownAccount, pgErr.Detail)
			}
			return fmt.Errorf("ledger: unknown journal or fiscal year: %s", pgErr.Detail)
		case "23505":
			return fmt.Errorf("ledger: duplicate entry number: %s", pgErr.Detail)
		}
	}
	return err
}
