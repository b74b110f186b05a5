package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Repository persists accounting journals.
type Repository interface {
	List(ctx context.Context) ([]Journal, error)
	Get(ctx context.Context, id int64) (Journal, error)
	GetByCode(ctx context.Context, code string) (Journal, error)
	Create(ctx context.Context, journal Journal) (Journal, error)
	Update(ctx context.Context, id int64, journal Journal) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const journalColumns = `id, journal_id, code, short_name, name, is_opening_balance, company_code, created_at, updated_at`

func scanJournal(row pgx.Row) (Journal, error) {
	var j Journal
	err := row.Scan(&j.ID, &j.JournalID, &j.Code, &j.ShortName, &j.Name, &j.IsOpeningBalance, &j.CompanyCode, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (r *repository) List(ctx context.Context) ([]Journal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+journalColumns+` FROM accounting_journals ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var journals []Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, j)
	}
	return journals, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Journal, error) {
	j, err := scanJournal(r.db.QueryRow(ctx, `SELECT `+journalColumns+` FROM accounting_journals WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Journal{}, fmt.Errorf("%w: journal %d", httpx.ErrNotFound, id)
	}
	return j, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (Journal, error) {
	j, err := scanJournal(r.db.QueryRow(ctx, `SELECT `+journalColumns+` FROM accounting_journals WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Journal{}, fmt.Errorf("%w: journal %s", httpx.ErrNotFound, code)
	}
	return j, err
}

func (r *repository) Create(ctx context.Context, journal Journal) (Journal, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO accounting_journals (journal_id, code, short_name, name, is_opening_balance, company_code, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING id`,
		journal.JournalID, journal.Code, journal.ShortName, journal.Name, journal.IsOpeningBalance, journal.CompanyCode, now).Scan(&journal.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Journal{}, fmt.Errorf("%w: journal %s", httpx.ErrDuplicate, journal.JournalID)
		}
		return Journal{}, err
	}
	journal.CreatedAt = now
	journal.UpdatedAt = now
	return journal, nil
}

func (r *repository) Update(ctx context.Context, id int64, journal Journal) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounting_journals SET journal_id = $1, code = $2, short_name = $3, name = $4, is_opening_balance = $5, company_code = $6, updated_at = $7 WHERE id = $8`,
		journal.JournalID, journal.Code, journal.ShortName, journal.Name, journal.IsOpeningBalance, journal.CompanyCode, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal %d", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounting_journals WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: journal %d has entries", httpx.ErrReferenced, id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal %d", httpx.ErrNotFound, id)
	}
	return nil
}
