package fiscal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Repository persists fiscal years.
type Repository interface {
	List(ctx context.Context) ([]Year, error)
	Get(ctx context.Context, id int64) (Year, error)
	GetByYear(ctx context.Context, year int) (Year, error)
	Current(ctx context.Context) (Year, error)
	Create(ctx context.Context, year Year) (Year, error)
	Update(ctx context.Context, id int64, year Year) error
	Delete(ctx context.Context, id int64) error
	SetCurrent(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const yearColumns = `id, year, name, start_date, end_date, is_closed, is_current, created_at, updated_at`

func scanYear(row pgx.Row) (Year, error) {
	var y Year
	err := row.Scan(&y.ID, &y.Year, &y.Name, &y.StartDate, &y.EndDate, &y.IsClosed, &y.IsCurrent, &y.CreatedAt, &y.UpdatedAt)
	return y, err
}

func (r *repository) List(ctx context.Context) ([]Year, error) {
	rows, err := r.db.Query(ctx, `SELECT `+yearColumns+` FROM fiscal_years ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var years []Year
	for rows.Next() {
		y, err := scanYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Year, error) {
	y, err := scanYear(r.db.QueryRow(ctx, `SELECT `+yearColumns+` FROM fiscal_years WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Year{}, fmt.Errorf("%w: fiscal year %d", httpx.ErrNotFound, id)
	}
	return y, err
}

func (r *repository) GetByYear(ctx context.Context, year int) (Year, error) {
	y, err := scanYear(r.db.QueryRow(ctx, `SELECT `+yearColumns+` FROM fiscal_years WHERE year = $1`, year))
	if errors.Is(err, pgx.ErrNoRows) {
		return Year{}, fmt.Errorf("%w: fiscal year %d", httpx.ErrNotFound, year)
	}
	return y, err
}

func (r *repository) Current(ctx context.Context) (Year, error) {
	y, err := scanYear(r.db.QueryRow(ctx, `SELECT `+yearColumns+` FROM fiscal_years WHERE is_current LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return Year{}, fmt.Errorf("%w: no current fiscal year", httpx.ErrNotFound)
	}
	return y, err
}

func (r *repository) Create(ctx context.Context, year Year) (Year, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO fiscal_years (year, name, start_date, end_date, is_closed, is_current, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,false,$6,$6) RETURNING id`,
		year.Year, year.Name, year.StartDate, year.EndDate, year.IsClosed, now).Scan(&year.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Year{}, fmt.Errorf("%w: fiscal year %d", httpx.ErrDuplicate, year.Year)
		}
		return Year{}, err
	}
	year.IsCurrent = false
	year.CreatedAt = now
	year.UpdatedAt = now
	return year, nil
}

func (r *repository) Update(ctx context.Context, id int64, year Year) error {
	tag, err := r.db.Exec(ctx, `UPDATE fiscal_years SET year = $1, name = $2, start_date = $3, end_date = $4, is_closed = $5, updated_at = $6 WHERE id = $7`,
		year.Year, year.Name, year.StartDate, year.EndDate, year.IsClosed, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fiscal year %d", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fiscal_years WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: fiscal year %d has entries", httpx.ErrReferenced, id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fiscal year %d", httpx.ErrNotFound, id)
	}
	return nil
}

// SetCurrent atomically moves the is_current flag to the given fiscal year.
func (r *repository) SetCurrent(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		now := time.Now()
		tag, err := tx.Exec(ctx, `UPDATE fiscal_years SET is_current = true, updated_at = $1 WHERE id = $2`, now, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: fiscal year %d", httpx.ErrNotFound, id)
		}
		_, err = tx.Exec(ctx, `UPDATE fiscal_years SET is_current = false, updated_at = $1 WHERE is_current AND id <> $2`, now, id)
		return err
	})
}
