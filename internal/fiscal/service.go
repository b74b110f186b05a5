package fiscal

import (
	"context"
	"fmt"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Service exposes fiscal year operations.
type Service struct {
	repo Repository
}

// NewService constructs the fiscal year service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Year, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Year, error) {
	if id <= 0 {
		return Year{}, fmt.Errorf("%w: invalid fiscal year id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Current returns the fiscal year flagged as current.
func (s *Service) Current(ctx context.Context) (Year, error) {
	return s.repo.Current(ctx)
}

func (s *Service) Create(ctx context.Context, year Year) (Year, error) {
	if err := s.validate(year); err != nil {
		return Year{}, err
	}
	return s.repo.Create(ctx, year)
}

func (s *Service) Update(ctx context.Context, id int64, year Year) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid fiscal year id", httpx.ErrValidation)
	}
	if err := s.validate(year); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, year)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid fiscal year id", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

// SetCurrent marks the given fiscal year as current and clears the flag on all
// others inside one transaction, so at most one year is ever current.
func (s *Service) SetCurrent(ctx context.Context, id int64) (Year, error) {
	if id <= 0 {
		return Year{}, fmt.Errorf("%w: invalid fiscal year id", httpx.ErrValidation)
	}
	if err := s.repo.SetCurrent(ctx, id); err != nil {
		return Year{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) validate(year Year) error {
	if year.Year < 1900 || year.Year > 2999 {
		return fmt.Errorf("%w: year %d out of range", httpx.ErrValidation, year.Year)
	}
	if !year.EndDate.After(year.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", httpx.ErrValidation)
	}
	return nil
}
