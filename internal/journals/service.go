package journals

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Service exposes journal operations.
type Service struct {
	repo Repository
}

// NewService constructs the journal service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Journal, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Journal, error) {
	if id <= 0 {
		return Journal{}, fmt.Errorf("%w: invalid journal id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (Journal, error) {
	if code == "" {
		return Journal{}, fmt.Errorf("%w: journal code required", httpx.ErrValidation)
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, journal Journal) (Journal, error) {
	if err := s.validate(journal); err != nil {
		return Journal{}, err
	}
	return s.repo.Create(ctx, journal)
}

func (s *Service) Update(ctx context.Context, id int64, journal Journal) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid journal id", httpx.ErrValidation)
	}
	if err := s.validate(journal); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, journal)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid journal id", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(journal Journal) error {
	if strings.TrimSpace(journal.JournalID) == "" {
		return fmt.Errorf("%w: journal id required", httpx.ErrValidation)
	}
	if strings.TrimSpace(journal.Code) == "" {
		return fmt.Errorf("%w: journal code required", httpx.ErrValidation)
	}
	if strings.TrimSpace(journal.Name) == "" {
		return fmt.Errorf("%w: journal name required", httpx.ErrValidation)
	}
	return nil
}
