package coa

import (
	"context"
	"fmt"
	"regexp"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

var accountNumberPattern = regexp.MustCompile(`^[1-9][0-9]{2,5}$`)

// Service exposes chart of accounts operations.
type Service struct {
	repo Repository
}

// NewService constructs the chart of accounts service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListClasses(ctx context.Context) ([]AccountingClass, error) {
	return s.repo.ListClasses(ctx)
}

func (s *Service) ListChapters(ctx context.Context) ([]AccountingChapter, error) {
	return s.repo.ListChapters(ctx)
}

func (s *Service) ListSections(ctx context.Context) ([]AccountingSection, error) {
	return s.repo.ListSections(ctx)
}

// ListAccounts returns accounts, optionally restricted to balance sheet or
// income statement accounts.
func (s *Service) ListAccounts(ctx context.Context, balanceSheet *bool) ([]GeneralLedgerAccount, error) {
	return s.repo.ListAccounts(ctx, balanceSheet)
}

func (s *Service) GetAccount(ctx context.Context, id int64) (GeneralLedgerAccount, error) {
	if id <= 0 {
		return GeneralLedgerAccount{}, fmt.Errorf("%w: invalid account id", httpx.ErrValidation)
	}
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) GetAccountByNumber(ctx context.Context, number string) (GeneralLedgerAccount, error) {
	if number == "" {
		return GeneralLedgerAccount{}, fmt.Errorf("%w: account number required", httpx.ErrValidation)
	}
	return s.repo.GetAccountByNumber(ctx, number)
}

func (s *Service) CreateAccount(ctx context.Context, account GeneralLedgerAccount) (GeneralLedgerAccount, error) {
	if err := s.validate(account); err != nil {
		return GeneralLedgerAccount{}, err
	}
	return s.repo.CreateAccount(ctx, account)
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, account GeneralLedgerAccount) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid account id", httpx.ErrValidation)
	}
	if err := s.validate(account); err != nil {
		return err
	}
	return s.repo.UpdateAccount(ctx, id, account)
}

// DeleteAccount removes an account. Accounts referenced by entry lines are
// protected by the database and the attempt surfaces as a conflict.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid account id", httpx.ErrValidation)
	}
	return s.repo.DeleteAccount(ctx, id)
}

func (s *Service) validate(account GeneralLedgerAccount) error {
	if !accountNumberPattern.MatchString(account.AccountNumber) {
		return fmt.Errorf("%w: account number %q must be 3 to 6 digits", httpx.ErrValidation, account.AccountNumber)
	}
	if account.FullName == "" {
		return fmt.Errorf("%w: account name required", httpx.ErrValidation)
	}
	return nil
}
