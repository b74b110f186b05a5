package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

// newSeedCommand loads a small demo dataset: a handful of accounts, the four
// standard journals, the current fiscal year and two posted entries. Safe to
// run repeatedly; reference rows are upserted by natural key.
func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo accounts, journals and sample entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, cleanup, err := setupRuntime(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := seedReferenceData(ctx, env.pool); err != nil {
				return err
			}
			posted, err := seedEntries(ctx, env)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded demo data (%d entries posted)\n", posted)
			return nil
		},
	}
}

func seedReferenceData(ctx context.Context, pool *pgxpool.Pool) error {
	accounts := []struct {
		number, shortName, fullName string
		balanceSheet                bool
	}{
		{"101000", "Capital", "Capital social", true},
		{"401000", "Fournisseurs", "Fournisseurs", true},
		{"411000", "Clients", "Clients", true},
		{"512000", "Banque", "Banque", true},
		{"607000", "Achats", "Achats de marchandises", false},
		{"707000", "Ventes", "Ventes de marchandises", false},
	}
	for _, a := range accounts {
		_, err := pool.Exec(ctx, `INSERT INTO general_ledger_accounts
(account_number, short_name, full_name, is_balance_sheet)
VALUES ($1, $2, $3, $4)
ON CONFLICT (account_number) DO NOTHING`, a.number, a.shortName, a.fullName, a.balanceSheet)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.number, err)
		}
	}

	journals := []struct {
		journalID, code, shortName, name string
	}{
		{"VT", "VT", "VT", "Ventes"},
		{"AC", "AC", "AC", "Achats"},
		{"BQ", "BQ", "BQ", "Banque"},
		{"OD", "OD", "OD", "Operations diverses"},
	}
	for _, j := range journals {
		_, err := pool.Exec(ctx, `INSERT INTO accounting_journals
(journal_id, code, short_name, name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (journal_id) DO NOTHING`, j.journalID, j.code, j.shortName, j.name)
		if err != nil {
			return fmt.Errorf("seed journal %s: %w", j.journalID, err)
		}
	}

	year := time.Now().Year()
	_, err := pool.Exec(ctx, `INSERT INTO fiscal_years
(year, name, start_date, end_date, is_current)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT (year) DO NOTHING`,
		year, fmt.Sprintf("FY %d", year),
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return fmt.Errorf("seed fiscal year: %w", err)
	}
	return nil
}

func seedEntries(ctx context.Context, env *runtimeEnv) (int, error) {
	ids := map[string]int64{}
	for _, number := range []string{"411000", "512000", "607000", "707000"} {
		var id int64
		if err := env.pool.QueryRow(ctx,
			`SELECT id FROM general_ledger_accounts WHERE account_number = $1`, number).Scan(&id); err != nil {
			return 0, fmt.Errorf("lookup account %s: %w", number, err)
		}
		ids[number] = id
	}
	var journalVT, journalAC, fiscalYearID int64
	if err := env.pool.QueryRow(ctx, `SELECT id FROM accounting_journals WHERE journal_id = 'VT'`).Scan(&journalVT); err != nil {
		return 0, fmt.Errorf("lookup journal VT: %w", err)
	}
	if err := env.pool.QueryRow(ctx, `SELECT id FROM accounting_journals WHERE journal_id = 'AC'`).Scan(&journalAC); err != nil {
		return 0, fmt.Errorf("lookup journal AC: %w", err)
	}
	if err := env.pool.QueryRow(ctx, `SELECT id FROM fiscal_years WHERE is_current LIMIT 1`).Scan(&fiscalYearID); err != nil {
		return 0, fmt.Errorf("lookup current fiscal year: %w", err)
	}

	svc := ledger.NewService(ledger.NewRepository(env.pool), nil, env.logger)
	samples := []ledger.CreateInput{
		{
			EntryDate:    time.Now(),
			Reference:    "Demo sale",
			JournalID:    journalVT,
			FiscalYearID: fiscalYearID,
			Lines: []ledger.LineInput{
				{AccountID: ids["411000"], IsDebit: true, Amount: decimal.RequireFromString("1200.00"), Description: "Invoice 2024-001"},
				{AccountID: ids["707000"], IsDebit: false, Amount: decimal.RequireFromString("1200.00")},
			},
		},
		{
			EntryDate:    time.Now(),
			Reference:    "Demo purchase",
			JournalID:    journalAC,
			FiscalYearID: fiscalYearID,
			Lines: []ledger.LineInput{
				{AccountID: ids["607000"], IsDebit: true, Amount: decimal.RequireFromString("450.00"), Description: "Supplier bill"},
				{AccountID: ids["512000"], IsDebit: false, Amount: decimal.RequireFromString("450.00")},
			},
		},
	}

	posted := 0
	for _, input := range samples {
		entry, err := svc.Create(ctx, input)
		if err != nil {
			return posted, fmt.Errorf("create %s: %w", input.Reference, err)
		}
		if _, err := svc.Validate(ctx, entry.ID); err != nil {
			return posted, fmt.Errorf("validate %s: %w", entry.EntryNumber, err)
		}
		if _, err := svc.Post(ctx, entry.ID, nil); err != nil {
			return posted, fmt.Errorf("post %s: %w", entry.EntryNumber, err)
		}
		posted++
	}
	return posted, nil
}
