package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-erp/meridian-erp/internal/refdata"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import reference data from legacy CSV exports",
	}
	cmd.AddCommand(
		newImportFileCommand("chart-of-accounts <file>", "Import the chart of accounts (PCG export)",
			func(ctx context.Context, im *refdata.Importer, path string) (refdata.Result, error) {
				return im.ImportChartOfAccounts(ctx, path)
			}),
		newImportFileCommand("journals <file>", "Import accounting journals",
			func(ctx context.Context, im *refdata.Importer, path string) (refdata.Result, error) {
				return im.ImportJournals(ctx, path)
			}),
		newImportFileCommand("fiscal-years <file>", "Import fiscal years",
			func(ctx context.Context, im *refdata.Importer, path string) (refdata.Result, error) {
				return im.ImportFiscalYears(ctx, path)
			}),
		newImportFileCommand("accounting-types <file>", "Import accounting types",
			func(ctx context.Context, im *refdata.Importer, path string) (refdata.Result, error) {
				return im.ImportAccountingTypes(ctx, path)
			}),
	)
	return cmd
}

func newImportFileCommand(use, short string, run func(ctx context.Context, im *refdata.Importer, path string) (refdata.Result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, cleanup, err := setupRuntime(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			importer := refdata.NewImporter(refdata.NewStore(env.pool), env.logger)
			res, err := run(ctx, importer, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows (%d skipped, encoding %s)\n",
				res.Imported, res.Skipped, res.Encoding)
			return nil
		},
	}
}
