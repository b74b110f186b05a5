package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meridian-erp/meridian-erp/internal/fiscal"
)

func newFiscalYearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fiscal-year",
		Short: "Manage fiscal years",
	}
	cmd.AddCommand(newSetCurrentCommand())
	return cmd
}

func newSetCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-current <year>",
		Short: "Mark a fiscal year as the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("year must be a number: %w", err)
			}

			ctx := cmd.Context()
			env, cleanup, err := setupRuntime(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			repo := fiscal.NewRepository(env.pool)
			fy, err := repo.GetByYear(ctx, year)
			if err != nil {
				return err
			}
			updated, err := fiscal.NewService(repo).SetCurrent(ctx, fy.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fiscal year %d (%s) is now current\n", updated.Year, updated.Name)
			return nil
		},
	}
}
