// Package commands implements the meridianctl CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/meridian-erp/meridian-erp/internal/app"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meridianctl",
		Short: "Operational tooling for the Meridian accounting service",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newFiscalYearCommand())
	rootCmd.AddCommand(newSeedCommand())

	return rootCmd
}

// runtimeEnv carries the shared dependencies of every subcommand.
type runtimeEnv struct {
	cfg    *app.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
}

func setupRuntime(ctx context.Context) (*runtimeEnv, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)
	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &runtimeEnv{cfg: cfg, logger: logger, pool: pool}, pool.Close, nil
}
