package main

import (
	"github.com/spf13/cobra"

	"marquee/internal/notifications"
	"marquee/internal/results"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var email bool
	var parquet bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rewrite the exports from the stored results without scraping",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()
			store, err := results.Open(cfg.DatabasePath(), results.WithLogger(logger))
			if err != nil {
				return err
			}
			defer store.Close()

			return exportDataset(cmd.Context(), cfg, store, logger, notifications.NewService(cfg), cmd.OutOrStdout(), exportOptions{
				parquet: parquet || cfg.Export.Parquet,
				email:   email,
			})
		},
	}

	cmd.Flags().BoolVar(&email, "email", false, "Email the exported CSV and database")
	cmd.Flags().BoolVar(&parquet, "parquet", false, "Also write the parquet export")
	return cmd
}
