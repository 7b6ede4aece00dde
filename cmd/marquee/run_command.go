package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/notifications"
	"marquee/internal/pipeline"
	"marquee/internal/results"
	"marquee/internal/services"
	"marquee/internal/titles"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var workbook string
	var noEmail bool
	var parquet bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape every title in the workbook, store the results, and export them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workbook = strings.TrimSpace(workbook); workbook != "" {
				expanded, err := config.ExpandPath(workbook)
				if err != nil {
					return fmt.Errorf("resolve workbook path: %w", err)
				}
				cfg.Source.Workbook = expanded
			}
			logger, closeLog, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another marquee run is already using %s", cfg.Paths.OutputDir)
			}
			defer func() {
				_ = lock.Unlock()
			}()

			list, err := titles.ReadWorkbook(cfg.Source.Workbook, cfg.Source.Column)
			if err != nil {
				logging.ErrorWithContext(logger, "read titles failed", "titles_unavailable",
					logging.Error(err),
					logging.String("workbook", cfg.Source.Workbook),
					logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
				)
				return err
			}

			store, err := results.Open(cfg.DatabasePath(), results.WithLogger(logger))
			if err != nil {
				return err
			}
			defer store.Close()

			scraper, err := newScraper(cfg, logger)
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg)

			opts := []pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithNotifier(notifier),
			}
			out := cmd.OutOrStdout()
			if isTerminal(out) {
				opts = append(opts, pipeline.WithObserver(newProgressPrinter(out)))
			}
			runner, err := pipeline.NewRunner(scraper.resolver, scraper.extractor, store, opts...)
			if err != nil {
				return err
			}

			summary, runErr := runner.Run(cmd.Context(), list)
			fmt.Fprintf(out, "Processed %d of %d titles: %d matched, %d without match, %d failed (%s)\n",
				summary.Processed(), summary.Total, summary.Succeeded, summary.NoMatch, summary.Failed,
				summary.Duration.Round(time.Second))
			if runErr != nil {
				return runErr
			}

			return exportDataset(cmd.Context(), cfg, store, logger, notifier, out, exportOptions{
				parquet: parquet || cfg.Export.Parquet,
				email:   !noEmail && cfg.Export.Email,
			})
		},
	}

	cmd.Flags().StringVar(&workbook, "workbook", "", "Workbook to read titles from (overrides source.workbook)")
	cmd.Flags().BoolVar(&noEmail, "no-email", false, "Skip emailing the results")
	cmd.Flags().BoolVar(&parquet, "parquet", false, "Also write the parquet export")
	return cmd
}
