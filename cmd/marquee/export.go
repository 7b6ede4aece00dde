package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/notifications"
	"marquee/internal/report"
	"marquee/internal/results"
)

type exportOptions struct {
	parquet bool
	email   bool
}

// exportDataset writes the CSV (and parquet) snapshot of store and optionally
// mails it. Incomplete SMTP settings and delivery failures are reported but
// never fail the export.
func exportDataset(ctx context.Context, cfg *config.Config, store *results.Store, logger *slog.Logger, notifier notifications.Service, out io.Writer, opts exportOptions) error {
	rows, err := store.All(ctx)
	if err != nil {
		return err
	}
	csvPath := cfg.CSVPath()
	if err := report.WriteCSVFile(csvPath, rows); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	logger.Info("csv exported", logging.String("path", csvPath), logging.Int("rows", len(rows)))
	fmt.Fprintf(out, "Exported %d rows to %s\n", len(rows), csvPath)

	if opts.parquet {
		parquetPath := cfg.ParquetPath()
		if err := report.WriteParquetFile(parquetPath, rows); err != nil {
			return fmt.Errorf("write parquet export: %w", err)
		}
		logger.Info("parquet exported", logging.String("path", parquetPath))
		fmt.Fprintf(out, "Exported %d rows to %s\n", len(rows), parquetPath)
	}

	if !opts.email {
		return nil
	}
	if err := store.Checkpoint(ctx); err != nil {
		logger.Debug("checkpoint before email failed", logging.Error(err))
	}
	mailer := report.NewMailer(cfg.SMTP, report.WithMailerLogger(logger))
	err = mailer.Send(ctx, csvPath, store.Path())
	switch {
	case err == nil:
		fmt.Fprintf(out, "Emailed results to %s\n", cfg.SMTP.To)
	case errors.Is(err, report.ErrDeliveryNotConfigured):
		logger.Info("email skipped: smtp settings incomplete",
			logging.String(logging.FieldEventType, "email_skipped"),
		)
		fmt.Fprintln(out, "Email not sent: SMTP settings are incomplete")
	default:
		logging.WarnWithContext(logger, "email delivery failed", "email_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check smtp host, port, and credentials"),
			logging.String(logging.FieldImpact, "exports were written but not delivered"),
		)
		if notifier != nil {
			if nerr := notifier.NotifyError(ctx, err, "email delivery"); nerr != nil {
				logger.Debug("notification failed", logging.Error(nerr))
			}
		}
		fmt.Fprintf(out, "Email not sent: %v\n", err)
	}
	return nil
}
