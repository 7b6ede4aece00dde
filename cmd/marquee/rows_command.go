package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/movies"
	"marquee/internal/results"
)

func newRowsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Print stored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := results.Open(cfg.DatabasePath())
			if err != nil {
				return err
			}
			defer store.Close()

			var rows []results.Row
			if runID != "" {
				rows, err = store.ByRun(cmd.Context(), runID)
			} else {
				rows, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No stored results")
				return nil
			}
			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderRows(rows))
			fmt.Fprintln(out, rowsFooter(rows, total))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show the most recent N rows (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show rows written by this run id")
	return cmd
}

func renderRows(rows []results.Row) string {
	headers := []string{"ID", "Title", "Rating", "Metascore", "Popularity", "Genre", "User reviews", "Status"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight, alignLeft}
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		body = append(body, []string{
			strconv.FormatInt(row.ID, 10),
			row.Title.Value,
			orDash(row.Rating),
			orDash(row.Metascore),
			orDash(row.Popularity),
			orDash(row.Genre),
			orDash(row.UserReviews),
			oneLine(row.Status.Value),
		})
	}
	return renderTable(headers, body, aligns)
}

// rowsFooter tallies the shown rows by status against the stored total.
func rowsFooter(rows []results.Row, total int) string {
	var matched, noMatch, failed int
	for _, row := range rows {
		switch row.StatusKind() {
		case movies.StatusSuccess:
			matched++
		case movies.StatusNoMatch:
			noMatch++
		default:
			failed++
		}
	}
	return fmt.Sprintf("Showing %d of %d stored rows: %d matched, %d without match, %d failed",
		len(rows), total, matched, noMatch, failed)
}

func orDash(value movies.Text) string {
	if !value.Valid {
		return "-"
	}
	return oneLine(value.Value)
}
