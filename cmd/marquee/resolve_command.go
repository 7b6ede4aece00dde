package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/movies"
	"marquee/internal/pipeline"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <title>",
		Short: "Look up one title and print its attributes without storing them",
		Args:  cobra.MinimumNArgs(1),
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
			scraper, err := newScraper(cfg, logger)
			if err != nil {
				return err
			}
			runner, err := pipeline.NewRunner(scraper.resolver, scraper.extractor, pipeline.Discard, pipeline.WithLogger(logger))
			if err != nil {
				return err
			}

			title := strings.Join(args, " ")
			outcome := runner.Process(cmd.Context(), title)
			fmt.Fprintln(cmd.OutOrStdout(), renderDetails(outcomeDetails(outcome)))
			return nil
		},
	}
}

func outcomeDetails(outcome movies.Outcome) [][2]string {
	pairs := [][2]string{
		{"Title", outcome.Title},
		{"Status", outcome.StatusText()},
	}
	if outcome.Reference != nil {
		year := "-"
		if outcome.Reference.Year > 0 {
			year = strconv.Itoa(outcome.Reference.Year)
		}
		pairs = append(pairs, [2]string{"Record", outcome.Reference.URL}, [2]string{"Year", year})
	}
	if outcome.Status != movies.StatusSuccess {
		return pairs
	}
	b := outcome.Bundle
	pairs = append(pairs,
		[2]string{"Rating", orDash(b.Rating)},
		[2]string{"Popularity", orDash(b.Popularity)},
		[2]string{"Metascore", orDash(b.Metascore)},
		[2]string{"Genre", orDash(b.GenreText())},
		[2]string{"User reviews", orDash(b.UserReviewCount)},
	)
	for _, review := range b.Reviews {
		label, text, _ := strings.Cut(review, ": ")
		pairs = append(pairs, [2]string{label, oneLine(text)})
	}
	return pairs
}
