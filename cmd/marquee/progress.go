package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"marquee/internal/movies"
)

// progressPrinter writes one line per finished title.
type progressPrinter struct {
	out io.Writer
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out}
}

func (p *progressPrinter) TitleStarted(int, int, string) {}

func (p *progressPrinter) TitleFinished(index, total int, outcome movies.Outcome) {
	detail := outcome.StatusText()
	if outcome.Status == movies.StatusSuccess && outcome.Reference != nil {
		detail = outcome.Reference.URL
	}
	fmt.Fprintf(p.out, "[%d/%d] %-8s %s  %s\n", index, total, statusLabel(outcome.Status), outcome.Title, oneLine(detail))
}

func statusLabel(status movies.Status) string {
	switch status {
	case movies.StatusSuccess:
		return "ok"
	case movies.StatusNoMatch:
		return "no match"
	default:
		return "error"
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
