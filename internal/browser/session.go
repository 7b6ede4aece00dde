package browser

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Session is a single browsing handle shared by every stage of a run. It is
// stateful (it remembers the current page) and is not safe for concurrent use.
type Session interface {
	// Navigate loads the page at url and makes it current.
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until selector matches at least one element on the
	// current page, or fails with a timeout-marked error once timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// Document returns the parsed current page.
	Document() (*goquery.Document, error)
	// URL returns the address of the current page.
	URL() string
}
