package identification

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marquee/internal/browser/browsertest"
	"marquee/internal/imdb"
	"marquee/internal/services"
)

var testSite = imdb.NewSite("https://www.imdb.com")

type result struct {
	title      string
	href       string
	annotation []string
}

func currentPage(results ...result) string {
	var b strings.Builder
	b.WriteString(`<html><body><section data-testid="find-results-section-title"><ul>`)
	for _, r := range results {
		b.WriteString(`<li class="ipc-metadata-list-summary-item">`)
		fmt.Fprintf(&b, `<a class="ipc-metadata-list-summary-item__t" href="%s">%s</a>`, r.href, r.title)
		b.WriteString(`<ul class="ipc-metadata-list-summary-item__tl">`)
		for _, a := range r.annotation {
			fmt.Fprintf(&b, `<li class="ipc-inline-list__item"><span>%s</span></li>`, a)
		}
		b.WriteString(`</ul></li>`)
	}
	b.WriteString(`</ul></section></body></html>`)
	return b.String()
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(data)
}

func newTestResolver(t *testing.T, pages map[string]string) (*Resolver, *browsertest.Session) {
	t.Helper()
	session := browsertest.New(pages)
	resolver, err := NewResolver(session, testSite, time.Second, nil)
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	return resolver, session
}

func TestResolveCurrentLayoutFixture(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Inception"): loadFixture(t, "find_inception.html"),
	})

	ref, err := resolver.Resolve(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil {
		t.Fatal("expected a reference")
	}
	if ref.URL != "https://www.imdb.com/title/tt1375666/?ref_=fn_ft_tt_1" {
		t.Fatalf("unexpected url %q", ref.URL)
	}
	if ref.Year != 2010 {
		t.Fatalf("unexpected year %d", ref.Year)
	}
}

func TestResolveSingleExactMatchIgnoresYear(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Arrival"): currentPage(
			result{title: "Arrival", href: "/title/tt2543164/"},
			result{title: "The Arrival", href: "/title/tt0115571/", annotation: []string{"1996"}},
		),
	})

	ref, err := resolver.Resolve(context.Background(), "Arrival")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.URL != "https://www.imdb.com/title/tt2543164/" || ref.Year != 0 {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestResolvePrefersLatestYear(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Dune"): currentPage(
			result{title: "Dune", href: "/title/tt0087182/", annotation: []string{"1984"}},
			result{title: "Dune", href: "/title/tt1160419/", annotation: []string{"2021"}},
			result{title: "Dune", href: "/title/tt0142032/", annotation: []string{"2000", "TV Mini Series"}},
		),
	})

	ref, err := resolver.Resolve(context.Background(), "Dune")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.URL != "https://www.imdb.com/title/tt1160419/" || ref.Year != 2021 {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestResolveYearTieKeepsFirstRendered(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Twins"): currentPage(
			result{title: "Twins", href: "/title/tt0001/", annotation: []string{"2020"}},
			result{title: "Twins", href: "/title/tt0002/", annotation: []string{"2020"}},
		),
	})

	ref, err := resolver.Resolve(context.Background(), "Twins")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.URL != "https://www.imdb.com/title/tt0001/" {
		t.Fatalf("expected first rendered tie to win, got %+v", ref)
	}
}

func TestResolveTelevisionOnlyIsNoMatch(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Chernobyl"): currentPage(
			result{title: "Chernobyl", href: "/title/tt7366338/", annotation: []string{"2019", "TV Mini Series"}},
		),
	})

	ref, err := resolver.Resolve(context.Background(), "Chernobyl")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected no match, got %+v", ref)
	}
}

func TestResolveRequiresExactTitle(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Alien"): currentPage(
			result{title: "Aliens", href: "/title/tt0090605/", annotation: []string{"1986"}},
			result{title: "Alien: Romulus", href: "/title/tt18412256/", annotation: []string{"2024"}},
		),
	})

	ref, err := resolver.Resolve(context.Background(), "Alien")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected no match for near titles, got %+v", ref)
	}
}

func TestResolveIgnoresCaseAndSurroundingSpace(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("the matrix"): currentPage(
			result{title: "\n  The Matrix ", href: "/title/tt0133093/", annotation: []string{"1999"}},
		),
	})

	ref, err := resolver.Resolve(context.Background(), "  the matrix ")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.Year != 1999 {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestResolveKeepsInnerSpacing(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Star  Wars"): currentPage(
			result{title: "Star Wars", href: "/title/tt0076759/", annotation: []string{"1977"}},
		),
	})

	ref, err := resolver.Resolve(context.Background(), "Star  Wars")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected no match when inner spacing differs, got %+v", ref)
	}
}

func TestResolveYearIgnoresDigitsInTitle(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Blade Runner 2049"): currentPage(
			result{title: "Blade Runner 2049", href: "/title/tt1856101/", annotation: []string{"2017"}},
		),
	})

	ref, err := resolver.Resolve(context.Background(), "Blade Runner 2049")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.Year != 2017 {
		t.Fatalf("expected release year 2017, got %+v", ref)
	}
}

func TestResolveFallsBackToLegacyLayout(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Heat"): loadFixture(t, "find_legacy.html"),
	})

	ref, err := resolver.Resolve(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.URL != "https://www.imdb.com/title/tt0113277/" || ref.Year != 1995 {
		t.Fatalf("unexpected reference %+v", ref)
	}
}

func TestResolveLegacyConsultedWhenCurrentHasNoQualifying(t *testing.T) {
	page := `<html><body>
<section data-testid="find-results-section-title"><ul>
  <li class="ipc-metadata-list-summary-item"><a class="ipc-metadata-list-summary-item__t" href="/title/tt9/">Heat</a>
    <ul class="ipc-metadata-list-summary-item__tl"><li>2019</li><li>TV Series</li></ul></li>
</ul></section>
<table class="findList"><tr><td class="result_text"><a href="/title/tt0113277/">Heat</a> (1995)</td></tr></table>
</body></html>`
	resolver, _ := newTestResolver(t, map[string]string{testSite.FindURL("Heat"): page})

	ref, err := resolver.Resolve(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.URL != "https://www.imdb.com/title/tt0113277/" {
		t.Fatalf("expected legacy result, got %+v", ref)
	}
}

func TestResolveLegacyTitleContainingTVIsKept(t *testing.T) {
	page := `<html><body><table class="findList">
<tr><td class="result_text"><a href="/title/tt0120177/">TV Nation</a> (1998)</td></tr>
</table></body></html>`
	resolver, _ := newTestResolver(t, map[string]string{testSite.FindURL("TV Nation"): page})

	ref, err := resolver.Resolve(context.Background(), "TV Nation")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref == nil || ref.Year != 1998 {
		t.Fatalf("expected film titled with TV to qualify, got %+v", ref)
	}
}

func TestResolveEmptyResultsIsNoMatch(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("NoSuchMovie123"): currentPage(),
	})

	ref, err := resolver.Resolve(context.Background(), "NoSuchMovie123")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected no match, got %+v", ref)
	}
}

func TestResolveWaitTimeoutIsError(t *testing.T) {
	resolver, _ := newTestResolver(t, map[string]string{
		testSite.FindURL("Memento"): `<html><body><p>Please enable JavaScript</p></body></html>`,
	})

	_, err := resolver.Resolve(context.Background(), "Memento")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestResolveNavigationFailureIsError(t *testing.T) {
	resolver, session := newTestResolver(t, map[string]string{})
	session.Failures[testSite.FindURL("Memento")] = services.Wrap(services.ErrNavigation, "browser", "navigate", "connection reset", nil)

	_, err := resolver.Resolve(context.Background(), "Memento")
	if !errors.Is(err, services.ErrNavigation) {
		t.Fatalf("expected navigation error, got %v", err)
	}
}

func TestResolveBlankTitleSkipsBrowsing(t *testing.T) {
	resolver, session := newTestResolver(t, map[string]string{})

	ref, err := resolver.Resolve(context.Background(), "   ")
	if err != nil || ref != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", ref, err)
	}
	if len(session.Visits) != 0 {
		t.Fatalf("expected no navigation, got %v", session.Visits)
	}
}

func TestNewResolverRequiresSession(t *testing.T) {
	if _, err := NewResolver(nil, testSite, time.Second, nil); err == nil {
		t.Fatal("expected error for nil session")
	}
}
