package contacts

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDiscoverVisitsSeedPaths(t *testing.T) {
	f := &stubFetcher{pages: map[string]Page{
		"https://acme.co.uk/":        {Emails: []string{"info@acme.co.uk"}, Text: "Welcome to Acme"},
		"https://acme.co.uk/contact": {Emails: []string{"sales@acme.co.uk"}, Phones: []string{"020 7946 0958"}},
	}}
	d := NewDiscoverer(f, time.Millisecond, zap.NewNop())

	got := d.Discover(context.Background(), "acme.co.uk")

	for _, path := range []string{"", "contact", "contact-us", "contacts", "about", "about-us", "team", "imprint", "legal", "privacy"} {
		url := "https://acme.co.uk/" + path
		if f.count(url) == 0 {
			t.Errorf("seed %q never fetched", url)
		}
	}
	if !contains(got.Emails, "info@acme.co.uk") || !contains(got.Emails, "sales@acme.co.uk") {
		t.Errorf("emails not aggregated: %v", got.Emails)
	}
	if !contains(got.Phones, "020 7946 0958") {
		t.Errorf("phones not aggregated: %v", got.Phones)
	}
	if got.HomeText != "Welcome to Acme" {
		t.Errorf("HomeText = %q", got.HomeText)
	}
}

func TestDiscoverRefetchesHomepageForLinks(t *testing.T) {
	f := &stubFetcher{pages: map[string]Page{
		"https://acme.co.uk/": {Links: []string{"https://acme.co.uk/people"}},
	}}
	d := NewDiscoverer(f, time.Millisecond, zap.NewNop())

	d.Discover(context.Background(), "acme.co.uk")

	if n := f.count("https://acme.co.uk/"); n != 2 {
		t.Fatalf("homepage fetched %d times, want 2", n)
	}
	if f.count("https://acme.co.uk/people") != 1 {
		t.Fatalf("homepage link not followed")
	}
}

func TestDiscoverFollowsAtMostThreeSameOriginLinks(t *testing.T) {
	f := &stubFetcher{pages: map[string]Page{
		"https://acme.co.uk/": {Links: []string{
			"https://acme.co.uk/a",
			"https://www.acme.co.uk/b",
			"https://other.example/x",
			"https://acme.co.uk/c",
			"https://acme.co.uk/d",
		}},
	}}
	d := NewDiscoverer(f, time.Millisecond, zap.NewNop())

	d.Discover(context.Background(), "acme.co.uk")

	for _, url := range []string{"https://acme.co.uk/a", "https://www.acme.co.uk/b", "https://acme.co.uk/c"} {
		if f.count(url) != 1 {
			t.Errorf("same-origin link %q not followed", url)
		}
	}
	if f.count("https://acme.co.uk/d") != 0 {
		t.Errorf("fourth same-origin link must not be followed")
	}
	if f.count("https://other.example/x") != 0 {
		t.Errorf("external link must not be followed")
	}
}

func TestDiscoverSkipsAlreadyVisitedLinks(t *testing.T) {
	f := &stubFetcher{pages: map[string]Page{
		"https://acme.co.uk/": {Links: []string{
			"https://acme.co.uk/contact",
			"https://acme.co.uk/about",
			"https://acme.co.uk/fresh",
		}},
	}}
	d := NewDiscoverer(f, time.Millisecond, zap.NewNop())

	d.Discover(context.Background(), "acme.co.uk")

	if f.count("https://acme.co.uk/contact") != 1 {
		t.Errorf("seed page fetched again via homepage link")
	}
	if f.count("https://acme.co.uk/fresh") != 1 {
		t.Errorf("unvisited homepage link skipped")
	}
}

func TestDiscoverDeduplicatesContacts(t *testing.T) {
	f := &stubFetcher{pages: map[string]Page{
		"https://acme.co.uk/":        {Emails: []string{"info@acme.co.uk"}},
		"https://acme.co.uk/contact": {Emails: []string{"info@acme.co.uk", "sales@acme.co.uk"}},
	}}
	d := NewDiscoverer(f, time.Millisecond, zap.NewNop())

	got := d.Discover(context.Background(), "acme.co.uk")

	if len(got.Emails) != 2 {
		t.Fatalf("emails = %v, want 2 unique", got.Emails)
	}
	if got.Emails[0] != "info@acme.co.uk" || got.Emails[1] != "sales@acme.co.uk" {
		t.Fatalf("encounter order not preserved: %v", got.Emails)
	}
}

func TestDiscoverCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &stubFetcher{pages: map[string]Page{
		"https://acme.co.uk/": {Emails: []string{"info@acme.co.uk"}},
	}}
	d := NewDiscoverer(f, time.Millisecond, zap.NewNop())

	got := d.Discover(ctx, "acme.co.uk")

	if len(got.Emails) != 0 {
		t.Fatalf("cancelled discovery must return nothing, got %v", got.Emails)
	}
}

// stubFetcher returns canned pages by URL and counts fetches.
type stubFetcher struct {
	pages map[string]Page

	mu    sync.Mutex
	calls map[string]int
}

func (f *stubFetcher) ExtractPage(ctx context.Context, url string) Page {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	f.mu.Unlock()
	return f.pages[url]
}

func (f *stubFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}
