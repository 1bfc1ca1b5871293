package contacts

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// seedPaths are the likely-contact locations probed on every verified
// domain, resolved against its HTTPS root.
var seedPaths = []string{
	"",
	"contact",
	"contact-us",
	"contacts",
	"about",
	"about-us",
	"team",
	"imprint",
	"legal",
	"privacy",
}

// maxHomepageLinks caps how many homepage-linked internal pages are
// followed beyond the seed list.
const maxHomepageLinks = 3

// PageFetcher is the Discoverer's view of the Extractor.
type PageFetcher interface {
	ExtractPage(ctx context.Context, pageURL string) Page
}

// Discovery aggregates the signals found across one domain crawl.
type Discovery struct {
	Emails   []string
	Phones   []string
	HomeText string
}

// Discoverer walks a bounded set of pages on a verified domain, one fetch
// at a time. The pacing between fetches keeps the crawl under abuse
// thresholds and is part of the contract, not a tunable optimization.
type Discoverer struct {
	extractor PageFetcher
	limiter   *rate.Limiter
	log       *zap.Logger
}

// NewDiscoverer returns a Discoverer pacing its fetches by pause.
func NewDiscoverer(extractor PageFetcher, pause time.Duration, log *zap.Logger) *Discoverer {
	if pause <= 0 {
		pause = 200 * time.Millisecond
	}
	return &Discoverer{
		extractor: extractor,
		limiter:   rate.NewLimiter(rate.Every(pause), 1),
		log:       log,
	}
}

// Discover crawls the seed paths plus up to three same-origin homepage
// links, each URL at most once, and aggregates every email and phone
// signal found. The homepage body text is retained for brand matching.
func (d *Discoverer) Discover(ctx context.Context, domain string) Discovery {
	root := "https://" + domain + "/"
	visited := make(map[string]struct{})
	emails := newOrderedSet()
	phones := newOrderedSet()

	visit := func(pageURL string) Page {
		if _, dup := visited[pageURL]; dup {
			return Page{}
		}
		visited[pageURL] = struct{}{}
		if err := d.limiter.Wait(ctx); err != nil {
			return Page{}
		}
		page := d.extractor.ExtractPage(ctx, pageURL)
		for _, e := range page.Emails {
			emails.add(e)
		}
		for _, p := range page.Phones {
			phones.add(p)
		}
		return page
	}

	var homeText string
	for _, path := range seedPaths {
		page := visit(root + path)
		if path == "" {
			homeText = page.Text
		}
	}

	// A second homepage pass collects internal links the seed list missed.
	if err := d.limiter.Wait(ctx); err == nil {
		home := d.extractor.ExtractPage(ctx, root)
		if homeText == "" {
			homeText = home.Text
		}
		followed := 0
		for _, link := range home.Links {
			if followed >= maxHomepageLinks {
				break
			}
			if _, dup := visited[link]; dup {
				continue
			}
			if !sameOrigin(domain, link) {
				continue
			}
			visit(link)
			followed++
		}
	}

	d.log.Debug("contact crawl finished",
		zap.String("domain", domain),
		zap.Int("pages", len(visited)),
		zap.Int("emails", len(emails.values())),
		zap.Int("phones", len(phones.values())))

	return Discovery{
		Emails:   emails.values(),
		Phones:   phones.values(),
		HomeText: homeText,
	}
}

// sameOrigin reports whether a link stays on the crawled domain, comparing
// registrable domains so www-prefixed and bare hosts count as one origin.
func sameOrigin(domain, link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	target := registrable(strings.ToLower(domain))
	return target != "" && registrable(host) == target
}

func registrable(host string) string {
	host = strings.TrimPrefix(host, "www.")
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}
