// Package contacts crawls verified domains for public contact signals and
// picks the best email and phone number.
package contacts

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/oakmere-data/enricher/internal/httpx"
)

// HTTPClient abstracts the fetch client so tests can stub transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var (
	emailScanPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneScanPattern = regexp.MustCompile(`(?:(?:\+|00)\d{1,3}[\s\-.]?)?\(?\d{2,4}\)?[\s\-.]?\d{3,4}[\s\-.]?\d{3,4}`)
)

const maxPageBody = 2 << 20

// Page carries everything harvested from one URL.
type Page struct {
	Emails []string
	Phones []string
	Text   string
	Links  []string
}

// Extractor fetches a single page and pulls contact signals out of its
// markup. Fetch failures of any kind yield an empty Page, never an error:
// a page that cannot be read simply contributes no signals.
type Extractor struct {
	client HTTPClient
}

// NewExtractor returns an Extractor using the given client; nil selects a
// default client with a 6s timeout and 3 redirects.
func NewExtractor(client HTTPClient) *Extractor {
	if client == nil {
		client = httpx.NewClient(6*time.Second, 3)
	}
	return &Extractor{client: client}
}

// ExtractPage fetches one URL and returns its contact signals, body text
// and outgoing links. The extraction channels (mailto/tel links, decoded
// scrape-shield attributes, data attributes, full-text scan) all apply
// cumulatively; signal sets are deduplicated in encounter order.
func (e *Extractor) ExtractPage(ctx context.Context, pageURL string) Page {
	doc := e.fetch(ctx, pageURL)
	if doc == nil {
		return Page{}
	}
	text := doc.Text()
	return Page{
		Emails: collectEmails(doc, text),
		Phones: collectPhones(doc, text),
		Text:   text,
		Links:  collectLinks(doc, pageURL),
	}
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) *goquery.Document {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil
	}
	httpx.SetBrowserHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return nil
	}
	return doc
}

func collectEmails(doc *goquery.Document, text string) []string {
	set := newOrderedSet()

	doc.Find("a[href^='mailto:']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		email := strings.TrimPrefix(href, "mailto:")
		email, _, _ = strings.Cut(email, "?")
		email, _, _ = strings.Cut(email, "#")
		set.add(cleanEmail(email))
	})

	// Cloudflare scrape-shield markup carries the address XOR-encoded with
	// the first byte as key, either in a data attribute or a link fragment.
	doc.Find("[data-cfemail]").Each(func(_ int, s *goquery.Selection) {
		enc, ok := s.Attr("data-cfemail")
		if !ok {
			return
		}
		if email, err := decodeCFEmail(enc); err == nil {
			set.add(cleanEmail(email))
		}
	})
	doc.Find("a[href*='/cdn-cgi/l/email-protection#']").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		_, enc, ok := strings.Cut(href, "#")
		if !ok {
			return
		}
		if email, err := decodeCFEmail(enc); err == nil {
			set.add(cleanEmail(email))
		}
	})

	doc.Find("[data-email], [data-mail], [data-contact]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"data-email", "data-mail", "data-contact"} {
			if v, ok := s.Attr(attr); ok {
				if m := emailScanPattern.FindString(v); m != "" {
					set.add(cleanEmail(m))
				}
			}
		}
	})

	for _, m := range emailScanPattern.FindAllString(text, -1) {
		set.add(cleanEmail(m))
	}

	return set.values()
}

func collectPhones(doc *goquery.Document, text string) []string {
	set := newOrderedSet()

	doc.Find("a[href^='tel:']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		phone := strings.TrimPrefix(href, "tel:")
		phone, _, _ = strings.Cut(phone, "?")
		set.add(strings.TrimSpace(phone))
	})

	for _, m := range phoneScanPattern.FindAllString(text, -1) {
		set.add(strings.TrimSpace(m))
	}

	return set.values()
}

func collectLinks(doc *goquery.Document, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	set := newOrderedSet()
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := baseURL.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""
		set.add(abs.String())
	})
	return set.values()
}

// decodeCFEmail reverses the scrape-shield obfuscation: the payload is hex,
// the first byte is the XOR key for the rest.
func decodeCFEmail(encoded string) (string, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode cfemail: %w", err)
	}
	if len(raw) < 2 {
		return "", errors.New("cfemail payload too short")
	}
	key := raw[0]
	out := make([]byte, 0, len(raw)-1)
	for _, b := range raw[1:] {
		out = append(out, b^key)
	}
	return string(out), nil
}

func cleanEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

type orderedSet struct {
	seen map[string]struct{}
	vals []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, dup := s.seen[v]; dup {
		return
	}
	s.seen[v] = struct{}{}
	s.vals = append(s.vals, v)
}

func (s *orderedSet) values() []string {
	return s.vals
}
