package contacts

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestExtractPageCombinesAllChannels(t *testing.T) {
	cf := encodeCFEmail("shield@acme.co.uk", 0x42)
	html := fmt.Sprintf(`<html><body>
		<a href="mailto:Info@Acme.co.uk?subject=Hi">Email us</a>
		<a href="tel:+44 20 7946 0958">Call</a>
		<span class="__cf_email__" data-cfemail="%s">[email protected]</span>
		<div data-email="hidden@acme.co.uk">contact</div>
		<p>Or reach sales@acme.co.uk directly, phone 020 7946 0958.</p>
	</body></html>`, cf)

	e := NewExtractor(&stubFetchClient{pages: map[string]string{"https://acme.co.uk/contact": html}})
	page := e.ExtractPage(context.Background(), "https://acme.co.uk/contact")

	wantEmails := []string{"info@acme.co.uk", "shield@acme.co.uk", "hidden@acme.co.uk", "sales@acme.co.uk"}
	for _, want := range wantEmails {
		if !contains(page.Emails, want) {
			t.Errorf("missing email %q in %v", want, page.Emails)
		}
	}
	if !contains(page.Phones, "+44 20 7946 0958") {
		t.Errorf("tel: link not extracted: %v", page.Phones)
	}
	if !contains(page.Phones, "020 7946 0958") {
		t.Errorf("text phone not extracted: %v", page.Phones)
	}
	if !strings.Contains(page.Text, "reach sales@acme.co.uk directly") {
		t.Errorf("page text not retained")
	}
}

func TestExtractPageDeduplicates(t *testing.T) {
	html := `<html><body>
		<a href="mailto:info@acme.com">one</a>
		<a href="mailto:INFO@ACME.COM">two</a>
		<p>info@acme.com</p>
	</body></html>`

	e := NewExtractor(&stubFetchClient{pages: map[string]string{"https://acme.com/": html}})
	page := e.ExtractPage(context.Background(), "https://acme.com/")

	if len(page.Emails) != 1 || page.Emails[0] != "info@acme.com" {
		t.Fatalf("expected single deduplicated email, got %v", page.Emails)
	}
}

func TestExtractPageEmailProtectionFragment(t *testing.T) {
	cf := encodeCFEmail("legal@acme.com", 0x7f)
	html := fmt.Sprintf(`<a href="/cdn-cgi/l/email-protection#%s">[email protected]</a>`, cf)

	e := NewExtractor(&stubFetchClient{pages: map[string]string{"https://acme.com/legal": html}})
	page := e.ExtractPage(context.Background(), "https://acme.com/legal")

	if !contains(page.Emails, "legal@acme.com") {
		t.Fatalf("email-protection fragment not decoded: %v", page.Emails)
	}
}

func TestExtractPageFetchFailureIsEmpty(t *testing.T) {
	e := NewExtractor(&stubFetchClient{})
	page := e.ExtractPage(context.Background(), "https://dead.example/")

	if len(page.Emails) != 0 || len(page.Phones) != 0 || page.Text != "" || len(page.Links) != 0 {
		t.Fatalf("fetch failure must produce an empty page: %+v", page)
	}
}

func TestExtractPageErrorStatusIsEmpty(t *testing.T) {
	e := NewExtractor(&stubFetchClient{
		pages:    map[string]string{"https://acme.com/gone": "<p>info@acme.com</p>"},
		statuses: map[string]int{"https://acme.com/gone": http.StatusNotFound},
	})
	page := e.ExtractPage(context.Background(), "https://acme.com/gone")

	if len(page.Emails) != 0 {
		t.Fatalf("404 page must contribute nothing, got %v", page.Emails)
	}
}

func TestExtractPageLinks(t *testing.T) {
	html := `<html><body>
		<a href="/about">About</a>
		<a href="https://acme.com/team#staff">Team</a>
		<a href="mailto:info@acme.com">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="https://other.example/page">elsewhere</a>
		<a href="#top">top</a>
	</body></html>`

	e := NewExtractor(&stubFetchClient{pages: map[string]string{"https://acme.com/": html}})
	page := e.ExtractPage(context.Background(), "https://acme.com/")

	want := []string{"https://acme.com/about", "https://acme.com/team", "https://other.example/page"}
	if len(page.Links) != len(want) {
		t.Fatalf("links = %v, want %v", page.Links, want)
	}
	for i := range want {
		if page.Links[i] != want[i] {
			t.Fatalf("links = %v, want %v", page.Links, want)
		}
	}
}

func TestDecodeCFEmail(t *testing.T) {
	enc := encodeCFEmail("info@acme.co.uk", 0xa3)
	got, err := decodeCFEmail(enc)
	if err != nil || got != "info@acme.co.uk" {
		t.Fatalf("round trip failed: %q, %v", got, err)
	}

	if _, err := decodeCFEmail("zz"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
	if _, err := decodeCFEmail("a3"); err == nil {
		t.Fatalf("expected error for key-only payload")
	}
}

func encodeCFEmail(email string, key byte) string {
	buf := []byte{key}
	for _, b := range []byte(email) {
		buf = append(buf, b^key)
	}
	return hex.EncodeToString(buf)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// stubFetchClient serves canned HTML for GET requests by URL and refuses
// anything unconfigured.
type stubFetchClient struct {
	pages    map[string]string
	statuses map[string]int
}

func (c *stubFetchClient) Do(req *http.Request) (*http.Response, error) {
	body, ok := c.pages[req.URL.String()]
	if !ok {
		return nil, errors.New("connection refused: " + req.URL.String())
	}
	status := http.StatusOK
	if s, ok := c.statuses[req.URL.String()]; ok {
		status = s
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}
