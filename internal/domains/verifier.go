package domains

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/oakmere-data/enricher/internal/httpx"
)

// DNSResolver is the subset of net.Resolver the verifier needs.
type DNSResolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// HTTPClient abstracts the probe clients so tests can stub transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is the liveness verdict for one candidate domain.
type Result struct {
	Domain    string
	DNSAlive  bool
	HTTPAlive bool
	OK        bool
}

// Verifier probes candidate domains over DNS and HTTP. Every network
// failure is a negative probe result; Verify never returns an error.
type Verifier struct {
	resolver   DNSResolver
	headClient HTTPClient
	getClient  HTTPClient
	dnsTimeout time.Duration
}

// VerifierOption customizes a Verifier.
type VerifierOption func(*Verifier)

// WithResolver overrides the DNS resolver.
func WithResolver(r DNSResolver) VerifierOption {
	return func(v *Verifier) { v.resolver = r }
}

// WithHeadClient overrides the client used for HEAD probes.
func WithHeadClient(c HTTPClient) VerifierOption {
	return func(v *Verifier) { v.headClient = c }
}

// WithGetClient overrides the client used for GET fallback probes.
func WithGetClient(c HTTPClient) VerifierOption {
	return func(v *Verifier) { v.getClient = c }
}

// WithDNSTimeout overrides the deadline applied to the DNS probes per domain.
func WithDNSTimeout(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.dnsTimeout = d }
}

// NewVerifier returns a Verifier with production defaults: a resolver
// pinned to public DNS (local resolvers disagree too often to trust) and
// probe clients with hard timeouts and capped redirects.
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{
		resolver:   httpx.NewPinnedResolver([]string{"1.1.1.1:53", "8.8.8.8:53"}),
		headClient: httpx.NewClient(4*time.Second, 2),
		getClient:  httpx.NewClient(8*time.Second, 2),
		dnsTimeout: 3500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify probes one domain. DNS and HTTP run concurrently; the domain is OK
// if either side reports alive.
func (v *Verifier) Verify(ctx context.Context, domain string) Result {
	var dnsAlive, httpAlive bool

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dnsAlive = v.dnsAlive(ctx, domain)
	}()
	go func() {
		defer wg.Done()
		httpAlive = v.httpAlive(ctx, domain)
	}()
	wg.Wait()

	return Result{
		Domain:    domain,
		DNSAlive:  dnsAlive,
		HTTPAlive: httpAlive,
		OK:        dnsAlive || httpAlive,
	}
}

// dnsAlive reports whether any of A, AAAA or MX resolves to a non-empty
// answer. The three lookups run in parallel and fail independently; a dead
// MX never vetoes a live A record.
func (v *Verifier) dnsAlive(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, v.dnsTimeout)
	defer cancel()

	alive := make([]bool, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		ips, err := v.resolver.LookupIP(ctx, "ip4", domain)
		alive[0] = err == nil && len(ips) > 0
	}()
	go func() {
		defer wg.Done()
		ips, err := v.resolver.LookupIP(ctx, "ip6", domain)
		alive[1] = err == nil && len(ips) > 0
	}()
	go func() {
		defer wg.Done()
		mxs, err := v.resolver.LookupMX(ctx, domain)
		alive[2] = err == nil && len(mxs) > 0
	}()
	wg.Wait()

	return alive[0] || alive[1] || alive[2]
}

// httpAlive walks the four URL forms with HEAD probes, then falls back to
// GET probes when every HEAD attempt failed. Any received response counts:
// parked and misconfigured servers still prove the domain exists.
func (v *Verifier) httpAlive(ctx context.Context, domain string) bool {
	for _, u := range urlForms(domain) {
		if v.headAlive(ctx, u) {
			return true
		}
	}
	for _, u := range urlForms(domain) {
		if v.getAlive(ctx, u) {
			return true
		}
	}
	return false
}

func (v *Verifier) headAlive(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	httpx.SetBrowserHeaders(req)

	resp, err := v.headClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode > 0 && resp.StatusCode < 600
}

func (v *Verifier) getAlive(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	httpx.SetBrowserHeaders(req)

	resp, err := v.getClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return true
	}
	// Some parked hosts answer errors with a real page; a substantial body
	// is still a liveness signal.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return len(body) > 100
}

func urlForms(domain string) []string {
	return []string{
		"https://" + domain,
		"https://www." + domain,
		"http://" + domain,
		"http://www." + domain,
	}
}
