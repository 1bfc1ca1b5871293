// Package httpx builds the HTTP clients and the DNS resolver used by the
// enrichment engine. Probe traffic is browser-like and every client carries
// a hard timeout and a redirect cap.
package httpx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Headers sent on every probe and page fetch. A number of small-business
// sites refuse unknown agents outright.
const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	AcceptLanguage = "en-GB,en;q=0.9"
	Accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// NewClient returns a client with the given total timeout and redirect cap.
// Hitting the cap surfaces the last response rather than an error, so a
// redirect-looping site still counts as reachable.
func NewClient(timeout time.Duration, maxRedirects int) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// SetBrowserHeaders applies the standard probe headers to a request.
func SetBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", AcceptLanguage)
	req.Header.Set("Accept", Accept)
}

// NewPinnedResolver returns a resolver that bypasses the host's configured
// DNS and queries the given servers directly, trying each in turn. An empty
// server list falls back to the default resolver.
func NewPinnedResolver(servers []string) *net.Resolver {
	if len(servers) == 0 {
		return net.DefaultResolver
	}
	dialer := &net.Dialer{Timeout: 2 * time.Second}
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var lastErr error
			for _, server := range servers {
				conn, err := dialer.DialContext(ctx, network, server)
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			return nil, fmt.Errorf("dial pinned resolvers: %w", lastErr)
		},
	}
}
