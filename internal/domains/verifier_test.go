package domains

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
)

func TestVerifyDNSOnlyAlive(t *testing.T) {
	v := NewVerifier(
		WithResolver(&stubResolver{ip4: map[string][]net.IP{"acme.com": {net.ParseIP("93.184.216.34")}}}),
		WithHeadClient(&downHTTPClient{}),
		WithGetClient(&downHTTPClient{}),
	)

	res := v.Verify(context.Background(), "acme.com")
	if !res.DNSAlive || res.HTTPAlive || !res.OK {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestVerifyMXAloneCountsAsAlive(t *testing.T) {
	v := NewVerifier(
		WithResolver(&stubResolver{mx: map[string][]*net.MX{"acme.com": {{Host: "mail.acme.com", Pref: 10}}}}),
		WithHeadClient(&downHTTPClient{}),
		WithGetClient(&downHTTPClient{}),
	)

	res := v.Verify(context.Background(), "acme.com")
	if !res.DNSAlive || !res.OK {
		t.Fatalf("failed A/AAAA lookups must not veto a live MX: %+v", res)
	}
}

func TestVerifyHTTPHeadAlive(t *testing.T) {
	head := &stubHTTPClient{responses: map[string]int{"HEAD https://acme.com": http.StatusForbidden}}
	v := NewVerifier(
		WithResolver(&stubResolver{}),
		WithHeadClient(head),
		WithGetClient(&downHTTPClient{}),
	)

	res := v.Verify(context.Background(), "acme.com")
	if res.DNSAlive || !res.HTTPAlive || !res.OK {
		t.Fatalf("a 403 is still a received response: %+v", res)
	}
}

func TestVerifyHeadFallsBackToGet(t *testing.T) {
	get := &stubHTTPClient{
		responses: map[string]int{"GET https://www.acme.com": http.StatusServiceUnavailable},
		bodies:    map[string]string{"GET https://www.acme.com": strings.Repeat("x", 150)},
	}
	v := NewVerifier(
		WithResolver(&stubResolver{}),
		WithHeadClient(&downHTTPClient{}),
		WithGetClient(get),
	)

	res := v.Verify(context.Background(), "acme.com")
	if !res.HTTPAlive {
		t.Fatalf("GET with a substantial body should count as alive: %+v", res)
	}
}

func TestVerifyGetErrorStatusWithShortBodyIsDead(t *testing.T) {
	get := &stubHTTPClient{
		responses: map[string]int{"GET https://acme.com": http.StatusInternalServerError},
		bodies:    map[string]string{"GET https://acme.com": "tiny"},
	}
	v := NewVerifier(
		WithResolver(&stubResolver{}),
		WithHeadClient(&downHTTPClient{}),
		WithGetClient(get),
	)

	res := v.Verify(context.Background(), "acme.com")
	if res.HTTPAlive || res.OK {
		t.Fatalf("5xx with a trivial body is not alive: %+v", res)
	}
}

func TestVerifyAllProbesFail(t *testing.T) {
	v := NewVerifier(
		WithResolver(&stubResolver{}),
		WithHeadClient(&downHTTPClient{}),
		WithGetClient(&downHTTPClient{}),
	)

	res := v.Verify(context.Background(), "no-such-domain.example")
	if res.OK || res.DNSAlive || res.HTTPAlive {
		t.Fatalf("expected fully negative verdict: %+v", res)
	}
}

func TestVerifyProbesURLFormsInOrder(t *testing.T) {
	head := &stubHTTPClient{responses: map[string]int{"HEAD http://acme.com": http.StatusOK}}
	v := NewVerifier(
		WithResolver(&stubResolver{}),
		WithHeadClient(head),
		WithGetClient(&downHTTPClient{}),
	)

	if res := v.Verify(context.Background(), "acme.com"); !res.HTTPAlive {
		t.Fatalf("expected http form to answer: %+v", res)
	}
	want := []string{
		"HEAD https://acme.com",
		"HEAD https://www.acme.com",
		"HEAD http://acme.com",
	}
	calls := head.Calls()
	if len(calls) != len(want) {
		t.Fatalf("unexpected probe sequence: %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("probe %d = %s, want %s", i, calls[i], want[i])
		}
	}
}

type stubResolver struct {
	ip4 map[string][]net.IP
	ip6 map[string][]net.IP
	mx  map[string][]*net.MX
}

func (s *stubResolver) LookupIP(_ context.Context, network, host string) ([]net.IP, error) {
	m := s.ip4
	if network == "ip6" {
		m = s.ip6
	}
	if ips := m[host]; len(ips) > 0 {
		return ips, nil
	}
	return nil, errors.New("no such host")
}

func (s *stubResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if mxs := s.mx[name]; len(mxs) > 0 {
		return mxs, nil
	}
	return nil, errors.New("no mx records")
}

// stubHTTPClient answers only configured "METHOD URL" keys and refuses the
// rest, because the verifier treats any received response as a live signal.
type stubHTTPClient struct {
	responses map[string]int
	bodies    map[string]string

	mu    sync.Mutex
	calls []string
}

func (c *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.String()
	c.mu.Lock()
	c.calls = append(c.calls, key)
	c.mu.Unlock()

	status, ok := c.responses[key]
	if !ok {
		return nil, errors.New("connection refused: " + key)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(c.bodies[key])),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func (c *stubHTTPClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type downHTTPClient struct{}

func (d *downHTTPClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("network down")
}
