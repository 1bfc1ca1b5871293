package domains

import (
	"strings"
	"testing"

	"github.com/oakmere-data/enricher/internal/scoring"
)

func TestGenerateSortedAndNonEmpty(t *testing.T) {
	w := scoring.DefaultWeights()
	got := Generate("acme widgets", "uk", w)
	if len(got) == 0 {
		t.Fatalf("expected candidates for a non-empty name")
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("candidates not sorted by non-increasing score: %v before %v", got[i-1], got[i])
		}
	}
}

func TestGenerateUKOrderPrefersCoUK(t *testing.T) {
	w := scoring.DefaultWeights()
	got := Generate("acme widgets", "United Kingdom", w)
	if !strings.HasSuffix(got[0].Domain, ".co.uk") {
		t.Fatalf("UK hint should rank a .co.uk candidate first, got %s", got[0].Domain)
	}

	seen := map[string]bool{}
	for _, c := range got {
		seen[c.Domain] = true
		if strings.HasSuffix(c.Domain, ".io") {
			t.Fatalf("generic TLD %s leaked into UK candidate set", c.Domain)
		}
	}
	if !seen["acmewidgets.co.uk"] || !seen["acme-widgets.co.uk"] {
		t.Fatalf("expected concatenated and hyphenated .co.uk candidates, got %v", got)
	}
}

func TestGenerateGenericOrder(t *testing.T) {
	w := scoring.DefaultWeights()
	got := Generate("acme", "", w)
	for _, c := range got {
		if strings.HasSuffix(c.Domain, ".co.uk") || strings.HasSuffix(c.Domain, ".uk") {
			t.Fatalf("UK TLD %s generated without a UK hint", c.Domain)
		}
	}
	if got[0].Domain != "acme.com" {
		t.Fatalf("expected acme.com to rank first, got %s", got[0].Domain)
	}
}

func TestGenerateEmptyName(t *testing.T) {
	if got := Generate("", "uk", scoring.DefaultWeights()); got != nil {
		t.Fatalf("expected nil candidates for empty name, got %v", got)
	}
}

func TestGenerateDeduplicates(t *testing.T) {
	// A single token collapses most variants into one label.
	got := Generate("acme", "uk", scoring.DefaultWeights())
	seen := map[string]bool{}
	for _, c := range got {
		if seen[c.Domain] {
			t.Fatalf("duplicate candidate %s", c.Domain)
		}
		seen[c.Domain] = true
	}
	if len(got) != len(TLDs("uk")) {
		t.Fatalf("expected one candidate per TLD, got %d", len(got))
	}
}

func TestVariants(t *testing.T) {
	got := Variants("acme widgets")
	want := []string{"acmewidgets", "acme-widgets", "cmwdgts"}
	if len(got) != len(want) {
		t.Fatalf("Variants = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Variants = %v, want %v", got, want)
		}
	}
}

func TestVariantsThreeTokensAddInitials(t *testing.T) {
	got := Variants("alpha beta gamma")
	has := func(v string) bool {
		for _, g := range got {
			if g == v {
				return true
			}
		}
		return false
	}
	for _, v := range []string{"alphabetagamma", "alpha-beta-gamma", "lphbtgmm", "alphagamma", "alpha-gamma", "abgamma"} {
		if !has(v) {
			t.Fatalf("missing variant %q in %v", v, got)
		}
	}
}

func TestVariantsShortNameSkipsVowelStripping(t *testing.T) {
	got := Variants("acme")
	if len(got) != 1 || got[0] != "acme" {
		t.Fatalf("Variants(acme) = %v, want just [acme]", got)
	}
}

func TestTLDs(t *testing.T) {
	if tlds := TLDs("Northern Ireland"); tlds[0] != ".co.uk" {
		t.Fatalf("expected .co.uk first for NI, got %v", tlds)
	}
	if tlds := TLDs("France"); tlds[0] != ".com" {
		t.Fatalf("expected .com first for non-UK, got %v", tlds)
	}
	if tlds := TLDs(""); tlds[0] != ".com" {
		t.Fatalf("expected .com first for empty hint, got %v", tlds)
	}
}
