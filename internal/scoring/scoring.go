// Package scoring holds the pure ranking heuristics shared by domain
// selection and contact ranking. Every function is deterministic over its
// inputs, keeping the heuristics unit-testable apart from orchestration.
package scoring

import (
	"regexp"
	"strings"

	"github.com/oakmere-data/enricher/internal/names"
)

// freeMailProviders are consumer mailboxes; an address hosted on one of
// these is less likely to be the company's own contact point.
var freeMailProviders = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"live.com",
	"aol.com",
	"icloud.com",
	"proton.me",
	"protonmail.com",
}

// emailPrefixes orders local-part prefixes from most to least preferred.
var emailPrefixes = []string{"info", "contact", "hello", "support", "enquiries"}

var ukPhonePattern = regexp.MustCompile(`^\+44\d{9,11}$`)

// Weights carries the tunable constants of the heuristics. The defaults were
// tuned empirically against UK company data; treat them as configuration,
// not invariants.
type Weights struct {
	TLDCoUK       int
	TLDCom        int
	HyphenPenalty int
	ShortBonus    int
	ShortLength   int

	NoTagBonus    float64
	PaidMailBonus float64

	UKShapeBonus  float64
	PhoneLenBonus float64

	BrandThreshold float64
}

// DefaultWeights returns the tuned default weights.
func DefaultWeights() Weights {
	return Weights{
		TLDCoUK:        6,
		TLDCom:         5,
		HyphenPenalty:  1,
		ShortBonus:     1,
		ShortLength:    12,
		NoTagBonus:     0.5,
		PaidMailBonus:  0.5,
		UKShapeBonus:   2,
		PhoneLenBonus:  0.5,
		BrandThreshold: 0.4,
	}
}

// Domain scores a candidate domain. TLD preference dominates; hyphenated
// names are penalized and short domains get a small bonus.
func Domain(domain string, w Weights) int {
	score := 0
	switch {
	case strings.HasSuffix(domain, ".co.uk"):
		score += w.TLDCoUK
	case strings.HasSuffix(domain, ".com"):
		score += w.TLDCom
	}
	if strings.Contains(domain, "-") {
		score -= w.HyphenPenalty
	}
	if len(domain) <= w.ShortLength {
		score += w.ShortBonus
	}
	return score
}

// Email scores a single lowercase address. Partitioning by preferred domain
// happens in the ranker; this only scores the address itself.
func Email(addr string, w Weights) float64 {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok {
		return 0
	}

	var score float64
	for i, prefix := range emailPrefixes {
		if strings.HasPrefix(local, prefix) {
			score += float64(len(emailPrefixes) - i)
			break
		}
	}
	if !strings.Contains(local, "+") {
		score += w.NoTagBonus
	}
	if !IsFreeMailProvider(domain) {
		score += w.PaidMailBonus
	}
	return score
}

// Phone scores an already-normalized phone string (digits with an optional
// leading plus). UK-shaped numbers score highest.
func Phone(normalized string, w Weights) float64 {
	if normalized == "" {
		return 0
	}
	var score float64
	if ukPhonePattern.MatchString(normalized) {
		score += w.UKShapeBonus
	}
	if n := len(normalized); n >= 11 && n <= 13 {
		score += w.PhoneLenBonus
	}
	return score
}

// Brand returns the fraction of the company's name tokens (length >= 3)
// present as substrings of the page text, in [0, 1]. Callers decide
// confidence by comparing against Weights.BrandThreshold.
func Brand(name, pageText string) float64 {
	if pageText == "" {
		return 0
	}
	text := strings.ToLower(pageText)

	var total, found int
	for _, tok := range names.Tokens(name) {
		if len(tok) < 3 {
			continue
		}
		total++
		if strings.Contains(text, tok) {
			found++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(found) / float64(total)
}

// IsFreeMailProvider reports whether the mail domain is a known consumer
// provider.
func IsFreeMailProvider(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, free := range freeMailProviders {
		if domain == free {
			return true
		}
	}
	return false
}
