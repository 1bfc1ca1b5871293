package contacts

import (
	"regexp"
	"strings"

	"github.com/oakmere-data/enricher/internal/scoring"
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)

// BestEmail picks the highest-scoring plausible address from the collected
// signals. Addresses on the preferred (resolved company) domain outrank
// every off-domain address; scoring applies within the chosen partition and
// ties keep encounter order.
func BestEmail(emails []string, preferredDomain string, w scoring.Weights) string {
	preferredDomain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(preferredDomain)), "www.")

	var preferred, others []string
	for _, raw := range emails {
		addr := strings.ToLower(strings.TrimSpace(raw))
		if addr == "" || !emailPattern.MatchString(addr) {
			continue
		}
		if preferredDomain != "" && emailDomain(addr) == preferredDomain {
			preferred = append(preferred, addr)
		} else {
			others = append(others, addr)
		}
	}

	pool := preferred
	if len(pool) == 0 {
		pool = others
	}

	var best string
	bestScore := -1.0
	for _, addr := range pool {
		if s := scoring.Email(addr, w); s > bestScore {
			best, bestScore = addr, s
		}
	}
	return best
}

// BestPhone normalizes and scores the collected phone signals, returning
// the best plausible number or "" when none survives the filter.
func BestPhone(phones []string, w scoring.Weights) string {
	var best string
	bestScore := -1.0
	for _, raw := range phones {
		normalized := NormalizePhone(raw)
		if normalized == "" {
			continue
		}
		if s := scoring.Phone(normalized, w); s > bestScore {
			best, bestScore = normalized, s
		}
	}
	return best
}

// NormalizePhone reduces a raw phone string to digits with an optional
// leading plus, rewriting a leading "0044" or bare "44" to "+44". Results
// outside 10 to 15 digits are implausible and collapse to "".
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	s := b.String()

	switch {
	case strings.HasPrefix(s, "0044"):
		s = "+44" + s[4:]
	case strings.HasPrefix(s, "44"):
		s = "+44" + s[2:]
	}

	digits := len(strings.TrimPrefix(s, "+"))
	if digits < 10 || digits > 15 {
		return ""
	}
	return s
}

func emailDomain(addr string) string {
	_, domain, _ := strings.Cut(addr, "@")
	return strings.TrimPrefix(domain, "www.")
}
