// Package domains discovers and verifies live web domains for a company
// name: candidate generation, DNS/HTTP probing and best-candidate selection.
package domains

import (
	"sort"
	"strings"

	"golang.org/x/net/idna"

	"github.com/oakmere-data/enricher/internal/scoring"
)

// Candidate is a generated, not-yet-verified domain with its static score.
type Candidate struct {
	Domain string
	Score  int
}

// ukCountries are the country-hint spellings that promote UK TLDs.
var ukCountries = map[string]struct{}{
	"uk":               {},
	"united kingdom":   {},
	"england":          {},
	"scotland":         {},
	"wales":            {},
	"northern ireland": {},
}

var (
	ukTLDs      = []string{".co.uk", ".uk", ".com", ".net", ".org"}
	genericTLDs = []string{".com", ".net", ".org", ".io", ".co"}
)

// Generate expands a normalized company name into scored domain candidates,
// deduplicated and ordered by non-increasing score. The sort is stable, so
// equal scores keep generation order, which in turn decides what is probed
// first. An empty normalized name yields nil.
func Generate(normalized, country string, w scoring.Weights) []Candidate {
	variants := Variants(normalized)
	if len(variants) == 0 {
		return nil
	}
	tlds := TLDs(country)

	seen := make(map[string]struct{}, len(variants)*len(tlds))
	out := make([]Candidate, 0, len(variants)*len(tlds))
	for _, variant := range variants {
		ascii, err := idna.Lookup.ToASCII(variant)
		if err != nil {
			continue
		}
		for _, tld := range tlds {
			domain := ascii + tld
			if _, dup := seen[domain]; dup {
				continue
			}
			seen[domain] = struct{}{}
			out = append(out, Candidate{Domain: domain, Score: scoring.Domain(domain, w)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Variants produces the name forms tried as domain labels: concatenated,
// hyphenated, vowel-stripped, first+last-word combinations and
// initials-plus-last-word. Duplicates collapse while keeping first position.
func Variants(normalized string) []string {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return nil
	}

	var out []string
	add := func(v string) {
		if v == "" {
			return
		}
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}

	concat := strings.Join(tokens, "")
	add(concat)
	add(strings.Join(tokens, "-"))
	// Vowel stripping below five characters produces nonsense labels.
	if len(concat) >= 5 {
		add(stripVowels(concat))
	}
	if len(tokens) >= 2 {
		first, last := tokens[0], tokens[len(tokens)-1]
		add(first + last)
		add(first + "-" + last)
	}
	if len(tokens) >= 3 {
		var initials strings.Builder
		for _, tok := range tokens[:len(tokens)-1] {
			initials.WriteRune([]rune(tok)[0])
		}
		add(initials.String() + tokens[len(tokens)-1])
	}
	return out
}

// TLDs returns the priority-ordered TLD list for a country hint. UK hints
// put .co.uk first; everything else starts at .com.
func TLDs(country string) []string {
	if _, uk := ukCountries[strings.ToLower(strings.TrimSpace(country))]; uk {
		return ukTLDs
	}
	return genericTLDs
}

func stripVowels(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
