// Package sic maps UK SIC 2007 codes to their top-level section labels.
package sic

import (
	"strconv"
	"strings"
	"unicode"
)

// Section is one of the 21 SIC 2007 sections, addressed by the range of
// two-digit divisions it covers.
type Section struct {
	Low   int
	High  int
	Label string
}

// sections covers divisions 1-99 in ascending order. The gaps (04, 34, 40,
// 44, 48, 54, 57, 67, 76, 83, 89) are unassigned in SIC 2007 and stay
// unmapped here.
var sections = []Section{
	{1, 3, "A — Agriculture, Forestry & Fishing"},
	{5, 9, "B — Mining & Quarrying"},
	{10, 33, "C — Manufacturing"},
	{35, 35, "D — Electricity, Gas, Steam & Air Conditioning"},
	{36, 39, "E — Water Supply, Sewerage & Waste Management"},
	{41, 43, "F — Construction"},
	{45, 47, "G — Wholesale & Retail Trade"},
	{49, 53, "H — Transportation & Storage"},
	{55, 56, "I — Accommodation & Food Service"},
	{58, 63, "J — Information & Communication"},
	{64, 66, "K — Financial & Insurance Activities"},
	{68, 68, "L — Real Estate Activities"},
	{69, 75, "M — Professional, Scientific & Technical"},
	{77, 82, "N — Administrative & Support Services"},
	{84, 84, "O — Public Administration & Defence"},
	{85, 85, "P — Education"},
	{86, 88, "Q — Human Health & Social Work"},
	{90, 93, "R — Arts, Entertainment & Recreation"},
	{94, 96, "S — Other Service Activities"},
	{97, 98, "T — Households as Employers"},
	{99, 99, "U — Extraterritorial Organisations"},
}

// Label resolves one raw code to its section label via the first two
// characters. Codes shorter than two characters are used whole. Malformed
// or unmapped codes report ok = false.
func Label(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	prefix := code
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	division, err := strconv.Atoi(prefix)
	if err != nil {
		return "", false
	}
	for _, s := range sections {
		if division >= s.Low && division <= s.High {
			return s.Label, true
		}
	}
	return "", false
}

// Classify resolves a list of raw codes into a deduplicated label string
// joined with "; ". Unmappable codes contribute nothing; an empty result
// means no code could be classified.
func Classify(codes []string) string {
	seen := make(map[string]struct{}, len(codes))
	var labels []string
	for _, code := range codes {
		label, ok := Label(code)
		if !ok {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return strings.Join(labels, "; ")
}

// SplitCodes splits a stored code field on the delimiters seen in record
// data (commas, semicolons, pipes, whitespace).
func SplitCodes(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || unicode.IsSpace(r)
	})
}
