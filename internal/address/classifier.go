// Package address provides pure predicates over free-text trip addresses:
// home/work matching, area keyword matching, business-keyword detection, and
// street-number parsing for nearby-address search.
package address

import (
	"sort"
	"strings"
)

// businessKeywords flags addresses that look like known business locations
// (fuel, retail, office). Matched as substrings of the normalized address.
var businessKeywords = []string{
	"gas", "station", "fuel", "shell", "chevron", "76", "arco", "bp",
	"costco", "safeway", "store", "market", "shop",
	"customer", "client", "office",
}

// citySuffixes are trailing tokens stripped from extracted street names so
// "61st ln ne kenmore" and "61st ln ne" compare equal.
var citySuffixes = []string{
	" wa", " washington", " or", " oregon",
	" seattle", " bothell", " kenmore", " woodinville",
}

// Normalize trims and lowercases an address for comparison.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Matcher answers location predicates against the configured home and work
// addresses. The zero value matches nothing.
type Matcher struct {
	home string // normalized
	work string // normalized
}

// NewMatcher creates a Matcher for the given home and work addresses.
func NewMatcher(home, work string) *Matcher {
	return &Matcher{home: Normalize(home), work: Normalize(work)}
}

// IsHome reports whether addr is the home address. Containment runs both
// ways so a partial export address still matches the full configured one.
func (m *Matcher) IsHome(addr string) bool {
	return containsEither(Normalize(addr), m.home)
}

// IsWork reports whether addr is the work address.
func (m *Matcher) IsWork(addr string) bool {
	return containsEither(Normalize(addr), m.work)
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// InArea reports whether any of the area keywords appears in the address.
func InArea(addr string, keywords []string) bool {
	norm := Normalize(addr)
	if norm == "" {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(norm, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IsBusinessLocation reports whether the address matches the fixed
// fuel/retail/office keyword set.
func IsBusinessLocation(addr string) bool {
	return InArea(addr, businessKeywords)
}

// ExtractStreetInfo pulls the street number and street name out of a
// free-text address. The first all-digit token (dashes ignored) is the
// number; the remaining tokens, minus a known trailing city/state suffix,
// are the street name. ok is false when no numeric token exists.
func ExtractStreetInfo(addr string) (number int, street string, ok bool) {
	parts := strings.Fields(Normalize(addr))

	for i, part := range parts {
		digits := strings.ReplaceAll(part, "-", "")
		if digits == "" || !allDigits(digits) {
			continue
		}
		number = atoiDigits(digits)
		street = strings.Join(parts[i+1:], " ")
		for _, suffix := range citySuffixes {
			if strings.HasSuffix(street, suffix) {
				street = street[:len(street)-len(suffix)]
				break
			}
		}
		return number, strings.TrimSpace(street), true
	}
	return 0, "", false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func atoiDigits(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// Nearby is a candidate address on the same street within the allowed
// street-number distance.
type Nearby struct {
	Address    string
	Name       string
	NumberDiff int
}

// FindNearby returns candidates whose street name fuzzy-matches addr's
// (substring either way) and whose street-number distance is in
// (0, maxNumberDiff]. The query's own number never matches. Results are
// sorted ascending by number distance, then by address for determinism.
func FindNearby(addr string, candidates map[string]string, maxNumberDiff int) []Nearby {
	num, street, ok := ExtractStreetInfo(addr)
	if !ok || street == "" {
		return nil
	}

	var nearby []Nearby
	for candAddr, name := range candidates {
		candNum, candStreet, candOK := ExtractStreetInfo(candAddr)
		if !candOK || candStreet == "" {
			continue
		}
		if !containsEither(candStreet, street) {
			continue
		}
		diff := num - candNum
		if diff < 0 {
			diff = -diff
		}
		if diff > 0 && diff <= maxNumberDiff {
			nearby = append(nearby, Nearby{Address: candAddr, Name: name, NumberDiff: diff})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].NumberDiff != nearby[j].NumberDiff {
			return nearby[i].NumberDiff < nearby[j].NumberDiff
		}
		return nearby[i].Address < nearby[j].Address
	})
	return nearby
}
