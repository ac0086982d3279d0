// Package unresolved inspects sentinel entries in the business-mapping store
// and groups them into actionable buckets: probable residences, highway
// points, and addresses sitting near an already-resolved one.
package unresolved

import (
	"sort"
	"strings"

	"github.com/dewart-reps/mileage-cli/internal/address"
	"github.com/dewart-reps/mileage-cli/internal/mapping"
)

// maxNumberDiff bounds the street-number distance for nearby suggestions.
// A block of 100 keeps same-street matches across a typical city block.
const maxNumberDiff = 100

// area buckets, checked in order; the first keyword hit wins.
var areas = []struct {
	Name     string
	Keywords []string
}{
	{"Kenmore", []string{"kenmore"}},
	{"Bothell", []string{"bothell"}},
	{"Whidbey Island", []string{"coupeville", "oak harbor", "clinton", "whidbey", "langley", "freeland"}},
	{"Seattle", []string{"seattle"}},
	{"Everett", []string{"everett"}},
	{"Mukilteo", []string{"mukilteo"}},
	{"Portland", []string{"portland"}},
}

var residentialStreets = []string{"ln ", "ct ", "pl ", "cir ", "way ", "dr ", "ave ", "st "}

var highwayWords = []string{"i-90", "wa-", "hwy", "highway", "route", "state route", "fry"}

// Report summarizes the unresolved entries of a mapping store.
type Report struct {
	Total      int `json:"total"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`

	// ByArea groups unresolved addresses by metro area, "Other" last.
	ByArea map[string][]string `json:"by_area"`

	// Residential lists addresses that look like homes rather than
	// businesses; these usually need no mapping at all.
	Residential []string `json:"residential"`

	// Highways lists route and highway points, likely in-transit samples.
	Highways []string `json:"highways"`

	// Nearby maps each unresolved address to resolved entries on the same
	// street within the allowed street-number distance.
	Nearby map[string][]address.Nearby `json:"nearby,omitempty"`
}

// Analyze builds an unresolved-address report from a loaded store.
func Analyze(store *mapping.Store) *Report {
	unresolved := store.Unresolved()
	resolved := store.Resolved()

	r := &Report{
		Total:      store.Len(),
		Resolved:   len(resolved),
		Unresolved: len(unresolved),
		ByArea:     make(map[string][]string),
		Nearby:     make(map[string][]address.Nearby),
	}

	for _, addr := range unresolved {
		r.ByArea[areaFor(addr)] = append(r.ByArea[areaFor(addr)], addr)

		if isResidential(addr) {
			r.Residential = append(r.Residential, addr)
		}
		if isHighway(addr) {
			r.Highways = append(r.Highways, addr)
		}
		if near := address.FindNearby(addr, resolved, maxNumberDiff); len(near) > 0 {
			r.Nearby[addr] = near
		}
	}

	for _, addrs := range r.ByArea {
		sort.Strings(addrs)
	}
	return r
}

// Areas returns the report's area names, fixed bucket order first and
// "Other" last.
func (r *Report) Areas() []string {
	var names []string
	for _, a := range areas {
		if len(r.ByArea[a.Name]) > 0 {
			names = append(names, a.Name)
		}
	}
	if len(r.ByArea["Other"]) > 0 {
		names = append(names, "Other")
	}
	return names
}

func areaFor(addr string) string {
	norm := address.Normalize(addr)
	for _, a := range areas {
		for _, kw := range a.Keywords {
			if strings.Contains(norm, kw) {
				return a.Name
			}
		}
	}
	return "Other"
}

// isResidential matches a leading street number plus a residential street
// type, excluding highway-flavored addresses.
func isResidential(addr string) bool {
	norm := address.Normalize(addr)

	head := addr
	if len(head) > 6 {
		head = head[:6]
	}
	if !strings.ContainsAny(head, "0123456789") {
		return false
	}

	street := false
	for _, p := range residentialStreets {
		if strings.Contains(norm, p) {
			street = true
			break
		}
	}
	if !street {
		return false
	}

	for _, kw := range []string{"blvd", "hwy", "highway", "route", "state route"} {
		if strings.Contains(norm, kw) {
			return false
		}
	}
	return true
}

func isHighway(addr string) bool {
	norm := address.Normalize(addr)
	for _, kw := range highwayWords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}
