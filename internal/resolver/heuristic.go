package resolver

import (
	"strings"

	"github.com/dewart-reps/mileage-cli/internal/address"
)

var (
	gasKeywords    = []string{"gas", "fuel", "shell", "chevron", "76", "arco", "bp", "exxon", "mobil"}
	retailKeywords = []string{"costco", "safeway", "qfc", "fred meyer", "walmart", "target"}
)

// KeywordName derives a coarse business name from address keywords alone.
// It never touches the network and never writes the store, so a keyword miss
// is not a sentinel: no lookup was actually attempted. Returns "" when the
// address matches nothing.
func KeywordName(addr string) string {
	norm := address.Normalize(addr)
	if norm == "" {
		return ""
	}
	for _, kw := range gasKeywords {
		if strings.Contains(norm, kw) {
			return "Gas Station"
		}
	}
	for _, kw := range retailKeywords {
		if strings.Contains(norm, kw) {
			return "Store/Shopping"
		}
	}
	if strings.Contains(norm, "pioneer") || strings.Contains(norm, "state route") {
		return "Business Location"
	}
	return ""
}
