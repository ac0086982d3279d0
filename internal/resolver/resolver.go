// Package resolver identifies the business located at a trip address through
// a cascading, cache-backed lookup: exact mapping, fuzzy mapping, the places
// provider, the fallback geocoder, and finally a keyword heuristic. Every
// terminal outcome is persisted so each address costs at most one live
// attempt per store lifetime.
package resolver

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dewart-reps/mileage-cli/internal/address"
	"github.com/dewart-reps/mileage-cli/internal/mapping"
)

// genericPlaceTypes mark results that are just an address, not a business.
var genericPlaceTypes = map[string]bool{
	"street_address": true,
	"premise":        true,
	"subpremise":     true,
	"route":          true,
	"political":      true,
	"locality":       true,
}

// streetWords inside a result name suggest the provider echoed a street back.
var streetWords = []string{"street", "avenue", "road", "lane", "drive", " st ", " ave ", " rd ", " ln ", " dr "}

// nearbyRadiusMeters keeps the nearby-place search tight to the address.
const nearbyRadiusMeters = 25

// minSharedTokens is the floor for suggesting a stored entry for an address
// the providers could not resolve.
const minSharedTokens = 3

var titleCaser = cases.Title(language.English)

// Resolver runs the business-resolution cascade against a mapping store and
// optional live providers.
type Resolver struct {
	store    *mapping.Store
	places   PlacesAPI
	geocoder GeocoderAPI
	confirm  Confirmer
	live     bool
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithPlaces wires the primary places provider.
func WithPlaces(p PlacesAPI) Option {
	return func(r *Resolver) { r.places = p }
}

// WithGeocoder wires the fallback geocoder.
func WithGeocoder(g GeocoderAPI) Option {
	return func(r *Resolver) { r.geocoder = g }
}

// WithConfirmer wires the confirmation port for fuzzy suggestions. Absent,
// ambiguous matches skip straight to the sentinel.
func WithConfirmer(c Confirmer) Option {
	return func(r *Resolver) { r.confirm = c }
}

// WithLiveLookup enables the provider tiers of the cascade.
func WithLiveLookup(enabled bool) Option {
	return func(r *Resolver) { r.live = enabled }
}

// New creates a Resolver over the given mapping store.
func New(store *mapping.Store, opts ...Option) *Resolver {
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LiveEnabled reports whether any live provider tier will run.
func (r *Resolver) LiveEnabled() bool {
	return r.live && (r.places != nil || r.geocoder != nil)
}

// Resolve returns the business name at an address, or "" when none is known.
// Cache tiers always run; provider tiers only when live lookup is enabled.
// The returned error is non-nil only on context cancellation.
func (r *Resolver) Resolve(ctx context.Context, addr string) (string, error) {
	if addr == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Tier 1: exact mapping hit. A sentinel is a confirmed negative.
	if e, ok := r.store.Get(addr); ok {
		if e.IsSentinel() {
			return "", nil
		}
		return e.Name, nil
	}

	// Tier 2: fuzzy mapping hit, persisted as a new exact entry so the next
	// run hits tier 1.
	if key, e, ok := r.store.ResolveFuzzy(addr); ok {
		zap.L().Debug("resolver: fuzzy mapping hit",
			zap.String("address", addr),
			zap.String("mapped", key),
			zap.String("name", e.Name),
		)
		r.store.Set(addr, mapping.Entry{Name: e.Name, Category: e.Category, Source: e.Source})
		_ = r.store.LogResolution(ctx, addr, e.Name, e.Source, "fuzzy_mapping")
		return e.Name, nil
	}

	if !r.LiveEnabled() {
		return "", nil
	}

	// Tier 3: places provider. A confident negative does not fall through to
	// the geocoder; only a transient failure advances the cascade.
	if r.places != nil {
		lk := r.lookupPlaces(ctx, addr)
		switch lk.Kind {
		case KindFound:
			r.persist(ctx, addr, lk.Name, mapping.SourcePlaces)
			return lk.Name, nil
		case KindNotFound:
			return r.suggestOrSentinel(ctx, addr, mapping.SourcePlaces)
		default:
			zap.L().Warn("resolver: places lookup failed, trying geocoder",
				zap.String("address", addr),
				zap.String("detail", lk.Detail),
			)
		}
	}

	// Tier 4: fallback geocoder.
	if r.geocoder != nil {
		lk := r.lookupGeocoder(ctx, addr)
		if lk.Kind == KindFound {
			r.persist(ctx, addr, lk.Name, mapping.SourceOSM)
			return lk.Name, nil
		}
		if lk.Kind == KindTransientError {
			zap.L().Warn("resolver: geocoder lookup failed",
				zap.String("address", addr),
				zap.String("detail", lk.Detail),
			)
		}
		return r.suggestOrSentinel(ctx, addr, mapping.SourceOSM)
	}

	// Places failed transiently and no geocoder is configured.
	return r.suggestOrSentinel(ctx, addr, mapping.SourcePlaces)
}

// BusinessName returns the best available business label for an address:
// the cascade result when one exists, else the keyword heuristic, else "".
func (r *Resolver) BusinessName(ctx context.Context, addr string) string {
	if addr == "" {
		return "Unknown"
	}
	if name, err := r.Resolve(ctx, addr); err == nil && name != "" {
		return name
	}
	return KeywordName(addr)
}

func (r *Resolver) persist(ctx context.Context, addr, name, source string) {
	r.store.Set(addr, mapping.Entry{Name: name, Source: source})
	_ = r.store.LogResolution(ctx, addr, name, source, "found")
}

// lookupPlaces geocodes the address and searches for a named place right at
// it, falling back to free-text search. Results whose name is the address
// echoed back, or whose only types are generic, are confident negatives.
func (r *Resolver) lookupPlaces(ctx context.Context, addr string) Lookup {
	loc, matched, err := r.places.Geocode(ctx, addr)
	if err == nil && matched {
		places, nearbyErr := r.places.NearbySearch(ctx, loc, nearbyRadiusMeters)
		if nearbyErr == nil {
			for _, p := range places {
				if p.Name != "" && len(businessTypes(p.Types)) > 0 {
					zap.L().Debug("resolver: nearby place match",
						zap.String("address", addr),
						zap.String("name", p.Name),
					)
					return Found(p.Name)
				}
			}
		}
	}

	places, err := r.places.TextSearch(ctx, addr)
	if err != nil {
		return Transient(err.Error())
	}
	if len(places) == 0 {
		return NotFound("no text search results")
	}

	p := places[0]
	if p.Name == "" {
		return NotFound("unnamed result")
	}
	if nameEchoesAddress(p.Name, addr) {
		return NotFound("result is the address itself")
	}
	types := businessTypes(p.Types)
	if len(types) == 0 {
		return NotFound("only generic place types")
	}
	if !containsStreetWord(p.Name) {
		return Found(p.Name)
	}

	// Generic-but-named result: disambiguate by appending its place type.
	label := titleCaser.String(strings.ReplaceAll(types[0], "_", " "))
	if !strings.Contains(strings.ToLower(p.Name), strings.ToLower(label)) {
		return Found(p.Name + " (" + label + ")")
	}
	return Found(p.Name)
}

// lookupGeocoder asks the fallback geocoder for structured address details,
// then for a coarse class/type mapping, then reverse-geocodes at the
// resolved point and scans the top results for a named, non-street place.
func (r *Resolver) lookupGeocoder(ctx context.Context, addr string) Lookup {
	place, err := r.geocoder.Forward(ctx, addr)
	if err != nil {
		return Transient(err.Error())
	}
	if place == nil {
		return NotFound("no geocode result")
	}

	name := ""
	for _, field := range []string{"amenity", "shop", "tourism", "leisure", "office"} {
		if v := place.Details[field]; v != "" {
			name = titleCaser.String(strings.ReplaceAll(v, "_", " "))
			break
		}
	}
	// An actual name beats the derived amenity label.
	for _, field := range []string{"name", "brand", "operator"} {
		if v := place.Details[field]; v != "" {
			name = v
			break
		}
	}

	if name == "" {
		name = classTypeName(place.Class, place.Type)
	}

	if name == "" && (place.Lat != 0 || place.Lng != 0) {
		results, revErr := r.geocoder.Reverse(ctx, place.Lat, place.Lng)
		if revErr == nil {
			if len(results) > 3 {
				results = results[:3]
			}
			for _, res := range results {
				lower := strings.ToLower(res.Name)
				if res.Name != "" && !strings.Contains(lower, "street") && !strings.Contains(lower, "avenue") {
					name = res.Name
					break
				}
			}
		}
	}

	if name == "" || name == "yes" {
		return NotFound("no business details")
	}
	return Found(name)
}

// classTypeName maps coarse geocoder class/type pairs to a business label.
func classTypeName(class, typ string) string {
	switch class {
	case "amenity":
		switch typ {
		case "fuel", "charging_station":
			return "Gas Station / Fuel"
		case "restaurant", "cafe", "fast_food", "bank", "post_office":
			return titleCaser.String(strings.ReplaceAll(typ, "_", " "))
		}
	case "shop":
		if typ != "" {
			return titleCaser.String(strings.ReplaceAll(typ, "_", " ")) + " Shop"
		}
	case "office":
		return "Office Building"
	}
	return ""
}

// suggestion is a stored entry sharing enough tokens with an unresolved
// address to be worth confirming.
type suggestion struct {
	address string
	name    string
	shared  int
}

// suggestOrSentinel is the terminal negative path: offer the best
// shared-token match through the confirmation port, and persist the sentinel
// when nothing is accepted.
func (r *Resolver) suggestOrSentinel(ctx context.Context, addr, source string) (string, error) {
	if best, ok := r.bestSuggestion(addr); ok && r.confirm != nil {
		accepted, err := r.confirm.Confirm(ctx, addr, best.name)
		if err != nil {
			zap.L().Warn("resolver: confirmation failed, declining suggestion",
				zap.String("address", addr),
				zap.Error(err),
			)
		} else if accepted {
			zap.L().Info("resolver: suggestion accepted",
				zap.String("address", addr),
				zap.String("name", best.name),
				zap.String("matched", best.address),
			)
			r.persist(ctx, addr, best.name, source)
			return best.name, nil
		}
	}

	r.store.Set(addr, mapping.Entry{Name: mapping.Sentinel, Source: source})
	_ = r.store.LogResolution(ctx, addr, "", source, "sentinel")
	return "", nil
}

// bestSuggestion finds the stored entry sharing the most normalized
// whitespace tokens with the address, requiring at least minSharedTokens.
// Ordering is deterministic: shared count descending, then key ascending.
func (r *Resolver) bestSuggestion(addr string) (suggestion, bool) {
	tokens := tokenSet(addr)
	if len(tokens) == 0 {
		return suggestion{}, false
	}

	var candidates []suggestion
	for key, name := range r.store.Resolved() {
		shared := 0
		for tok := range tokenSet(key) {
			if tokens[tok] {
				shared++
			}
		}
		if shared >= minSharedTokens {
			candidates = append(candidates, suggestion{address: key, name: name, shared: shared})
		}
	}
	if len(candidates) == 0 {
		return suggestion{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].shared != candidates[j].shared {
			return candidates[i].shared > candidates[j].shared
		}
		return candidates[i].address < candidates[j].address
	})
	return candidates[0], true
}

func tokenSet(addr string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(address.Normalize(addr)) {
		set[tok] = true
	}
	return set
}

// businessTypes filters out generic place types.
func businessTypes(types []string) []string {
	var out []string
	for _, t := range types {
		if !genericPlaceTypes[t] {
			out = append(out, t)
		}
	}
	return out
}

// nameEchoesAddress reports whether a result name is just the query address
// reformatted.
func nameEchoesAddress(name, addr string) bool {
	clean := func(s string) string {
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, ",", "")
		return strings.ReplaceAll(s, ".", "")
	}
	n, a := clean(name), clean(addr)
	return strings.Contains(a, n) || strings.Contains(n, a)
}

func containsStreetWord(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range streetWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
