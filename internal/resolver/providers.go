package resolver

import "context"

// LookupKind is the explicit outcome of one provider call. The cascade
// branches on kind instead of swallowed errors: NotFound is a confident
// negative, TransientError means the tier could not answer.
type LookupKind string

const (
	KindFound          LookupKind = "found"
	KindNotFound       LookupKind = "not_found"
	KindTransientError LookupKind = "transient_error"
)

// Lookup is the result of one provider call.
type Lookup struct {
	Kind   LookupKind
	Name   string
	Detail string
}

// Found returns a successful lookup.
func Found(name string) Lookup { return Lookup{Kind: KindFound, Name: name} }

// NotFound returns a confident negative.
func NotFound(detail string) Lookup { return Lookup{Kind: KindNotFound, Detail: detail} }

// Transient returns a could-not-answer outcome.
func Transient(detail string) Lookup { return Lookup{Kind: KindTransientError, Detail: detail} }

// LatLng is a geographic point.
type LatLng struct {
	Lat float64
	Lng float64
}

// Place is one result from the places provider.
type Place struct {
	Name  string
	Types []string
}

// PlacesAPI is the narrow port to the primary places provider. The raw HTTP
// client lives outside the core.
type PlacesAPI interface {
	Geocode(ctx context.Context, addr string) (LatLng, bool, error)
	NearbySearch(ctx context.Context, loc LatLng, radiusMeters int) ([]Place, error)
	TextSearch(ctx context.Context, query string) ([]Place, error)
}

// GeoPlace is one result from the fallback geocoder, with structured
// address details.
type GeoPlace struct {
	Lat     float64
	Lng     float64
	Name    string
	Class   string
	Type    string
	Details map[string]string
}

// GeocoderAPI is the narrow port to the fallback geocoder. Implementations
// enforce their own inter-call spacing.
type GeocoderAPI interface {
	Forward(ctx context.Context, addr string) (*GeoPlace, error)
	Reverse(ctx context.Context, lat, lng float64) ([]GeoPlace, error)
}
