// Package places is an HTTP client for the Google Places web APIs: geocode,
// nearby search, and text search. The resolution cascade consumes it through
// the resolver's PlacesAPI port.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/dewart-reps/mileage-cli/internal/resolver"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Client calls the Places web APIs.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests point it at a fake server).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a places Client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(10, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name  string   `json:"name"`
		Types []string `json:"types"`
	} `json:"results"`
}

// Geocode implements resolver.PlacesAPI.
func (c *Client) Geocode(ctx context.Context, addr string) (resolver.LatLng, bool, error) {
	params := url.Values{
		"address": {addr},
		"key":     {c.apiKey},
	}

	var out geocodeResponse
	if err := c.get(ctx, "/geocode/json", params, &out); err != nil {
		return resolver.LatLng{}, false, err
	}
	if err := statusError(out.Status, "geocode"); err != nil {
		return resolver.LatLng{}, false, err
	}
	if len(out.Results) == 0 {
		return resolver.LatLng{}, false, nil
	}
	loc := out.Results[0].Geometry.Location
	return resolver.LatLng{Lat: loc.Lat, Lng: loc.Lng}, true, nil
}

// NearbySearch implements resolver.PlacesAPI.
func (c *Client) NearbySearch(ctx context.Context, loc resolver.LatLng, radiusMeters int) ([]resolver.Place, error) {
	params := url.Values{
		"location": {fmt.Sprintf("%f,%f", loc.Lat, loc.Lng)},
		"radius":   {fmt.Sprintf("%d", radiusMeters)},
		"key":      {c.apiKey},
	}

	var out placesResponse
	if err := c.get(ctx, "/place/nearbysearch/json", params, &out); err != nil {
		return nil, err
	}
	if err := statusError(out.Status, "nearby search"); err != nil {
		return nil, err
	}
	return toPlaces(out), nil
}

// TextSearch implements resolver.PlacesAPI.
func (c *Client) TextSearch(ctx context.Context, query string) ([]resolver.Place, error) {
	params := url.Values{
		"query": {query},
		"key":   {c.apiKey},
	}

	var out placesResponse
	if err := c.get(ctx, "/place/textsearch/json", params, &out); err != nil {
		return nil, err
	}
	if err := statusError(out.Status, "text search"); err != nil {
		return nil, err
	}
	return toPlaces(out), nil
}

// statusError maps the API status field to an error. Only OK and
// ZERO_RESULTS are answers; everything else (REQUEST_DENIED,
// OVER_QUERY_LIMIT, ...) is a service failure, and a failure must surface as
// an error or the caller would cache it as a confirmed negative.
func statusError(status, op string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	}
	return eris.Errorf("places: %s status %s", op, status)
}

func toPlaces(resp placesResponse) []resolver.Place {
	places := make([]resolver.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, resolver.Place{Name: r.Name, Types: r.Types})
	}
	return places
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "places: rate limit")
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "places: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: parse response")
	}
	return nil
}
