// Package nominatim is an HTTP client for the OSM Nominatim geocoder, used
// as the fallback business-lookup tier. The usage policy requires a real
// User-Agent and no more than one request per second; the client enforces a
// 1.1 s spacing between calls.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/dewart-reps/mileage-cli/internal/resolver"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// buildingZoom asks reverse geocoding for building-level results.
const buildingZoom = 18

// Client calls the Nominatim search and reverse APIs.
type Client struct {
	baseURL    string
	userAgent  string
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

// WithInterval overrides the inter-call spacing (tests shrink it).
func WithInterval(d time.Duration) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// NewClient creates a nominatim Client with the given User-Agent.
func NewClient(userAgent string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(1100*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// place is one Nominatim result row.
type place struct {
	Lat     string            `json:"lat"`
	Lon     string            `json:"lon"`
	Name    string            `json:"name"`
	Class   string            `json:"class"`
	Type    string            `json:"type"`
	Address map[string]string `json:"address"`
}

func (p place) toGeoPlace() resolver.GeoPlace {
	gp := resolver.GeoPlace{
		Name:    p.Name,
		Class:   p.Class,
		Type:    p.Type,
		Details: p.Address,
	}
	if gp.Details == nil {
		gp.Details = map[string]string{}
	}
	if p.Name != "" {
		gp.Details["name"] = p.Name
	}
	gp.Lat, _ = strconv.ParseFloat(p.Lat, 64)
	gp.Lng, _ = strconv.ParseFloat(p.Lon, 64)
	return gp
}

// Forward implements resolver.GeocoderAPI: forward geocode with structured
// address details, best match only.
func (c *Client) Forward(ctx context.Context, addr string) (*resolver.GeoPlace, error) {
	params := url.Values{
		"q":              {addr},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	}

	var out []place
	if err := c.get(ctx, "/search", params, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	gp := out[0].toGeoPlace()
	return &gp, nil
}

// Reverse implements resolver.GeocoderAPI: reverse geocode at building zoom.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) ([]resolver.GeoPlace, error) {
	params := url.Values{
		"lat":            {fmt.Sprintf("%f", lat)},
		"lon":            {fmt.Sprintf("%f", lng)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"zoom":           {fmt.Sprintf("%d", buildingZoom)},
	}

	// Reverse returns a single object, not an array.
	var out place
	if err := c.get(ctx, "/reverse", params, &out); err != nil {
		return nil, err
	}
	if out.Name == "" && out.Class == "" {
		return nil, nil
	}
	return []resolver.GeoPlace{out.toGeoPlace()}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "nominatim: rate limit")
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "nominatim: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("nominatim: status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "nominatim: read body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "nominatim: parse response")
	}
	return nil
}
