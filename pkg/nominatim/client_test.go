package nominatim

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "mileage-cli test", r.Header.Get("User-Agent"))
		assert.Equal(t, "Shell, 6161 NE Bothell Way", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[{"lat":"47.758","lon":"-122.245","name":"Shell","class":"amenity","type":"fuel","address":{"amenity":"fuel","road":"Bothell Way Northeast"}}]`)
	}))
	defer srv.Close()

	c := NewClient("mileage-cli test", WithBaseURL(srv.URL), WithInterval(0))
	gp, err := c.Forward(context.Background(), "Shell, 6161 NE Bothell Way")
	require.NoError(t, err)
	require.NotNil(t, gp)
	assert.Equal(t, "Shell", gp.Name)
	assert.Equal(t, "amenity", gp.Class)
	assert.Equal(t, "fuel", gp.Type)
	assert.InDelta(t, 47.758, gp.Lat, 1e-9)
	assert.InDelta(t, -122.245, gp.Lng, 1e-9)
	// The result name is copied into the details map for the cascade.
	assert.Equal(t, "Shell", gp.Details["name"])
	assert.Equal(t, "fuel", gp.Details["amenity"])
}

func TestForwardNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient("mileage-cli test", WithBaseURL(srv.URL), WithInterval(0))
	gp, err := c.Forward(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, gp)
}

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "47.758000", r.URL.Query().Get("lat"))
		assert.Equal(t, "-122.245000", r.URL.Query().Get("lon"))
		assert.Equal(t, "18", r.URL.Query().Get("zoom"))
		fmt.Fprint(w, `{"lat":"47.758","lon":"-122.245","name":"Log Boom Park","class":"leisure","type":"park","address":{"leisure":"park"}}`)
	}))
	defer srv.Close()

	c := NewClient("mileage-cli test", WithBaseURL(srv.URL), WithInterval(0))
	results, err := c.Reverse(context.Background(), 47.758, -122.245)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Log Boom Park", results[0].Name)
	assert.Equal(t, "leisure", results[0].Class)
}

func TestReverseNothingThere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient("mileage-cli test", WithBaseURL(srv.URL), WithInterval(0))
	results, err := c.Reverse(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("mileage-cli test", WithBaseURL(srv.URL), WithInterval(0))
	_, err := c.Forward(context.Background(), "anything")
	assert.Error(t, err)
}
