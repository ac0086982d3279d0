package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "15815 61st ln ne", Normalize("  15815 61st Ln NE "))
	assert.Equal(t, "", Normalize("   "))
}

func TestMatcherContainment(t *testing.T) {
	m := NewMatcher("15815 61st Ln NE Kenmore", "9227 NE 180th St Bothell")

	// Exact and partial forms match in both directions.
	assert.True(t, m.IsHome("15815 61st Ln NE Kenmore"))
	assert.True(t, m.IsHome("15815 61st Ln NE Kenmore WA 98028"))
	assert.True(t, m.IsWork("9227 NE 180th St Bothell"))
	assert.False(t, m.IsHome("9227 NE 180th St Bothell"))
	assert.False(t, m.IsWork("15815 61st Ln NE Kenmore"))
	assert.False(t, m.IsHome(""))
}

func TestMatcherZeroValue(t *testing.T) {
	var m Matcher
	assert.False(t, m.IsHome("anywhere"))
	assert.False(t, m.IsWork("anywhere"))
}

func TestInArea(t *testing.T) {
	keywords := []string{"Coupeville", "Oak Harbor", "whidbey"}

	assert.True(t, InArea("123 Main St, Coupeville WA", keywords))
	assert.True(t, InArea("456 Beach Rd, OAK HARBOR", keywords))
	assert.False(t, InArea("789 Pine St, Seattle", keywords))
	assert.False(t, InArea("", keywords))
	assert.False(t, InArea("123 Main St", nil))
}

func TestIsBusinessLocation(t *testing.T) {
	assert.True(t, IsBusinessLocation("Shell Station, 123 Main St"))
	assert.True(t, IsBusinessLocation("Costco Wholesale, Woodinville"))
	assert.True(t, IsBusinessLocation("client office park"))
	assert.False(t, IsBusinessLocation("15815 61st Ln NE Kenmore"))
	assert.False(t, IsBusinessLocation(""))
}

func TestExtractStreetInfo(t *testing.T) {
	tests := []struct {
		addr   string
		number int
		street string
		ok     bool
	}{
		{"15815 61st Ln NE", 15815, "61st ln ne", true},
		{"9227 NE 180th St Bothell", 9227, "ne 180th st", true},
		{"100-200 Main St", 100200, "main st", true},
		{"Main Street", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		number, street, ok := ExtractStreetInfo(tt.addr)
		assert.Equal(t, tt.ok, ok, tt.addr)
		if tt.ok {
			assert.Equal(t, tt.number, number, tt.addr)
			assert.Equal(t, tt.street, street, tt.addr)
		}
	}
}

func TestFindNearby(t *testing.T) {
	candidates := map[string]string{
		"15800 61st Ln NE": "Corner Market",
		"15815 61st Ln NE": "Same Number Co",
		"15820 61st Ln NE": "Close Shop",
		"15900 61st Ln NE": "Too Far",
		"15816 22nd Ave":   "Wrong Street",
	}

	got := FindNearby("15815 61st Ln NE", candidates, 20)
	require.Len(t, got, 2)

	// Sorted by number distance; the identical number is excluded.
	assert.Equal(t, "15820 61st Ln NE", got[0].Address)
	assert.Equal(t, 5, got[0].NumberDiff)
	assert.Equal(t, "15800 61st Ln NE", got[1].Address)
	assert.Equal(t, 15, got[1].NumberDiff)
}

func TestFindNearbyNoNumber(t *testing.T) {
	assert.Nil(t, FindNearby("Main Street", map[string]string{"123 Main St": "X"}, 20))
}
