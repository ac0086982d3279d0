package ingest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dewart-reps/mileage-cli/internal/model"
)

const csvHeader = "Category;Started;Start odometer (miles);Start address;Stopped;End odometer (miles);End address;Distance (miles);User Notes\n"

func utf16le(t *testing.T, s string) string {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, _, err := transform.String(enc, s)
	require.NoError(t, err)
	return out
}

func TestReadCSVUTF16LE(t *testing.T) {
	content := csvHeader +
		"Business;2025-03-04 08:00;12,345.0;15815 61st Ln NE, Kenmore;2025-03-04 08:30;12,357.0;401 Terry Ave N, Seattle;12.0 mi;client visit\n"

	trips, skipped, err := ReadCSV(strings.NewReader(utf16le(t, content)))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, trips, 1)

	trip := trips[0]
	assert.Equal(t, time.Date(2025, time.March, 4, 8, 0, 0, 0, time.Local), trip.Started)
	require.NotNil(t, trip.Stopped)
	assert.Equal(t, time.Date(2025, time.March, 4, 8, 30, 0, 0, time.Local), *trip.Stopped)
	assert.Equal(t, "15815 61st Ln NE, Kenmore", trip.StartAddress)
	assert.Equal(t, "401 Terry Ave N, Seattle", trip.EndAddress)
	assert.InDelta(t, 12.0, trip.Distance, 1e-9)
	assert.Equal(t, "Business", trip.Category)
	assert.Equal(t, "client visit", trip.Notes)
}

func TestReadCSVUTF8(t *testing.T) {
	content := csvHeader +
		"Personal;2025-03-08 10:00;;Home;2025-03-08 10:20;;Shell, Bothell;3.0;\n"

	trips, skipped, err := ReadCSV(strings.NewReader(content))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, trips, 1)
	assert.InDelta(t, 3.0, trips[0].Distance, 1e-9)
}

func TestReadCSVSkipsBadRows(t *testing.T) {
	content := csvHeader +
		"Personal;not-a-date;;A;;;B;1.0;\n" + // unparsable start: counted
		"Personal;;;A;;;B;1.0;\n" + // blank start: silently dropped
		"Personal;2025-03-04 09:00;;A;;;B;2.0;\n"

	trips, skipped, err := ReadCSV(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, trips, 1)
	assert.Nil(t, trips[0].Stopped)
}

func TestReadCSVSortsByStart(t *testing.T) {
	content := csvHeader +
		"Personal;2025-03-05 09:00;;A;;;B;2.0;\n" +
		"Personal;2025-03-04 09:00;;C;;;D;1.0;\n"

	trips, _, err := ReadCSV(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "C", trips[0].StartAddress)
}

func TestReadCSVEmpty(t *testing.T) {
	trips, skipped, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Empty(t, trips)
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{"12.5 mi", 12.5},
		{"1,234.5", 1234.5},
		{"", 0},
		{"n/a", 0},
		{"1.2.3", 0}, // two decimal points never parse
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, parseDistance(tt.in), 1e-9, tt.in)
	}
}

func TestFilterRange(t *testing.T) {
	mk := func(day int) model.TripSegment {
		return model.TripSegment{Started: time.Date(2025, time.March, day, 9, 0, 0, 0, time.Local)}
	}
	trips := []model.TripSegment{mk(1), mk(5), mk(10)}

	from := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.Local)

	assert.Len(t, FilterRange(trips, from, to), 1)
	assert.Len(t, FilterRange(trips, from, time.Time{}), 2)
	assert.Len(t, FilterRange(trips, time.Time{}, to), 2)
	assert.Len(t, FilterRange(trips, time.Time{}, time.Time{}), 3)
}

func writeTestWorkbook(t *testing.T, path string) {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Trips")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{
		"Category", "Started", "Start odometer (miles)", "Start address",
		"Stopped", "End odometer (miles)", "End address", "Length", "Distance (miles)",
	} {
		header.AddCell().SetString(h)
	}

	row := sheet.AddRow()
	for _, v := range []string{
		"Business", "2025-03-04 08:00:00", "12345", "Home",
		"2025-03-04 08:30:00", "12357", "Client Site", "30 min", "12.0",
	} {
		row.AddCell().SetString(v)
	}
	require.NoError(t, f.Save(path))
}

func TestReadXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.xlsx")
	writeTestWorkbook(t, path)

	trips, skipped, err := ReadXLSXFile(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, trips, 1)

	trip := trips[0]
	// Workbook timestamps carry seconds; they are truncated to the minute.
	assert.Equal(t, time.Date(2025, time.March, 4, 8, 0, 0, 0, time.Local), trip.Started)
	require.NotNil(t, trip.Stopped)
	assert.Equal(t, "Client Site", trip.EndAddress)
	assert.InDelta(t, 12.0, trip.Distance, 1e-9)
}

func TestReadTripsDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	xlsxPath := filepath.Join(dir, "trips.xlsx")
	writeTestWorkbook(t, xlsxPath)
	trips, _, err := ReadTrips(xlsxPath)
	require.NoError(t, err)
	assert.Len(t, trips, 1)

	_, _, err = ReadTrips(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
