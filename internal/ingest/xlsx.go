package ingest

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/dewart-reps/mileage-cli/internal/model"
)

// ReadXLSXFile reads trips from the first sheet of an XLSX export. Columns
// are located by the header row, with the exporter's standard layout as the
// fallback when a header is missing.
func ReadXLSXFile(path string) ([]model.TripSegment, int, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, 0, eris.New("ingest: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, 0, nil
	}

	colMap := headerMap(rowToStrings(sheet.Rows[0]))
	cell := func(cells []string, header string, fallback int) string {
		idx, ok := colMap[header]
		if !ok {
			idx = fallback
		}
		if idx < 0 || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	var (
		trips   []model.TripSegment
		skipped int
	)
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)

		started := cell(cells, "Started", 1)
		if started == "" {
			continue
		}
		row := tripRow{
			Category:      cell(cells, "Category", 0),
			Started:       normalizeTimestamp(started),
			StartOdometer: cell(cells, "Start odometer (miles)", 2),
			StartAddress:  cell(cells, "Start address", 3),
			Stopped:       normalizeTimestamp(cell(cells, "Stopped", 4)),
			EndOdometer:   cell(cells, "End odometer (miles)", 5),
			EndAddress:    cell(cells, "End address", 6),
			Distance:      cell(cells, "Distance (miles)", 8),
			UserNotes:     cell(cells, "User Notes", 13),
		}
		trip, ok := rowToSegment(row)
		if !ok {
			skipped++
			continue
		}
		trips = append(trips, trip)
	}

	zap.L().Debug("read xlsx export",
		zap.Int("trips", len(trips)),
		zap.Int("skipped", skipped))

	sortByStart(trips)
	return trips, skipped, nil
}

func headerMap(headers []string) map[string]int {
	m := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h != "" {
			m[h] = i
		}
	}
	return m
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		cells[j] = c.String()
	}
	return cells
}

// xlsx cells sometimes carry datetimes serialized with seconds; rowToSegment
// only accepts the minute layout, so normalize those here.
func normalizeTimestamp(s string) string {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return t.Format(timeLayout)
	}
	return s
}
