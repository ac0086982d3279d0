// Package ingest reads vehicle telematics trip exports. The exporter writes
// either a UTF-16 semicolon-delimited CSV or an XLSX workbook; both carry the
// same columns and are mapped by header name, not position.
package ingest

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dewart-reps/mileage-cli/internal/model"
)

// timeLayout is the exporter's timestamp format.
const timeLayout = "2006-01-02 15:04"

// non-numeric characters stripped before parsing a distance cell
var nonNumeric = regexp.MustCompile(`[^\d.]`)

// ReadTrips reads trips from a CSV or XLSX export, dispatching on the file
// extension. It returns the parsed segments sorted oldest first, plus the
// number of rows skipped because their start time could not be parsed.
func ReadTrips(path string) ([]model.TripSegment, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSXFile(path)
	}
	return ReadCSVFile(path)
}

// FilterRange keeps trips whose start time falls inside [start, end]. A zero
// bound is unbounded on that side.
func FilterRange(trips []model.TripSegment, start, end time.Time) []model.TripSegment {
	out := make([]model.TripSegment, 0, len(trips))
	for _, t := range trips {
		if !start.IsZero() && t.Started.Before(start) {
			continue
		}
		if !end.IsZero() && t.Started.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// parseDistance leniently parses a distance cell, stripping units and
// thousands separators. Unparsable cells read as 0.
func parseDistance(s string) float64 {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseStopped parses an optional stop timestamp. The exporter leaves the
// cell blank for trips still in progress.
func parseStopped(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func sortByStart(trips []model.TripSegment) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].Started.Before(trips[j].Started)
	})
}
