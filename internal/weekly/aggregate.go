// Package weekly rolls categorized trips into per-week mileage totals plus
// special-zone and weekend-window sums.
package weekly

import (
	"sort"
	"time"

	"github.com/dewart-reps/mileage-cli/internal/address"
	"github.com/dewart-reps/mileage-cli/internal/categorize"
	"github.com/dewart-reps/mileage-cli/internal/model"
)

// WeekKey returns the Monday week-start date for a timestamp, formatted
// YYYY-MM-DD.
func WeekKey(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}

// Aggregate buckets trips by week. Weekend sums use the categorizer's
// weekend-window predicate and zone sums use the shared area predicate, so
// the aggregator can never drift from the categorization rules. The sum of
// all weekly totals equals the sum of all trip distances.
func Aggregate(trips []model.CategorizedTrip, zones []categorize.Zone) map[string]*model.WeeklyStat {
	stats := make(map[string]*model.WeeklyStat)

	for _, trip := range trips {
		key := WeekKey(trip.Started)
		ws, ok := stats[key]
		if !ok {
			ws = &model.WeeklyStat{WeekStart: key, ZoneMiles: make(map[string]float64)}
			stats[key] = ws
		}

		switch trip.AutoCategory {
		case model.CategoryCommute:
			ws.Commute += trip.Distance
		case model.CategoryBusiness:
			ws.Business += trip.Distance
		case model.CategoryPersonal:
			ws.Personal += trip.Distance
		}
		ws.Total += trip.Distance

		for _, zone := range zones {
			if address.InArea(trip.StartAddress, zone.Keywords) || address.InArea(trip.EndAddress, zone.Keywords) {
				ws.ZoneMiles[zone.Name] += trip.Distance
			}
		}

		if categorize.InWeekendWindow(trip.Started) {
			ws.WeekendMiles += trip.Distance
		}
	}

	return stats
}

// SortedKeys returns the week keys in chronological order.
func SortedKeys(stats map[string]*model.WeeklyStat) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sum adds up the per-category totals across all weeks.
func Sum(stats map[string]*model.WeeklyStat) model.Totals {
	var t model.Totals
	for _, ws := range stats {
		t.Commute += ws.Commute
		t.Business += ws.Business
		t.Personal += ws.Personal
		t.Total += ws.Total
	}
	return t
}
