// Package journey groups consecutive categorized trips into reporting-level
// journeys: continuous real-world travel with intermediate stops. It feeds
// reports only, never mileage totals.
package journey

import (
	"sort"
	"time"

	"github.com/dewart-reps/mileage-cli/internal/address"
	"github.com/dewart-reps/mileage-cli/internal/model"
)

// maxContinuationGap is how long a stop can last before the next trip
// starts a new journey.
const maxContinuationGap = 30 * time.Minute

// estimatedDuration stands in for a trip's end time when the stop timestamp
// was unparsable.
const estimatedDuration = 30 * time.Minute

// Reconstruct groups categorized trips into journeys. A trip continues the
// current journey when it starts within 30 minutes of the previous end time
// and its start address equals the previous end address (normalized).
func Reconstruct(trips []model.CategorizedTrip) []model.FullTrip {
	if len(trips) == 0 {
		return nil
	}

	sorted := make([]model.CategorizedTrip, len(trips))
	copy(sorted, trips)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Started.Before(sorted[j].Started)
	})

	var journeys []model.FullTrip
	var current *model.FullTrip

	for _, trip := range sorted {
		endTime := tripEndTime(trip)

		if current != nil && continues(current, trip) {
			current.Segments = append(current.Segments, trip)
			current.EndTime = endTime
			current.EndAddress = trip.EndAddress
			current.TotalDistance += trip.Distance
			current.Stops = append(current.Stops, model.Stop{
				Address: trip.StartAddress,
				Time:    trip.Started,
			})
			if trip.AutoCategory == model.CategoryBusiness && trip.BusinessName != "" {
				current.BusinessStops = append(current.BusinessStops, model.BusinessStop{
					BusinessName: trip.BusinessName,
					Address:      trip.EndAddress,
					Distance:     trip.Distance,
				})
			}
			// Any business leg makes the whole journey business.
			if trip.AutoCategory == model.CategoryBusiness {
				current.PrimaryCategory = model.CategoryBusiness
			}
			continue
		}

		if current != nil {
			journeys = append(journeys, *current)
		}
		current = &model.FullTrip{
			Segments:        []model.CategorizedTrip{trip},
			StartTime:       trip.Started,
			EndTime:         endTime,
			StartAddress:    trip.StartAddress,
			EndAddress:      trip.EndAddress,
			TotalDistance:   trip.Distance,
			PrimaryCategory: trip.AutoCategory,
		}
	}

	if current != nil {
		journeys = append(journeys, *current)
	}
	return journeys
}

func continues(current *model.FullTrip, trip model.CategorizedTrip) bool {
	gap := trip.Started.Sub(current.EndTime)
	if gap > maxContinuationGap {
		return false
	}
	return address.Normalize(trip.StartAddress) == address.Normalize(current.EndAddress)
}

func tripEndTime(trip model.CategorizedTrip) time.Time {
	if trip.Stopped != nil {
		return *trip.Stopped
	}
	return trip.Started.Add(estimatedDuration)
}
