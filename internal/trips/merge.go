// Package trips cleans raw telematics segments: the stop merger collapses
// false stops (red lights, traffic) into single trips, and the micro-trip
// flagger marks likely GPS noise for review.
package trips

import (
	"sort"

	"go.uber.org/zap"

	"github.com/dewart-reps/mileage-cli/internal/model"
)

// Default merge thresholds.
const (
	DefaultMaxGapMinutes   = 3.0
	DefaultMaxStopDistance = 0.2
)

// MergeShortStops collapses chains of segments separated by stops too brief
// to be real destinations. Two adjacent segments merge when the gap between
// them is within maxGapMinutes and at least one leg's distance is within
// maxStopDistance; a near-zero leg is what a false stop looks like.
// Distance is conserved: the merged trip's distance is the sum of its legs.
// Returns the merged list and the number of merge operations performed.
func MergeShortStops(segments []model.TripSegment, maxGapMinutes, maxStopDistance float64) ([]model.MergedTrip, int) {
	out := make([]model.MergedTrip, 0, len(segments))
	if len(segments) == 0 {
		return out, 0
	}

	// Input order is not trusted; re-sort by start time.
	sorted := make([]model.TripSegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Started.Before(sorted[j].Started)
	})

	mergeOps := 0
	for i := 0; i < len(sorted); i++ {
		current := model.MergedTrip{TripSegment: sorted[i]}

		for i+1 < len(sorted) {
			next := sorted[i+1]

			if current.Stopped == nil {
				// Unknown gap: never merge across it.
				break
			}
			gapMinutes := next.Started.Sub(*current.Stopped).Minutes()
			if gapMinutes < 0 || gapMinutes > maxGapMinutes {
				break
			}
			if current.Distance > maxStopDistance && next.Distance > maxStopDistance {
				break
			}

			if len(current.MergedFrom) == 0 {
				current.MergedFrom = []model.SegmentSnapshot{current.Snapshot()}
			}
			current.MergedFrom = append(current.MergedFrom, model.MergedTrip{TripSegment: next}.Snapshot())

			// Keep the start from current, take the end from next.
			current.Stopped = next.Stopped
			current.EndAddress = next.EndAddress
			current.EndOdometer = next.EndOdometer
			current.Distance += next.Distance
			current.IsMerged = true
			current.MergeCount = len(current.MergedFrom)

			mergeOps++
			i++
		}

		out = append(out, current)
	}

	if mergeOps > 0 {
		zap.L().Debug("merged short stops",
			zap.Int("segments_in", len(segments)),
			zap.Int("trips_out", len(out)),
			zap.Int("merges", mergeOps),
		)
	}
	return out, mergeOps
}
