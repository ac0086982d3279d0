package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dewart-reps/mileage-cli/internal/model"
)

var day = time.Date(2025, time.March, 4, 8, 0, 0, 0, time.Local)

func leg(start time.Time, durationMin int, from, to string, distance float64, cat model.Category) model.CategorizedTrip {
	stopped := start.Add(time.Duration(durationMin) * time.Minute)
	return model.CategorizedTrip{
		MergedTrip: model.MergedTrip{
			TripSegment: model.TripSegment{
				Started:      start,
				Stopped:      &stopped,
				StartAddress: from,
				EndAddress:   to,
				Distance:     distance,
			},
		},
		AutoCategory: cat,
	}
}

func TestReconstructChainsLegs(t *testing.T) {
	trips := []model.CategorizedTrip{
		leg(day, 20, "Home", "Gas Station", 5.0, model.CategoryPersonal),
		leg(day.Add(35*time.Minute), 25, "Gas Station", "Office", 8.0, model.CategoryCommute),
	}

	journeys := Reconstruct(trips)
	require.Len(t, journeys, 1)

	j := journeys[0]
	assert.Equal(t, "Home", j.StartAddress)
	assert.Equal(t, "Office", j.EndAddress)
	assert.InDelta(t, 13.0, j.TotalDistance, 1e-9)
	assert.Len(t, j.Segments, 2)
	require.Len(t, j.Stops, 1)
	assert.Equal(t, "Gas Station", j.Stops[0].Address)
	assert.Equal(t, day.Add(20*time.Minute).Add(25*time.Minute), j.EndTime)
}

func TestReconstructGapBreaksJourney(t *testing.T) {
	trips := []model.CategorizedTrip{
		leg(day, 20, "Home", "Gas Station", 5.0, model.CategoryPersonal),
		// 31 minutes after the previous stop: a real destination, not a pause.
		leg(day.Add(51*time.Minute), 25, "Gas Station", "Office", 8.0, model.CategoryCommute),
	}

	journeys := Reconstruct(trips)
	require.Len(t, journeys, 2)
	assert.Empty(t, journeys[0].Stops)
	assert.Empty(t, journeys[1].Stops)
}

func TestReconstructAddressMismatchBreaksJourney(t *testing.T) {
	trips := []model.CategorizedTrip{
		leg(day, 20, "Home", "Gas Station", 5.0, model.CategoryPersonal),
		leg(day.Add(25*time.Minute), 25, "Different Lot", "Office", 8.0, model.CategoryCommute),
	}

	journeys := Reconstruct(trips)
	assert.Len(t, journeys, 2)
}

func TestReconstructAddressMatchIsCaseInsensitive(t *testing.T) {
	trips := []model.CategorizedTrip{
		leg(day, 20, "Home", "15815 61ST LN NE", 5.0, model.CategoryPersonal),
		leg(day.Add(25*time.Minute), 25, "15815 61st Ln NE", "Office", 8.0, model.CategoryCommute),
	}

	journeys := Reconstruct(trips)
	assert.Len(t, journeys, 1)
}

func TestReconstructUnknownStopEstimatesEndTime(t *testing.T) {
	first := leg(day, 0, "Home", "Gas Station", 5.0, model.CategoryPersonal)
	first.Stopped = nil
	trips := []model.CategorizedTrip{
		first,
		// Starts 25 minutes in: within the estimated 30-minute leg window.
		leg(day.Add(25*time.Minute), 25, "Gas Station", "Office", 8.0, model.CategoryCommute),
	}

	journeys := Reconstruct(trips)
	assert.Len(t, journeys, 1)
}

func TestReconstructBusinessLegPromotesJourney(t *testing.T) {
	business := leg(day.Add(30*time.Minute), 15, "Gas Station", "Client Site", 3.0, model.CategoryBusiness)
	business.BusinessName = "Acme Labs"
	trips := []model.CategorizedTrip{
		leg(day, 20, "Home", "Gas Station", 5.0, model.CategoryPersonal),
		business,
		leg(day.Add(60*time.Minute), 20, "Client Site", "Home", 7.5, model.CategoryPersonal),
	}

	journeys := Reconstruct(trips)
	require.Len(t, journeys, 1)

	j := journeys[0]
	assert.Equal(t, model.CategoryBusiness, j.PrimaryCategory)
	require.Len(t, j.BusinessStops, 1)
	assert.Equal(t, "Acme Labs", j.BusinessStops[0].BusinessName)
	assert.Equal(t, "Client Site", j.BusinessStops[0].Address)
	assert.InDelta(t, 3.0, j.BusinessStops[0].Distance, 1e-9)
}

func TestReconstructSortsInput(t *testing.T) {
	trips := []model.CategorizedTrip{
		leg(day.Add(35*time.Minute), 25, "Gas Station", "Office", 8.0, model.CategoryCommute),
		leg(day, 20, "Home", "Gas Station", 5.0, model.CategoryPersonal),
	}

	journeys := Reconstruct(trips)
	require.Len(t, journeys, 1)
	assert.Equal(t, "Home", journeys[0].StartAddress)
}

func TestReconstructEmpty(t *testing.T) {
	assert.Nil(t, Reconstruct(nil))
}
