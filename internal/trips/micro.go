package trips

import (
	"fmt"
	"strings"

	"github.com/dewart-reps/mileage-cli/internal/model"
)

// DefaultMicroMaxDistance is the flagging threshold in miles.
const DefaultMicroMaxDistance = 0.15

// streetTypes are recognized street-type tokens; the token immediately
// before one is the street signature.
var streetTypes = map[string]bool{
	"st": true, "ave": true, "rd": true, "dr": true, "ln": true,
	"way": true, "blvd": true, "ct": true, "pl": true, "circle": true,
	"street": true, "avenue": true, "road": true, "drive": true,
	"lane": true, "boulevard": true, "court": true, "place": true,
}

// FlagMicroTrips marks trips that are likely GPS drift or parking
// adjustments rather than intentional drives: short distance with matching
// start/end street signatures, or very short distance regardless. Trips are
// flagged, never removed. Returns the flagged list and the flag count.
func FlagMicroTrips(merged []model.MergedTrip, maxDistance float64) ([]model.MergedTrip, int) {
	out := make([]model.MergedTrip, len(merged))
	copy(out, merged)

	microCount := 0
	for i := range out {
		trip := &out[i]
		trip.IsMicroTrip = false
		trip.MicroReason = ""

		if trip.Distance > maxDistance {
			continue
		}

		sameStreet := streetSignature(trip.StartAddress) == streetSignature(trip.EndAddress)
		if !sameStreet && trip.Distance > 0.1 {
			continue
		}

		trip.IsMicroTrip = true
		if trip.StartAddress != "" && trip.EndAddress != "" && trip.Distance <= 0.05 {
			trip.MicroReason = fmt.Sprintf("GPS drift or parking adjustment (%.2f mi)", trip.Distance)
		} else {
			trip.MicroReason = fmt.Sprintf("Very short trip (%.2f mi)", trip.Distance)
		}
		microCount++
	}
	return out, microCount
}

// streetSignature extracts a comparable street identity from an address:
// the tokens around the first recognized street-type abbreviation, else the
// first three tokens.
func streetSignature(addr string) string {
	parts := strings.Fields(strings.ToLower(strings.ReplaceAll(addr, ",", " ")))

	for i, part := range parts {
		if i > 0 && streetTypes[strings.TrimRight(part, ".")] {
			start := i - 2
			if start < 0 {
				start = 0
			}
			return strings.Join(parts[start:i+1], " ")
		}
	}
	if len(parts) >= 3 {
		return strings.Join(parts[:3], " ")
	}
	return strings.Join(parts, " ")
}
