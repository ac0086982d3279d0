// Package model defines the trip records that flow through the mileage
// pipeline, from raw telematics segments to categorized, reportable trips.
package model

import "time"

// Category classifies a trip along the business/personal/commute axis.
type Category string

const (
	CategoryBusiness Category = "business"
	CategoryPersonal Category = "personal"
	CategoryCommute  Category = "commute"
)

// Title returns the category capitalized for report output.
func (c Category) Title() string {
	switch c {
	case CategoryBusiness:
		return "Business"
	case CategoryPersonal:
		return "Personal"
	case CategoryCommute:
		return "Commute"
	}
	return string(c)
}

// TripSegment is one raw started->stopped motion record from a telematics
// export. Stopped is nil when the export value was missing or unparsable;
// downstream stages treat that as an unknown gap.
type TripSegment struct {
	Started       time.Time  `json:"started"`
	Stopped       *time.Time `json:"stopped,omitempty"`
	StartOdometer string     `json:"start_odometer"`
	EndOdometer   string     `json:"end_odometer"`
	StartAddress  string     `json:"start_address"`
	EndAddress    string     `json:"end_address"`
	Distance      float64    `json:"distance"`
	Category      string     `json:"category,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// SegmentSnapshot captures a segment's pre-merge state for audit trails.
type SegmentSnapshot struct {
	Started      time.Time  `json:"started"`
	Stopped      *time.Time `json:"stopped,omitempty"`
	Distance     float64    `json:"distance"`
	StartAddress string     `json:"start_address"`
	EndAddress   string     `json:"end_address"`
}

// MergedTrip is a TripSegment after the stop merger, possibly coalesced from
// several segments whose intervening stops were too brief to be real
// destinations. The micro-trip flagger sets IsMicroTrip/MicroReason.
type MergedTrip struct {
	TripSegment

	MergedFrom  []SegmentSnapshot `json:"merged_from,omitempty"`
	IsMerged    bool              `json:"is_merged"`
	MergeCount  int               `json:"merge_count,omitempty"`
	IsMicroTrip bool              `json:"is_micro_trip"`
	MicroReason string            `json:"micro_reason,omitempty"`
}

// Snapshot returns the trip's current state as a SegmentSnapshot.
func (t MergedTrip) Snapshot() SegmentSnapshot {
	return SegmentSnapshot{
		Started:      t.Started,
		Stopped:      t.Stopped,
		Distance:     t.Distance,
		StartAddress: t.StartAddress,
		EndAddress:   t.EndAddress,
	}
}

// CategorizedTrip is the terminal per-trip output of the pipeline. It is
// never mutated after categorization.
type CategorizedTrip struct {
	MergedTrip

	AutoCategory   Category `json:"auto_category"`
	BusinessName   string   `json:"business_name,omitempty"`
	CategoryReason string   `json:"category_reason"`
}

// Stop is an intermediate stop inside a reconstructed journey.
type Stop struct {
	Address string    `json:"address"`
	Time    time.Time `json:"time"`
}

// BusinessStop is a business-categorized leg inside a reconstructed journey.
type BusinessStop struct {
	BusinessName string  `json:"business_name"`
	Address      string  `json:"address"`
	Distance     float64 `json:"distance"`
}

// FullTrip is a reporting-level journey reconstructed from consecutive
// categorized trips. Derived each run, never persisted.
type FullTrip struct {
	Segments        []CategorizedTrip `json:"segments"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	StartAddress    string            `json:"start_address"`
	EndAddress      string            `json:"end_address"`
	Stops           []Stop            `json:"stops,omitempty"`
	BusinessStops   []BusinessStop    `json:"business_stops,omitempty"`
	PrimaryCategory Category          `json:"primary_category"`
	TotalDistance   float64           `json:"total_distance"`
}

// WeeklyStat accumulates per-week mileage, keyed by the Monday week-start
// date. ZoneMiles holds the configured special-zone round-trip sums.
type WeeklyStat struct {
	WeekStart    string             `json:"week_start"`
	Commute      float64            `json:"commute"`
	Business     float64            `json:"business"`
	Personal     float64            `json:"personal"`
	Total        float64            `json:"total"`
	WeekendMiles float64            `json:"weekend_miles"`
	ZoneMiles    map[string]float64 `json:"zone_miles,omitempty"`
}

// Totals holds running per-category mileage over a whole analysis.
type Totals struct {
	Commute  float64 `json:"commute"`
	Business float64 `json:"business"`
	Personal float64 `json:"personal"`
	Total    float64 `json:"total"`
}

// PersonalReported returns personal mileage as reported: commute is legally
// personal mileage.
func (t Totals) PersonalReported() float64 {
	return t.Personal + t.Commute
}

// Add accumulates one categorized trip into the totals.
func (t *Totals) Add(trip CategorizedTrip) {
	switch trip.AutoCategory {
	case CategoryCommute:
		t.Commute += trip.Distance
	case CategoryBusiness:
		t.Business += trip.Distance
	case CategoryPersonal:
		t.Personal += trip.Distance
	}
	t.Total += trip.Distance
}
