package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/dewart-reps/mileage-cli/internal/model"
	"github.com/dewart-reps/mileage-cli/internal/pipeline"
	"github.com/dewart-reps/mileage-cli/internal/weekly"
)

func (w *Writer) writeWeeklySummary(path string, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	cw := csv.NewWriter(f)

	header := []string{"Week Starting", "Commute Miles", "Business Miles", "Personal Miles", "Total Miles"}
	for _, zone := range w.zones {
		header = append(header, zone.Name+" Round Trip Miles")
	}
	header = append(header, weekendLabel)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write weekly header")
	}

	var total model.WeeklyStat
	total.ZoneMiles = make(map[string]float64)
	for _, week := range weekly.SortedKeys(res.Weekly) {
		ws := res.Weekly[week]
		row := []string{week, miles(ws.Commute), miles(ws.Business), miles(ws.Personal), miles(ws.Total)}
		for _, zone := range w.zones {
			row = append(row, miles(ws.ZoneMiles[zone.Name]))
			total.ZoneMiles[zone.Name] += ws.ZoneMiles[zone.Name]
		}
		row = append(row, miles(ws.WeekendMiles))
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write weekly row")
		}

		total.Commute += ws.Commute
		total.Business += ws.Business
		total.Personal += ws.Personal
		total.Total += ws.Total
		total.WeekendMiles += ws.WeekendMiles
	}

	footer := []string{"TOTAL", miles(total.Commute), miles(total.Business), miles(total.Personal), miles(total.Total)}
	for _, zone := range w.zones {
		footer = append(footer, miles(total.ZoneMiles[zone.Name]))
	}
	footer = append(footer, miles(total.WeekendMiles))
	if err := cw.Write(footer); err != nil {
		return eris.Wrap(err, "report: write weekly footer")
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush weekly summary")
}

// detailedRow is one trip in the detailed log.
type detailedRow struct {
	Date          string `csv:"Date"`
	Time          string `csv:"Time"`
	DayOfWeek     string `csv:"Day of Week"`
	Category      string `csv:"Category"`
	Distance      string `csv:"Distance (miles)"`
	StartAddress  string `csv:"Start Address"`
	EndAddress    string `csv:"End Address"`
	BusinessName  string `csv:"Business Name"`
	StartOdometer string `csv:"Start Odometer"`
	EndOdometer   string `csv:"End Odometer"`
	WeekStarting  string `csv:"Week Starting"`
	Notes         string `csv:"Notes"`
}

func detailedRowFor(t model.CategorizedTrip) detailedRow {
	return detailedRow{
		Date:          t.Started.Format("2006-01-02"),
		Time:          t.Started.Format("15:04"),
		DayOfWeek:     t.Started.Weekday().String(),
		Category:      t.AutoCategory.Title(),
		Distance:      miles(t.Distance),
		StartAddress:  t.StartAddress,
		EndAddress:    t.EndAddress,
		BusinessName:  reportedBusinessName(t),
		StartOdometer: t.StartOdometer,
		EndOdometer:   t.EndOdometer,
		WeekStarting:  weekly.WeekKey(t.Started),
		Notes:         t.Notes,
	}
}

// reportedBusinessName hides business names on personal trips; they are only
// meaningful on business and commute legs.
func reportedBusinessName(t model.CategorizedTrip) string {
	if t.AutoCategory == model.CategoryBusiness || t.AutoCategory == model.CategoryCommute {
		return t.BusinessName
	}
	return ""
}

func (w *Writer) writeDetailedTrips(path string, res *pipeline.Result) error {
	rows := make([]detailedRow, len(res.Trips))
	for i, t := range res.Trips {
		rows[i] = detailedRowFor(t)
	}
	return writeCSVRows(path, rows)
}

func (w *Writer) writeSummary(path string, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	t := res.Totals
	cw := csv.NewWriter(f)
	rows := [][]string{
		{"Category", "Miles", "Percentage"},
		{"Total Miles Driven", miles(t.Total), "100.0%"},
		{"Business Miles", miles(t.Business), percent(t.Business, t.Total)},
		{"Personal Miles", miles(t.PersonalReported()), percent(t.PersonalReported(), t.Total)},
		{"  - Commute", miles(t.Commute), percent(t.Commute, t.Total)},
		{"  - Other Personal", miles(t.Personal), percent(t.Personal, t.Total)},
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write summary row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush summary")
}

// journeyRow is one reconstructed journey.
type journeyRow struct {
	Date          string `csv:"Date"`
	StartTime     string `csv:"Start Time"`
	EndTime       string `csv:"End Time"`
	Duration      string `csv:"Duration (min)"`
	Category      string `csv:"Category"`
	StartAddress  string `csv:"Start Address"`
	EndAddress    string `csv:"End Address"`
	Stops         string `csv:"Stops"`
	BusinessStops string `csv:"Business Stops"`
	TotalDistance string `csv:"Total Distance (miles)"`
	SegmentCount  int    `csv:"Segment Count"`
}

func journeyRowFor(j model.FullTrip) journeyRow {
	return journeyRow{
		Date:          j.StartTime.Format("2006-01-02"),
		StartTime:     j.StartTime.Format("15:04"),
		EndTime:       j.EndTime.Format("15:04"),
		Duration:      fmt.Sprintf("%.0f", j.EndTime.Sub(j.StartTime).Minutes()),
		Category:      j.PrimaryCategory.Title(),
		StartAddress:  j.StartAddress,
		EndAddress:    j.EndAddress,
		Stops:         formatStops(j.Stops),
		BusinessStops: formatBusinessStops(j.BusinessStops),
		TotalDistance: miles(j.TotalDistance),
		SegmentCount:  len(j.Segments),
	}
}

func formatStops(stops []model.Stop) string {
	if len(stops) == 0 {
		return "Direct"
	}
	addrs := make([]string, len(stops))
	for i, s := range stops {
		addrs[i] = s.Address
	}
	return strings.Join(addrs, " -> ")
}

func formatBusinessStops(stops []model.BusinessStop) string {
	parts := make([]string, len(stops))
	for i, s := range stops {
		parts[i] = fmt.Sprintf("%s (%.1fmi)", s.BusinessName, s.Distance)
	}
	return strings.Join(parts, "; ")
}

func (w *Writer) writeReconstructed(path string, res *pipeline.Result) error {
	rows := make([]journeyRow, len(res.Journeys))
	for i, j := range res.Journeys {
		rows[i] = journeyRowFor(j)
	}
	return writeCSVRows(path, rows)
}

func (w *Writer) writeCorrelation(path string, res *pipeline.Result) error {
	return writeCSVRows(path, businessByAddress(res.Trips))
}

// writeCSVRows marshals a row slice to a CSV file with a header derived from
// the row struct's tags.
func writeCSVRows[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	cw := csv.NewWriter(f)
	enc := csvutil.NewEncoder(cw)
	if len(rows) == 0 {
		// Still emit the header so empty reports open cleanly.
		var zero T
		if err := enc.EncodeHeader(zero); err != nil {
			return eris.Wrapf(err, "report: encode header in %s", path)
		}
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return eris.Wrapf(err, "report: encode row in %s", path)
		}
	}
	cw.Flush()
	return eris.Wrapf(cw.Error(), "report: flush %s", path)
}
