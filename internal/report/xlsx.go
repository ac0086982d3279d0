package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/dewart-reps/mileage-cli/internal/model"
	"github.com/dewart-reps/mileage-cli/internal/pipeline"
	"github.com/dewart-reps/mileage-cli/internal/weekly"
)

const milesFormat = "#,##0.00"

// writeWorkbook writes every report as a sheet of one XLSX workbook.
func (w *Writer) writeWorkbook(path string, res *pipeline.Result) error {
	f := xlsx.NewFile()

	if err := w.addSummarySheet(f, res); err != nil {
		return err
	}
	if err := w.addWeeklySheet(f, res); err != nil {
		return err
	}
	if err := w.addJourneySheet(f, res); err != nil {
		return err
	}
	if err := w.addDetailedSheet(f, res); err != nil {
		return err
	}
	if err := w.addCorrelationSheet(f, res); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "report: save workbook %s", path)
}

func addStringRow(sheet *xlsx.Sheet, values ...string) *xlsx.Row {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
	return row
}

func addMilesCell(row *xlsx.Row, v float64) {
	row.AddCell().SetFloatWithFormat(v, milesFormat)
}

func (w *Writer) addSummarySheet(f *xlsx.File, res *pipeline.Result) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	t := res.Totals
	addStringRow(sheet, "Metric", "Miles", "Percentage")
	for _, line := range []struct {
		label string
		miles float64
	}{
		{"Total Miles Driven", t.Total},
		{"Business Miles", t.Business},
		{"Personal Miles (incl. Commute)", t.PersonalReported()},
		{"  - Commute", t.Commute},
		{"  - Other Personal", t.Personal},
	} {
		row := addStringRow(sheet, line.label)
		addMilesCell(row, line.miles)
		if t.Total > 0 {
			row.AddCell().SetFloatWithFormat(line.miles/t.Total, "0.00%")
		}
	}

	sheet.AddRow()
	addStringRow(sheet, "Special Tracking", "Miles")
	zoneTotals := w.zoneTotals(res)
	for _, zone := range w.zones {
		row := addStringRow(sheet, zone.Name+" Round Trip Miles")
		addMilesCell(row, zoneTotals[zone.Name])
	}
	var weekendTotal float64
	for _, ws := range res.Weekly {
		weekendTotal += ws.WeekendMiles
	}
	addMilesCell(addStringRow(sheet, weekendLabel), weekendTotal)
	return nil
}

func (w *Writer) zoneTotals(res *pipeline.Result) map[string]float64 {
	totals := make(map[string]float64, len(w.zones))
	for _, ws := range res.Weekly {
		for name, v := range ws.ZoneMiles {
			totals[name] += v
		}
	}
	return totals
}

func (w *Writer) addWeeklySheet(f *xlsx.File, res *pipeline.Result) error {
	sheet, err := f.AddSheet("Weekly Breakdown")
	if err != nil {
		return eris.Wrap(err, "report: add weekly sheet")
	}

	header := []string{"Week Starting", "Commute", "Business", "Personal", "Total"}
	for _, zone := range w.zones {
		header = append(header, zone.Name+" RT")
	}
	header = append(header, "Weekend")
	addStringRow(sheet, header...)

	writeWeek := func(label string, ws *model.WeeklyStat) {
		row := addStringRow(sheet, label)
		addMilesCell(row, ws.Commute)
		addMilesCell(row, ws.Business)
		addMilesCell(row, ws.Personal)
		addMilesCell(row, ws.Total)
		for _, zone := range w.zones {
			addMilesCell(row, ws.ZoneMiles[zone.Name])
		}
		addMilesCell(row, ws.WeekendMiles)
	}

	total := model.WeeklyStat{ZoneMiles: make(map[string]float64)}
	for _, week := range weekly.SortedKeys(res.Weekly) {
		ws := res.Weekly[week]
		writeWeek(week, ws)

		total.Commute += ws.Commute
		total.Business += ws.Business
		total.Personal += ws.Personal
		total.Total += ws.Total
		total.WeekendMiles += ws.WeekendMiles
		for name, v := range ws.ZoneMiles {
			total.ZoneMiles[name] += v
		}
	}
	writeWeek("TOTAL", &total)
	return nil
}

func (w *Writer) addJourneySheet(f *xlsx.File, res *pipeline.Result) error {
	sheet, err := f.AddSheet("Reconstructed Trips")
	if err != nil {
		return eris.Wrap(err, "report: add journey sheet")
	}

	addStringRow(sheet, "Date", "Start Time", "End Time", "Duration (min)", "Category",
		"Start Address", "End Address", "Stops", "Business Stops",
		"Total Distance (miles)", "Segment Count")

	for _, j := range res.Journeys {
		r := journeyRowFor(j)
		row := addStringRow(sheet, r.Date, r.StartTime, r.EndTime, r.Duration, r.Category,
			r.StartAddress, r.EndAddress, r.Stops, r.BusinessStops)
		addMilesCell(row, j.TotalDistance)
		row.AddCell().SetInt(r.SegmentCount)
	}
	return nil
}

func (w *Writer) addDetailedSheet(f *xlsx.File, res *pipeline.Result) error {
	sheet, err := f.AddSheet("Detailed Trips")
	if err != nil {
		return eris.Wrap(err, "report: add detailed sheet")
	}

	addStringRow(sheet, "Date", "Time", "Day of Week", "Category", "Distance (miles)",
		"Start Address", "End Address", "Business Name",
		"Start Odometer", "End Odometer", "Week Starting", "Notes")

	for _, t := range res.Trips {
		r := detailedRowFor(t)
		row := addStringRow(sheet, r.Date, r.Time, r.DayOfWeek, r.Category)
		addMilesCell(row, t.Distance)
		for _, v := range []string{r.StartAddress, r.EndAddress, r.BusinessName,
			r.StartOdometer, r.EndOdometer, r.WeekStarting, r.Notes} {
			row.AddCell().SetString(v)
		}
	}
	return nil
}

func (w *Writer) addCorrelationSheet(f *xlsx.File, res *pipeline.Result) error {
	sheet, err := f.AddSheet("Address-Business Lookup")
	if err != nil {
		return eris.Wrap(err, "report: add correlation sheet")
	}

	addStringRow(sheet, "Address", "Business Name", "Total Miles", "Trip Count")
	for _, r := range businessByAddress(res.Trips) {
		row := addStringRow(sheet, r.Address, r.BusinessName)
		addMilesCell(row, r.rawMiles)
		row.AddCell().SetInt(r.TripCount)
	}
	return nil
}
