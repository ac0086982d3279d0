// Package report writes the analysis output files: weekly summary, detailed
// trip log, overall summary, reconstructed journeys, address correlation, and
// a single multi-sheet XLSX workbook.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dewart-reps/mileage-cli/internal/categorize"
	"github.com/dewart-reps/mileage-cli/internal/model"
	"github.com/dewart-reps/mileage-cli/internal/pipeline"
)

// Output file names inside the report directory.
const (
	WeeklySummaryFile = "weekly_summary.csv"
	DetailedTripsFile = "detailed_trips.csv"
	SummaryFile       = "summary.csv"
	ReconstructedFile = "reconstructed_trips.csv"
	CorrelationFile   = "address_business_correlation.csv"
	WorkbookFile      = "mileage_analysis.xlsx"
)

// Writer renders a pipeline result into report files under dir.
type Writer struct {
	dir   string
	zones []categorize.Zone
}

// NewWriter creates a report writer. The zone list fixes the order of the
// per-zone columns.
func NewWriter(dir string, zones []categorize.Zone) *Writer {
	return &Writer{dir: dir, zones: zones}
}

// WithDir returns a copy of the writer targeting a different directory.
func (w *Writer) WithDir(dir string) *Writer {
	return &Writer{dir: dir, zones: w.zones}
}

// WriteAll writes every report file, in parallel, and returns the paths
// written. The first failure cancels the remaining writes.
func (w *Writer) WriteAll(ctx context.Context, res *pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "report: create dir %s", w.dir)
	}

	files := []struct {
		name  string
		write func(path string, res *pipeline.Result) error
	}{
		{WeeklySummaryFile, w.writeWeeklySummary},
		{DetailedTripsFile, w.writeDetailedTrips},
		{SummaryFile, w.writeSummary},
		{ReconstructedFile, w.writeReconstructed},
		{CorrelationFile, w.writeCorrelation},
		{WorkbookFile, w.writeWorkbook},
	}

	g, ctx := errgroup.WithContext(ctx)
	paths := make([]string, len(files))
	for i, f := range files {
		f := f
		path := filepath.Join(w.dir, f.name)
		paths[i] = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f.write(path, res)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("reports written",
		zap.String("dir", w.dir),
		zap.Int("files", len(paths)))
	return paths, nil
}

// weekendLabel names the weekend-window column.
const weekendLabel = "Weekend Miles (Fri 5pm-Mon 7am)"

func miles(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func percent(part, whole float64) string {
	if whole == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", part/whole*100)
}

// addressTotal is one row of the business-address correlation.
type addressTotal struct {
	Address      string `csv:"Address"`
	BusinessName string `csv:"Business Name"`
	TotalMiles   string `csv:"Total Miles"`
	TripCount    int    `csv:"Trip Count"`

	rawMiles float64 `csv:"-"`
}

// businessByAddress sums business-trip mileage per destination address,
// sorted by mileage descending with address as the tie break.
func businessByAddress(trips []model.CategorizedTrip) []addressTotal {
	type acc struct {
		name  string
		miles float64
		count int
	}
	byAddr := make(map[string]*acc)
	for _, t := range trips {
		if t.AutoCategory != model.CategoryBusiness || t.BusinessName == "" || t.EndAddress == "" {
			continue
		}
		a, ok := byAddr[t.EndAddress]
		if !ok {
			a = &acc{name: t.BusinessName}
			byAddr[t.EndAddress] = a
		}
		a.miles += t.Distance
		a.count++
	}

	rows := make([]addressTotal, 0, len(byAddr))
	for addr, a := range byAddr {
		rows = append(rows, addressTotal{
			Address:      addr,
			BusinessName: a.name,
			TotalMiles:   miles(a.miles),
			TripCount:    a.count,
			rawMiles:     a.miles,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].rawMiles != rows[j].rawMiles {
			return rows[i].rawMiles > rows[j].rawMiles
		}
		return rows[i].Address < rows[j].Address
	})
	return rows
}
