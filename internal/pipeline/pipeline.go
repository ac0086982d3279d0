// Package pipeline orchestrates the analysis: stop merging, micro-trip
// flagging, categorization with business resolution, journey reconstruction,
// and weekly aggregation. It runs synchronously; a concurrent host runs it
// off its own event thread.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/dewart-reps/mileage-cli/internal/categorize"
	"github.com/dewart-reps/mileage-cli/internal/config"
	"github.com/dewart-reps/mileage-cli/internal/journey"
	"github.com/dewart-reps/mileage-cli/internal/mapping"
	"github.com/dewart-reps/mileage-cli/internal/model"
	"github.com/dewart-reps/mileage-cli/internal/resolver"
	"github.com/dewart-reps/mileage-cli/internal/trips"
	"github.com/dewart-reps/mileage-cli/internal/weekly"
)

// Result is everything one analysis run produces.
type Result struct {
	Trips      []model.CategorizedTrip      `json:"trips"`
	Journeys   []model.FullTrip             `json:"journeys"`
	Weekly     map[string]*model.WeeklyStat `json:"weekly"`
	Totals     model.Totals                 `json:"totals"`
	MergeCount int                          `json:"merge_count"`
	MicroCount int                          `json:"micro_count"`
}

// Pipeline wires the stages together around a shared mapping store.
type Pipeline struct {
	cfg         *config.Config
	store       *mapping.Store
	categorizer *categorize.Categorizer
	zones       []categorize.Zone
}

// New builds a Pipeline from configuration, a loaded mapping store, and a
// resolver.
func New(cfg *config.Config, store *mapping.Store, res *resolver.Resolver, catCfg categorize.Config, zones []categorize.Zone) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		store:       store,
		categorizer: categorize.New(catCfg, store, res),
		zones:       zones,
	}
}

// Categorizer exposes the rule diagnostics for audit surfaces.
func (p *Pipeline) Categorizer() *categorize.Categorizer { return p.categorizer }

// Run executes the full pipeline over raw segments. The mapping store is
// flushed once at the end of the batch; resolution outcomes persisted along
// the way make a rerun against the same store idempotent and provider-free.
func (p *Pipeline) Run(ctx context.Context, segments []model.TripSegment) (*Result, error) {
	merged, mergeCount := trips.MergeShortStops(segments, p.cfg.Merge.MaxGapMinutes, p.cfg.Merge.MaxStopDistance)
	flagged, microCount := trips.FlagMicroTrips(merged, p.cfg.Merge.MicroMaxDistance)

	categorized := make([]model.CategorizedTrip, 0, len(flagged))
	for _, trip := range flagged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		categorized = append(categorized, p.categorizer.Categorize(ctx, trip))
	}

	if err := p.store.Flush(ctx); err != nil {
		// Resolution keeps working off the in-memory store; losing the
		// flush costs repeat lookups next run, not correctness.
		zap.L().Warn("pipeline: mapping store flush failed", zap.Error(err))
	}

	stats := weekly.Aggregate(categorized, p.zones)

	var totals model.Totals
	for _, trip := range categorized {
		totals.Add(trip)
	}

	zap.L().Info("analysis complete",
		zap.Int("segments", len(segments)),
		zap.Int("trips", len(categorized)),
		zap.Int("merges", mergeCount),
		zap.Int("micro_trips", microCount),
		zap.Int("weeks", len(stats)),
		zap.Float64("total_miles", totals.Total),
	)

	return &Result{
		Trips:      categorized,
		Journeys:   journey.Reconstruct(categorized),
		Weekly:     stats,
		Totals:     totals,
		MergeCount: mergeCount,
		MicroCount: microCount,
	}, nil
}
