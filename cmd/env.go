package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dewart-reps/mileage-cli/internal/address"
	"github.com/dewart-reps/mileage-cli/internal/categorize"
	"github.com/dewart-reps/mileage-cli/internal/mapping"
	"github.com/dewart-reps/mileage-cli/internal/pipeline"
	"github.com/dewart-reps/mileage-cli/internal/report"
	"github.com/dewart-reps/mileage-cli/internal/resolver"
	"github.com/dewart-reps/mileage-cli/pkg/nominatim"
	"github.com/dewart-reps/mileage-cli/pkg/places"
)

// env bundles the per-command wiring: mapping store, resolver, pipeline, and
// report writer.
type env struct {
	Store    *mapping.Store
	Resolver *resolver.Resolver
	Pipeline *pipeline.Pipeline
	Writer   *report.Writer
	Zones    []categorize.Zone
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close mapping store", zap.Error(err))
	}
}

// initStore opens and loads the configured mapping backend.
func initStore(ctx context.Context) (*mapping.Store, error) {
	var backend mapping.Backend
	switch cfg.Mapping.Driver {
	case "sqlite":
		b, err := mapping.NewSQLite(cfg.Mapping.Path)
		if err != nil {
			return nil, eris.Wrap(err, "open sqlite mapping store")
		}
		backend = b
	default:
		backend = mapping.NewFileBackend(cfg.Mapping.Path)
	}

	store := mapping.NewStore(backend)
	if err := store.Load(ctx); err != nil {
		return nil, eris.Wrap(err, "load mapping store")
	}
	return store, nil
}

// initEnv wires the full pipeline. liveLookup enables the provider cascade;
// confirm guards fuzzy suggestions.
func initEnv(ctx context.Context, liveLookup bool, confirm resolver.Confirmer) (*env, error) {
	store, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	opts := []resolver.Option{
		resolver.WithLiveLookup(liveLookup),
		resolver.WithConfirmer(confirm),
	}
	if cfg.Lookup.PlacesAPIKey != "" {
		placesOpts := []places.Option{}
		if cfg.Lookup.PlacesBaseURL != "" {
			placesOpts = append(placesOpts, places.WithBaseURL(cfg.Lookup.PlacesBaseURL))
		}
		opts = append(opts, resolver.WithPlaces(places.NewClient(cfg.Lookup.PlacesAPIKey, placesOpts...)))
	}
	opts = append(opts, resolver.WithGeocoder(nominatim.NewClient(
		cfg.Lookup.NominatimUserAgent,
		nominatim.WithBaseURL(cfg.Lookup.NominatimBaseURL),
	)))

	res := resolver.New(store, opts...)

	catCfg := categorize.Config{
		Matcher:                   address.NewMatcher(cfg.Addresses.Home, cfg.Addresses.Work),
		BusinessDistanceThreshold: cfg.Rules.BusinessDistanceThreshold,
		RemoteLeisureName:         cfg.Rules.RemoteLeisureName,
		RemoteLeisureKeywords:     cfg.Rules.RemoteLeisureKeywords,
		LocalMetroKeywords:        cfg.Rules.LocalMetroKeywords,
	}
	zones := categorize.DefaultSpecialZones()

	if cfg.Rules.ZonesFile != "" {
		zf, err := categorize.LoadZones(cfg.Rules.ZonesFile)
		if err != nil {
			return nil, err
		}
		if len(zf.RemoteLeisure.Keywords) > 0 {
			catCfg.RemoteLeisureName = zf.RemoteLeisure.Name
			catCfg.RemoteLeisureKeywords = zf.RemoteLeisure.Keywords
		}
		if len(zf.LocalMetro.Keywords) > 0 {
			catCfg.LocalMetroKeywords = zf.LocalMetro.Keywords
		}
		if len(zf.SpecialZones) > 0 {
			zones = zf.SpecialZones
		}
	}

	return &env{
		Store:    store,
		Resolver: res,
		Pipeline: pipeline.New(cfg, store, res, catCfg, zones),
		Writer:   report.NewWriter(cfg.Report.Dir, zones),
		Zones:    zones,
	}, nil
}
