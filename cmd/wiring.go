package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/recessionwatch/internal/adapters/fred"
	"github.com/okian/recessionwatch/internal/adapters/multpl"
	"github.com/okian/recessionwatch/internal/adapters/repository"
	app "github.com/okian/recessionwatch/internal/app"
	"github.com/okian/recessionwatch/internal/config"
	"github.com/okian/recessionwatch/internal/sources"
	"github.com/okian/recessionwatch/pkg/logger"
)

// FRED series identifiers.
const (
	seriesUnemployment = "UNRATE"
	seriesHousePrice   = "MSPUS"
	seriesCPIAll       = "CPIAUCSL"
	seriesCPICore      = "CPILFESL"
	seriesTenYear      = "DGS10"
	seriesOneYear      = "DGS1"
)

// newPipeline wires the upstream clients and source adapters from cfg.
func newPipeline(cfg *config.Config, log logger.Logger) (*app.Pipeline, error) {
	epoch, err := cfg.EpochDate()
	if err != nil {
		return nil, err
	}
	start, err := cfg.AnalysisStartDate()
	if err != nil {
		return nil, err
	}
	cal, err := cfg.RecessionCalendar()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}
	fc := fred.NewClient(
		fred.WithHTTPClient(httpClient),
		fred.WithBaseURL(cfg.FredBaseURL),
		fred.WithGraphURL(cfg.FredGraphURL),
		fred.WithAPIKey(cfg.FredAPIKey),
		fred.WithRateLimit(cfg.FetchRatePerSecond),
	)
	mc := multpl.NewClient(multpl.WithHTTPClient(httpClient), multpl.WithURL(cfg.MultplURL))

	from := epoch.Time()
	srcOpt := sources.WithLogger(log.Named("sources"))
	return app.NewPipeline(
		app.WithAdapters(
			sources.NewUnemployment(fc.Series(seriesUnemployment, from), srcOpt),
			sources.NewHousing(fc.Series(seriesHousePrice, from), srcOpt),
			sources.NewInflation(
				fc.GraphSeries(seriesCPIAll, fred.TransformPercentChange, from),
				fc.GraphSeries(seriesCPICore, fred.TransformPercentChange, from),
				srcOpt,
			),
			sources.NewYields(fc.Series(seriesTenYear, from), fc.Series(seriesOneYear, from), srcOpt),
			sources.NewEquity(mc, srcOpt),
		),
		app.WithRecessionCalendar(cal),
		app.WithEpoch(epoch),
		app.WithAnalysisStart(start),
		app.WithPipelineLogger(log.Named("pipeline")),
	), nil
}

// openStore returns the Postgres store when a database is configured and
// an in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	if cfg.DatabaseURL == "" {
		return repository.NewMemoryStore(), nil
	}
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	store, err := repository.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "using postgres store")
	return store, nil
}

// newService builds the pipeline, the store and the service around them.
func newService(ctx context.Context, env *runtimeEnv, opts ...app.Option) (*app.Service, error) {
	pipeline, err := newPipeline(env.cfg, env.log)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, env.cfg, env.log)
	if err != nil {
		return nil, err
	}
	opts = append([]app.Option{
		app.WithStore(store),
		app.WithLogger(env.log.Named("service")),
	}, opts...)
	return app.New(pipeline, opts...), nil
}
