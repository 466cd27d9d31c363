// Package runner loads a run's baseline and executes the pipeline for a
// configuration. It is shared by the command-line tools.
package runner

import (
	"context"
	"fmt"
	"os"

	"cooling_demand/internal/config"
	"cooling_demand/internal/ingest"
	"cooling_demand/internal/model"
	"cooling_demand/internal/pipeline"
)

type Runner struct {
	cfg       *config.Config
	Client    *ingest.PowerClient
	observers []pipeline.Observer
}

func New(cfg *config.Config, observers ...pipeline.Observer) *Runner {
	return &Runner{
		cfg:       cfg,
		Client:    ingest.NewPowerClient(cfg.Zone()),
		observers: observers,
	}
}

// Baseline reads the configured input CSV, or fetches the configured year
// from NASA POWER when no input is set.
func (r *Runner) Baseline(ctx context.Context) (model.Series, error) {
	if r.cfg.Input == "" {
		s, err := r.Client.FetchYear(ctx, r.cfg.Latitude, r.cfg.Longitude, r.cfg.Year)
		if err != nil {
			return model.Series{}, fmt.Errorf("fetching %d baseline: %w", r.cfg.Year, err)
		}
		return s, nil
	}

	f, err := os.Open(r.cfg.Input)
	if err != nil {
		return model.Series{}, fmt.Errorf("opening %s: %w", r.cfg.Input, err)
	}
	defer f.Close()

	s, err := ingest.NewCSVParser(r.cfg.Zone()).Parse(f)
	if err != nil {
		return model.Series{}, fmt.Errorf("parsing %s: %w", r.cfg.Input, err)
	}
	return s, nil
}

// Pipeline builds a pipeline from the worker and filter settings.
func (r *Runner) Pipeline() *pipeline.Pipeline {
	opts := make([]pipeline.Option, 0, 2+len(r.observers))
	opts = append(opts, pipeline.WithWorkers(r.cfg.Workers))
	if pf := r.cfg.ParallelFilter; pf.MinLen > 0 {
		opts = append(opts, pipeline.WithParallelFilter(pf.MinLen, pf.Chunks))
	}
	for _, o := range r.observers {
		opts = append(opts, pipeline.WithObserver(o))
	}
	return pipeline.New(opts...)
}

// Run projects every configured scenario over baseline. Invalid scenarios
// are reported in the result's failures.
func (r *Runner) Run(baseline model.Series) (*pipeline.Result, error) {
	return r.Pipeline().RunParams(baseline, r.cfg.Params())
}

// AllFailed reports whether no scenario of res succeeded.
func AllFailed(res *pipeline.Result) bool {
	return len(res.Scenarios) == 0
}
