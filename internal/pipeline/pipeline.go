// Package pipeline runs the shift → filter → project chain for a set of
// scenarios over one shared baseline outdoor temperature series.
package pipeline

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cooling_demand/internal/demand"
	"cooling_demand/internal/model"
	"cooling_demand/internal/scenario"
	"cooling_demand/internal/thermal"
)

// ScenarioResult holds every series derived for one scenario. All series
// share the baseline's index.
type ScenarioResult struct {
	Label     string
	SetpointC float64
	Outdoor   model.Series // baseline shifted by the scenario's anomalies
	Internal  model.Series
	Load      model.Series // kWe per unit
	DemandMW  model.Series
}

// ScenarioError attaches a scenario label to a component error.
type ScenarioError struct {
	Label string
	Err   error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("scenario %q: %v", e.Label, e.Err)
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}

// Result is the complete output of one run.
type Result struct {
	ID        uuid.UUID
	Index     []time.Time
	Labels    []string // input order, failed scenarios included
	Scenarios map[string]ScenarioResult
	Failures  map[string]*ScenarioError
}

// Succeeded returns the successful results in input order.
func (r *Result) Succeeded() []ScenarioResult {
	out := make([]ScenarioResult, 0, len(r.Scenarios))
	for _, l := range r.Labels {
		if sr, ok := r.Scenarios[l]; ok {
			out = append(out, sr)
		}
	}
	return out
}

// Err joins all scenario failures in input order, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, l := range r.Labels {
		if f, ok := r.Failures[l]; ok {
			errs = append(errs, f)
		}
	}
	return errors.Join(errs...)
}

// Observer is notified once per scenario with its outcome. It may be called
// concurrently from worker goroutines.
type Observer interface {
	ScenarioDone(label string, elapsed time.Duration, err error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds how many scenarios run at once.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithParallelFilter switches the thermal filter to the block prefix scan
// for series of at least minLen samples, using the given chunk count.
func WithParallelFilter(minLen, chunks int) Option {
	return func(p *Pipeline) {
		p.parallelMinLen = minLen
		p.chunks = chunks
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, o)
	}
}

// Pipeline is stateless between runs and safe for concurrent use.
type Pipeline struct {
	workers        int
	parallelMinLen int
	chunks         int
	observers      []Observer
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{workers: runtime.GOMAXPROCS(0)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run projects every scenario over baseline. An invalid baseline or
// duplicate labels abort the run. A failing scenario is recorded in
// Result.Failures and does not stop the others.
func (p *Pipeline) Run(baseline model.Series, scenarios []scenario.Config) (*Result, error) {
	entries := make([]entry, len(scenarios))
	for i, c := range scenarios {
		if c.Label() == "" {
			return nil, &model.ConfigError{Field: "label", Value: i, Reason: "scenario has no label (use scenario.New)"}
		}
		entries[i] = entry{label: c.Label(), cfg: c}
	}
	return p.run(baseline, entries)
}

// RunParams validates each scenario's parameters and runs the valid ones.
// A scenario with invalid parameters is reported in Result.Failures under its
// label; it does not abort the run.
func (p *Pipeline) RunParams(baseline model.Series, params []scenario.Params) (*Result, error) {
	entries := make([]entry, len(params))
	for i, sp := range params {
		if sp.Label == "" {
			return nil, &model.ConfigError{Field: "label", Value: i, Reason: "must not be empty"}
		}
		c, err := scenario.New(sp)
		entries[i] = entry{label: sp.Label, cfg: c, err: err}
	}
	return p.run(baseline, entries)
}

type entry struct {
	label string
	cfg   scenario.Config
	err   error // construction error
}

func (p *Pipeline) run(baseline model.Series, entries []entry) (*Result, error) {
	if err := baseline.Validate(); err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}

	labels := make([]string, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		i, e := i, e
		if seen[e.label] {
			return nil, &model.ConfigError{Field: "label", Value: e.label, Reason: "duplicate scenario label"}
		}
		seen[e.label] = true
		labels[i] = e.label
	}

	results := make([]ScenarioResult, len(entries))
	errs := make([]error, len(entries))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, e := range entries {
		i, e := i, e
		if e.err != nil {
			errs[i] = fmt.Errorf("config: %w", e.err)
			p.notify(e.label, 0, errs[i])
			continue
		}
		g.Go(func() error {
			start := time.Now()
			results[i], errs[i] = p.runScenario(baseline, e.cfg)
			p.notify(e.label, time.Since(start), errs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		ID:        uuid.New(),
		Index:     baseline.Index,
		Labels:    labels,
		Scenarios: make(map[string]ScenarioResult, len(entries)),
		Failures:  make(map[string]*ScenarioError),
	}
	for i, l := range labels {
		if errs[i] != nil {
			res.Failures[l] = &ScenarioError{Label: l, Err: errs[i]}
			continue
		}
		res.Scenarios[l] = results[i]
	}
	return res, nil
}

func (p *Pipeline) notify(label string, elapsed time.Duration, err error) {
	for _, o := range p.observers {
		o.ScenarioDone(label, elapsed, err)
	}
}

func (p *Pipeline) runScenario(baseline model.Series, c scenario.Config) (ScenarioResult, error) {
	outdoor, err := scenario.ShiftFor(baseline, c)
	if err != nil {
		return ScenarioResult{}, fmt.Errorf("shift: %w", err)
	}

	var internal model.Series
	if p.parallelMinLen > 0 && outdoor.Len() >= p.parallelMinLen {
		internal, err = thermal.FilterParallel(outdoor, c.ThermalInertia(), p.chunks)
	} else {
		internal, err = thermal.Filter(outdoor, c.ThermalInertia())
	}
	if err != nil {
		return ScenarioResult{}, fmt.Errorf("thermal filter: %w", err)
	}

	proj := demand.Project(internal, c)
	return ScenarioResult{
		Label:     c.Label(),
		SetpointC: c.ComfortSetpointC(),
		Outdoor:   outdoor,
		Internal:  internal,
		Load:      proj.Load,
		DemandMW:  proj.DemandMW,
	}, nil
}
