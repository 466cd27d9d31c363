// Package config holds the run configuration shared by the command-line
// tools: site, year, scenarios and chart periods.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cooling_demand/internal/ingest"
	"cooling_demand/internal/model"
	"cooling_demand/internal/scenario"
)

// Config is the run configuration. Keys absent from a loaded file keep
// their Default() values.
type Config struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	// LSTOffsetHours overrides the standard-time offset derived from the
	// longitude.
	LSTOffsetHours *int `yaml:"lst_offset_hours,omitempty"`
	Year           int  `yaml:"year"`

	// Input is a baseline CSV path; empty fetches from NASA POWER.
	Input     string `yaml:"input,omitempty"`
	OutputDir string `yaml:"output_dir"`

	Workers        int            `yaml:"workers"`
	ParallelFilter ParallelFilter `yaml:"parallel_filter"`

	Scenarios []ScenarioConfig `yaml:"scenarios"`
	Periods   []PeriodConfig   `yaml:"periods"`
}

// ParallelFilter enables the block-scan thermal filter for series of at
// least MinLen samples. MinLen 0 disables it.
type ParallelFilter struct {
	MinLen int `yaml:"min_len"`
	Chunks int `yaml:"chunks"`
}

// ScenarioConfig is one scenario as written in the config file. Anomalies
// are keyed by month number (1-12); no anomalies means the baseline climate.
type ScenarioConfig struct {
	Label             string          `yaml:"label"`
	ThermalInertia    float64         `yaml:"thermal_inertia"`
	ComfortSetpointC  float64         `yaml:"comfort_setpoint_c"`
	EfficiencyRatio   float64         `yaml:"efficiency_ratio"`
	UnitCapacityKW    float64         `yaml:"unit_capacity_kw"`
	CoincidenceFactor float64         `yaml:"coincidence_factor"`
	Households        int             `yaml:"households"`
	Penetration       float64         `yaml:"penetration"`
	Anomalies         map[int]float64 `yaml:"anomalies,omitempty"`
}

// PeriodConfig is a named chart window of Days days starting on Start
// ("MM-DD") of the configured year.
type PeriodConfig struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	Days  int    `yaml:"days"`
}

// Default returns the configuration for Santa Cruz de la Sierra, 2024, with
// the baseline, SSP1-2.6 and SSP5-8.5 scenarios.
func Default() *Config {
	params := scenario.DefaultParams()
	scenarios := make([]ScenarioConfig, len(params))
	for i, p := range params {
		scenarios[i] = fromParams(p)
	}

	return &Config{
		Latitude:  -17.783,
		Longitude: -63.182,
		Year:      2024,
		OutputDir: "output",
		Scenarios: scenarios,
		Periods: []PeriodConfig{
			{Name: "january", Start: "01-10", Days: 7},
			{Name: "june", Start: "06-15", Days: 7},
		},
	}
}

func fromParams(p scenario.Params) ScenarioConfig {
	sc := ScenarioConfig{
		Label:             p.Label,
		ThermalInertia:    p.ThermalInertia,
		ComfortSetpointC:  p.ComfortSetpointC,
		EfficiencyRatio:   p.EfficiencyRatio,
		UnitCapacityKW:    p.UnitCapacityKW,
		CoincidenceFactor: p.CoincidenceFactor,
		Households:        p.Households,
		Penetration:       p.Penetration,
	}
	if p.Anomalies != nil {
		sc.Anomalies = make(map[int]float64, 12)
		for m, v := range p.Anomalies.Months() {
			sc.Anomalies[int(m)] = v
		}
	}
	return sc
}

// Load reads a YAML config file on top of Default(). Scenario and period
// lists in the file replace the defaults when present.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data on top of Default().
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.merge(&file)
	return cfg, nil
}

// fileConfig mirrors Config with pointer fields so that explicit zero
// values, such as a site on the equator, are told apart from absent keys.
type fileConfig struct {
	Latitude       *float64         `yaml:"latitude"`
	Longitude      *float64         `yaml:"longitude"`
	LSTOffsetHours *int             `yaml:"lst_offset_hours"`
	Year           *int             `yaml:"year"`
	Input          *string          `yaml:"input"`
	OutputDir      *string          `yaml:"output_dir"`
	Workers        *int             `yaml:"workers"`
	ParallelFilter *ParallelFilter  `yaml:"parallel_filter"`
	Scenarios      []ScenarioConfig `yaml:"scenarios"`
	Periods        []PeriodConfig   `yaml:"periods"`
}

func (c *Config) merge(o *fileConfig) {
	if o.Latitude != nil {
		c.Latitude = *o.Latitude
	}
	if o.Longitude != nil {
		c.Longitude = *o.Longitude
	}
	if o.LSTOffsetHours != nil {
		c.LSTOffsetHours = o.LSTOffsetHours
	}
	if o.Year != nil {
		c.Year = *o.Year
	}
	if o.Input != nil {
		c.Input = *o.Input
	}
	if o.OutputDir != nil {
		c.OutputDir = *o.OutputDir
	}
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
	if o.ParallelFilter != nil {
		c.ParallelFilter = *o.ParallelFilter
	}
	if len(o.Scenarios) > 0 {
		c.Scenarios = o.Scenarios
	}
	if len(o.Periods) > 0 {
		c.Periods = o.Periods
	}
}

// LSTOffset returns the configured or longitude-derived standard-time offset.
func (c *Config) LSTOffset() time.Duration {
	if c.LSTOffsetHours != nil {
		return time.Duration(*c.LSTOffsetHours) * time.Hour
	}
	return ingest.LSTOffset(c.Longitude)
}

// Zone returns the fixed zone timestamps are stamped in.
func (c *Config) Zone() *time.Location {
	return ingest.LSTZone(c.LSTOffset())
}

// Params converts the scenario list to pipeline inputs. A scenario whose
// anomaly map is malformed carries the error in Params.Err, so it fails on
// its own while the other scenarios still run.
func (c *Config) Params() []scenario.Params {
	out := make([]scenario.Params, len(c.Scenarios))
	for i, sc := range c.Scenarios {
		p, err := sc.params()
		if err != nil {
			p = scenario.Params{Label: sc.Label, Err: err}
		}
		out[i] = p
	}
	return out
}

func (sc ScenarioConfig) params() (scenario.Params, error) {
	p := scenario.Params{
		Label:             sc.Label,
		ThermalInertia:    sc.ThermalInertia,
		ComfortSetpointC:  sc.ComfortSetpointC,
		EfficiencyRatio:   sc.EfficiencyRatio,
		UnitCapacityKW:    sc.UnitCapacityKW,
		CoincidenceFactor: sc.CoincidenceFactor,
		Households:        sc.Households,
		Penetration:       sc.Penetration,
	}
	if len(sc.Anomalies) == 0 {
		return p, nil
	}

	months := make(map[time.Month]float64, len(sc.Anomalies))
	for m, v := range sc.Anomalies {
		months[time.Month(m)] = v
	}
	am, err := scenario.NewAnomalyMap(months)
	if err != nil {
		return scenario.Params{}, err
	}
	p.Anomalies = &am
	return p, nil
}

// ValidScenarios validates every scenario and returns the valid ones. The
// error joins one error per invalid scenario, each naming its label.
func (c *Config) ValidScenarios() ([]scenario.Config, error) {
	var out []scenario.Config
	var errs []error
	for _, sc := range c.Scenarios {
		p, err := sc.params()
		if err == nil {
			var cfg scenario.Config
			cfg, err = scenario.New(p)
			if err == nil {
				out = append(out, cfg)
				continue
			}
		}
		errs = append(errs, fmt.Errorf("scenario %q: %w", sc.Label, err))
	}
	return out, errors.Join(errs...)
}

// ChartPeriods resolves the configured periods in the configured year and
// zone.
func (c *Config) ChartPeriods() ([]model.Period, error) {
	loc := c.Zone()
	out := make([]model.Period, 0, len(c.Periods))
	for _, pc := range c.Periods {
		md, err := time.Parse("01-02", pc.Start)
		if err != nil {
			return nil, &model.ConfigError{Field: "period " + pc.Name, Value: pc.Start, Reason: "start must be MM-DD"}
		}
		if pc.Days <= 0 {
			return nil, &model.ConfigError{Field: "period " + pc.Name, Value: pc.Days, Reason: "days must be positive"}
		}
		start := time.Date(c.Year, md.Month(), md.Day(), 0, 0, 0, 0, loc)
		out = append(out, model.Period{
			Name:  pc.Name,
			Start: start,
			End:   start.AddDate(0, 0, pc.Days),
		})
	}
	return out, nil
}
