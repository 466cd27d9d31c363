package scenario

import (
	"math"
	"strings"

	"cooling_demand/internal/model"
)

// Params are the raw inputs for one scenario. Anomalies is nil for a scenario
// that uses the baseline temperature unchanged.
type Params struct {
	Label             string
	ThermalInertia    float64 // γ, in (0,1]
	ComfortSetpointC  float64 // cooling threshold
	EfficiencyRatio   float64 // EER, > 0
	UnitCapacityKW    float64 // average kWe per AC unit, > 0
	CoincidenceFactor float64 // in [0,1]
	Households        int     // >= 0
	Penetration       float64 // fraction of households with AC, in [0,1]
	Anomalies         *AnomalyMap

	// Err is a failure from building the params, such as a malformed
	// anomaly map in a config file. New returns it unchanged.
	Err error
}

// Config is a validated, immutable scenario. Build it with New.
type Config struct {
	label       string
	inertia     float64
	setpoint    float64
	eer         float64
	capacityKW  float64
	coincidence float64
	households  int
	penetration float64
	anomalies   AnomalyMap
	shifted     bool
}

// New validates p and returns the scenario. The first invalid field is
// reported as a *model.ConfigError.
func New(p Params) (Config, error) {
	if strings.TrimSpace(p.Label) == "" {
		return Config{}, &model.ConfigError{Field: "label", Value: p.Label, Reason: "must not be empty"}
	}
	if p.Err != nil {
		return Config{}, p.Err
	}
	if err := validateInertia(p.ThermalInertia); err != nil {
		return Config{}, err
	}
	if !finite(p.ComfortSetpointC) {
		return Config{}, &model.ConfigError{Field: "comfort_setpoint", Value: p.ComfortSetpointC, Reason: "must be finite"}
	}
	if !finite(p.EfficiencyRatio) || p.EfficiencyRatio <= 0 {
		return Config{}, &model.ConfigError{Field: "efficiency_ratio", Value: p.EfficiencyRatio, Reason: "must be > 0"}
	}
	if !finite(p.UnitCapacityKW) || p.UnitCapacityKW <= 0 {
		return Config{}, &model.ConfigError{Field: "unit_capacity", Value: p.UnitCapacityKW, Reason: "must be > 0"}
	}
	if !inUnit(p.CoincidenceFactor) {
		return Config{}, &model.ConfigError{Field: "coincidence_factor", Value: p.CoincidenceFactor, Reason: "must be in [0,1]"}
	}
	if p.Households < 0 {
		return Config{}, &model.ConfigError{Field: "household_count", Value: p.Households, Reason: "must be >= 0"}
	}
	if !inUnit(p.Penetration) {
		return Config{}, &model.ConfigError{Field: "penetration", Value: p.Penetration, Reason: "must be in [0,1]"}
	}

	c := Config{
		label:       p.Label,
		inertia:     p.ThermalInertia,
		setpoint:    p.ComfortSetpointC,
		eer:         p.EfficiencyRatio,
		capacityKW:  p.UnitCapacityKW,
		coincidence: p.CoincidenceFactor,
		households:  p.Households,
		penetration: p.Penetration,
	}
	if p.Anomalies != nil {
		for m, ok := range p.Anomalies.set {
			if !ok {
				return Config{}, &model.ConfigError{Field: "anomalies", Value: m + 1, Reason: "month missing"}
			}
		}
		c.anomalies = *p.Anomalies
		c.shifted = true
	}
	return c, nil
}

func validateInertia(g float64) error {
	if math.IsNaN(g) || g <= 0 || g > 1 {
		return &model.ConfigError{Field: "thermal_inertia", Value: g, Reason: "must be in (0,1]"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func (c Config) Label() string              { return c.label }
func (c Config) ThermalInertia() float64    { return c.inertia }
func (c Config) ComfortSetpointC() float64  { return c.setpoint }
func (c Config) EfficiencyRatio() float64   { return c.eer }
func (c Config) UnitCapacityKW() float64    { return c.capacityKW }
func (c Config) CoincidenceFactor() float64 { return c.coincidence }
func (c Config) Households() int            { return c.households }
func (c Config) Penetration() float64       { return c.penetration }

// Anomalies returns a copy of the scenario's anomaly map, or nil for a
// baseline scenario.
func (c Config) Anomalies() *AnomalyMap {
	if !c.shifted {
		return nil
	}
	m := c.anomalies
	return &m
}

// Params returns the scenario's inputs, e.g. to derive a variant.
func (c Config) Params() Params {
	return Params{
		Label:             c.label,
		ThermalInertia:    c.inertia,
		ComfortSetpointC:  c.setpoint,
		EfficiencyRatio:   c.eer,
		UnitCapacityKW:    c.capacityKW,
		CoincidenceFactor: c.coincidence,
		Households:        c.households,
		Penetration:       c.penetration,
		Anomalies:         c.Anomalies(),
	}
}
