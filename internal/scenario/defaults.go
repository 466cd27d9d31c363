package scenario

import "time"

// Model constants for Santa Cruz de la Sierra (Bolivia).
const (
	DefaultThermalInertia    = 0.5  // BAIT smoothing
	DefaultComfortSetpointC  = 24.0 // °C
	DefaultEfficiencyRatio   = 3.2  // EER
	DefaultUnitCapacityKW    = 1.2  // kWe per unit
	DefaultCoincidenceFactor = 0.4

	BaselineHouseholds  = 550000
	BaselinePenetration = 0.35
	FutureHouseholds    = 780000
	SSP1Penetration     = 0.50
	SSP5Penetration     = 0.65

	// SSP1Factor scales the SSP5-8.5 monthly deltas to SSP1-2.6.
	SSP1Factor = 0.45
)

const (
	LabelBaseline = "2024"
	LabelSSP1     = "SSP1"
	LabelSSP5     = "SSP5"
)

// SSP5Deltas are the 2050 monthly warming deltas (°C) under SSP5-8.5.
var SSP5Deltas = map[time.Month]float64{
	time.January: 2.5, time.February: 2.5, time.March: 2.6, time.April: 2.7,
	time.May: 2.8, time.June: 3.0, time.July: 3.1, time.August: 3.2,
	time.September: 3.3, time.October: 2.9, time.November: 2.7, time.December: 2.6,
}

// DefaultParams returns baseline, SSP1-2.6 and SSP5-8.5 scenario inputs in
// that order.
func DefaultParams() []Params {
	ssp5, err := NewAnomalyMap(SSP5Deltas)
	if err != nil {
		panic(err)
	}
	ssp1 := ssp5.Scaled(SSP1Factor)

	base := Params{
		ThermalInertia:    DefaultThermalInertia,
		ComfortSetpointC:  DefaultComfortSetpointC,
		EfficiencyRatio:   DefaultEfficiencyRatio,
		UnitCapacityKW:    DefaultUnitCapacityKW,
		CoincidenceFactor: DefaultCoincidenceFactor,
	}

	baseline := base
	baseline.Label = LabelBaseline
	baseline.Households = BaselineHouseholds
	baseline.Penetration = BaselinePenetration

	s1 := base
	s1.Label = LabelSSP1
	s1.Households = FutureHouseholds
	s1.Penetration = SSP1Penetration
	s1.Anomalies = &ssp1

	s5 := base
	s5.Label = LabelSSP5
	s5.Households = FutureHouseholds
	s5.Penetration = SSP5Penetration
	s5.Anomalies = &ssp5

	return []Params{baseline, s1, s5}
}

// Defaults returns the validated default scenarios.
func Defaults() []Config {
	params := DefaultParams()
	out := make([]Config, len(params))
	for i, p := range params {
		c, err := New(p)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}
