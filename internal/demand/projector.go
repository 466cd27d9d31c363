// Package demand scales internal temperature into per-unit and aggregate
// cooling load.
package demand

import (
	"cooling_demand/internal/model"
	"cooling_demand/internal/scenario"
)

// NormalizedLoad returns the electrical draw per AC unit (kWe):
// max(0, internal-setpoint) / efficiencyRatio. There is no heating branch.
func NormalizedLoad(internal model.Series, setpointC, efficiencyRatio float64) model.Series {
	out := make([]float64, internal.Len())
	for i, t := range internal.Values {
		out[i] = max(0, t-setpointC) / efficiencyRatio
	}
	return internal.Derive(out)
}

// ScaleMW returns the MW of grid demand per kWe of normalized load,
// households·penetration·unitCapacityKW·coincidence / 1000.
func ScaleMW(households int, penetration, unitCapacityKW, coincidence float64) float64 {
	return float64(households) * penetration * unitCapacityKW * coincidence / 1000
}

// GridDemandMW scales a normalized load series to aggregate grid demand in MW.
func GridDemandMW(load model.Series, households int, penetration, unitCapacityKW, coincidence float64) model.Series {
	s := float64(households) * penetration * unitCapacityKW * coincidence
	out := make([]float64, load.Len())
	for i, p := range load.Values {
		out[i] = p * s / 1000
	}
	return load.Derive(out)
}

// Projection holds the two projector outputs for one scenario.
type Projection struct {
	Load     model.Series
	DemandMW model.Series
}

// Project applies both projector steps with c's parameters.
func Project(internal model.Series, c scenario.Config) Projection {
	load := NormalizedLoad(internal, c.ComfortSetpointC(), c.EfficiencyRatio())
	return Projection{
		Load:     load,
		DemandMW: GridDemandMW(load, c.Households(), c.Penetration(), c.UnitCapacityKW(), c.CoincidenceFactor()),
	}
}
