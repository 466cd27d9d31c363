// Package stats computes per-scenario summary statistics of a run.
package stats

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"cooling_demand/internal/pipeline"
)

// Summary describes one scenario's projected demand.
type Summary struct {
	Label          string
	PeakMW         float64
	PeakAt         time.Time
	MeanMW         float64
	P95MW          float64
	EnergyMWh      float64 // hourly samples, so Σ MW·1h
	CoolingHours   int     // hours with non-zero load
	MaxInternalC   float64
	MeanInternalC  float64
	MonthlyMWh     map[time.Month]float64
	PeakLoadPerKWe float64
}

// Summarize computes the summary for one scenario result.
func Summarize(sr pipeline.ScenarioResult) Summary {
	s := Summary{Label: sr.Label, MonthlyMWh: make(map[time.Month]float64)}
	mw := sr.DemandMW.Values
	if len(mw) == 0 {
		return s
	}

	peakIdx := floats.MaxIdx(mw)
	s.PeakMW = mw[peakIdx]
	s.PeakAt = sr.DemandMW.Index[peakIdx]
	s.MeanMW = stat.Mean(mw, nil)
	s.EnergyMWh = floats.Sum(mw)

	sorted := slices.Clone(mw)
	slices.Sort(sorted)
	s.P95MW = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	for i, v := range sr.Load.Values {
		if v > 0 {
			s.CoolingHours++
		}
		if v > s.PeakLoadPerKWe {
			s.PeakLoadPerKWe = v
		}
		s.MonthlyMWh[sr.DemandMW.Index[i].Month()] += mw[i]
	}

	s.MaxInternalC = floats.Max(sr.Internal.Values)
	s.MeanInternalC = stat.Mean(sr.Internal.Values, nil)
	return s
}

// SummarizeAll summarizes every successful scenario in input order.
func SummarizeAll(res *pipeline.Result) []Summary {
	ok := res.Succeeded()
	out := make([]Summary, len(ok))
	for i, sr := range ok {
		out[i] = Summarize(sr)
	}
	return out
}

// Increase returns the relative change of b's peak and energy over a's, as
// fractions (0.25 = +25%). Zero baselines give zero.
func Increase(a, b Summary) (peak, energy float64) {
	if a.PeakMW > 0 {
		peak = (b.PeakMW - a.PeakMW) / a.PeakMW
	}
	if a.EnergyMWh > 0 {
		energy = (b.EnergyMWh - a.EnergyMWh) / a.EnergyMWh
	}
	return peak, energy
}
