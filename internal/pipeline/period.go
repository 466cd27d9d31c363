package pipeline

import (
	"cooling_demand/internal/model"
)

// PeriodSeries is one scenario's derived series cut to a sub-period, ready
// to plot against the setpoint reference line.
type PeriodSeries struct {
	Label     string
	SetpointC float64
	Internal  model.Series
	Load      model.Series
	DemandMW  model.Series
}

// Period returns the successful scenarios' series between p.Start
// (inclusive) and p.End (exclusive), in input order. The series are cut
// from the full run; the filter is not restarted at the period start.
func (r *Result) Period(p model.Period) []PeriodSeries {
	out := make([]PeriodSeries, 0, len(r.Scenarios))
	for _, sr := range r.Succeeded() {
		out = append(out, PeriodSeries{
			Label:     sr.Label,
			SetpointC: sr.SetpointC,
			Internal:  sr.Internal.Between(p.Start, p.End),
			Load:      sr.Load.Between(p.Start, p.End),
			DemandMW:  sr.DemandMW.Between(p.Start, p.End),
		})
	}
	return out
}

// TimeRange returns the span of the run's index.
func (r *Result) TimeRange() (model.TimeRange, bool) {
	if len(r.Index) == 0 {
		return model.TimeRange{}, false
	}
	return model.TimeRange{Start: r.Index[0], End: r.Index[len(r.Index)-1]}, true
}
