package export

import (
	"encoding/json"
	"io"
	"time"

	"cooling_demand/internal/model"
	"cooling_demand/internal/pipeline"
)

// ChartData is the data behind one period's charts: internal temperature
// against the setpoint, normalized load and grid demand, per scenario.
//
// The series are cut from the full-run projection. The thermal filter is
// not restarted at the period start, so the first internal temperature of a
// period carries the state built up over the preceding hours.
type ChartData struct {
	RunID      string          `json:"run_id"`
	Period     string          `json:"period"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Timestamps []time.Time     `json:"timestamps"`
	Scenarios  []ChartScenario `json:"scenarios"`
}

type ChartScenario struct {
	Label     string    `json:"label"`
	SetpointC float64   `json:"setpoint_c"`
	InternalC []float64 `json:"internal_c"`
	LoadKWe   []float64 `json:"load_kwe"`
	DemandMW  []float64 `json:"demand_mw"`
}

// Chart cuts res to period p. See ChartData for the filter state.
func Chart(res *pipeline.Result, p model.Period) ChartData {
	data := ChartData{
		RunID:      res.ID.String(),
		Period:     p.Name,
		Start:      p.Start,
		End:        p.End,
		Timestamps: []time.Time{},
		Scenarios:  []ChartScenario{},
	}

	for i, ps := range res.Period(p) {
		if i == 0 {
			data.Timestamps = ps.Internal.Index
		}
		data.Scenarios = append(data.Scenarios, ChartScenario{
			Label:     ps.Label,
			SetpointC: ps.SetpointC,
			InternalC: ps.Internal.Values,
			LoadKWe:   ps.Load.Values,
			DemandMW:  ps.DemandMW.Values,
		})
	}
	return data
}

// WriteChartJSON writes the chart data for period p as indented JSON.
func WriteChartJSON(w io.Writer, res *pipeline.Result, p model.Period) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Chart(res, p))
}
