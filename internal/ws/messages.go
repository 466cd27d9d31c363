package ws

import (
	"encoding/json"
	"time"

	"cooling_demand/internal/model"
	"cooling_demand/internal/stats"
	"cooling_demand/internal/store"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeSeriesRequest = "series:request"

	// Server -> Client
	TypeRunLoaded  = "run:loaded"
	TypeSeriesData = "series:data"
	TypeError      = "error"
)

// Client -> Server messages

// SeriesRequestPayload asks for one scenario's series. Period, if set,
// selects a named period of the run; otherwise Start and End (RFC3339, End
// exclusive) bound the window, empty meaning the whole run.
type SeriesRequestPayload struct {
	Scenario string `json:"scenario"`
	Period   string `json:"period,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// Server -> Client messages

type ScenarioInfo struct {
	Label     string  `json:"label"`
	SetpointC float64 `json:"setpoint_c"`
}

type SeriesInfo struct {
	ID       string `json:"id"`
	Scenario string `json:"scenario"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
}

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type PeriodInfo struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type SummaryPayload struct {
	Label          string             `json:"label"`
	PeakMW         float64            `json:"peak_mw"`
	PeakAt         string             `json:"peak_at"`
	MeanMW         float64            `json:"mean_mw"`
	P95MW          float64            `json:"p95_mw"`
	EnergyMWh      float64            `json:"energy_mwh"`
	CoolingHours   int                `json:"cooling_hours"`
	MaxInternalC   float64            `json:"max_internal_c"`
	MeanInternalC  float64            `json:"mean_internal_c"`
	PeakLoadPerKWe float64            `json:"peak_load_kwe"`
	MonthlyMWh     map[string]float64 `json:"monthly_mwh"`
}

type RunLoadedPayload struct {
	RunID     string           `json:"run_id"`
	Scenarios []ScenarioInfo   `json:"scenarios"`
	Failed    []string         `json:"failed,omitempty"`
	Series    []SeriesInfo     `json:"series"`
	TimeRange TimeRangeInfo    `json:"time_range"`
	Periods   []PeriodInfo     `json:"periods"`
	Summaries []SummaryPayload `json:"summaries"`
}

// SeriesDataPayload carries the three aligned derived series of a scenario.
type SeriesDataPayload struct {
	Scenario   string    `json:"scenario"`
	Period     string    `json:"period,omitempty"`
	SetpointC  float64   `json:"setpoint_c"`
	Timestamps []string  `json:"timestamps"`
	InternalC  []float64 `json:"internal_c"`
	LoadKWe    []float64 `json:"load_kwe"`
	DemandMW   []float64 `json:"demand_mw"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func SummaryFromStats(s stats.Summary) SummaryPayload {
	monthly := make(map[string]float64, len(s.MonthlyMWh))
	for m, v := range s.MonthlyMWh {
		monthly[m.String()] = v
	}
	p := SummaryPayload{
		Label:          s.Label,
		PeakMW:         s.PeakMW,
		MeanMW:         s.MeanMW,
		P95MW:          s.P95MW,
		EnergyMWh:      s.EnergyMWh,
		CoolingHours:   s.CoolingHours,
		MaxInternalC:   s.MaxInternalC,
		MeanInternalC:  s.MeanInternalC,
		PeakLoadPerKWe: s.PeakLoadPerKWe,
		MonthlyMWh:     monthly,
	}
	if !s.PeakAt.IsZero() {
		p.PeakAt = s.PeakAt.Format(time.RFC3339)
	}
	return p
}

func SeriesInfoFromMeta(m store.SeriesMeta) SeriesInfo {
	return SeriesInfo{
		ID:       m.ID,
		Scenario: m.Scenario,
		Kind:     string(m.Kind),
		Name:     m.Name,
		Unit:     m.Unit,
	}
}

func PeriodInfoFromModel(p model.Period) PeriodInfo {
	return PeriodInfo{
		Name:  p.Name,
		Start: p.Start.Format(time.RFC3339),
		End:   p.End.Format(time.RFC3339),
	}
}
