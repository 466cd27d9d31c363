package scenario

import (
	"math"
	"time"

	"cooling_demand/internal/model"
)

// AnomalyMap holds an additive temperature offset (°C) for each calendar month.
// It is a value type; copies are independent.
type AnomalyMap struct {
	offsets [12]float64
	set     [12]bool
}

// NewAnomalyMap builds a complete map. Every month 1-12 must be present.
func NewAnomalyMap(offsets map[time.Month]float64) (AnomalyMap, error) {
	var m AnomalyMap
	for month, d := range offsets {
		if month < time.January || month > time.December {
			return AnomalyMap{}, &model.ConfigError{Field: "anomalies", Value: int(month), Reason: "month out of range 1-12"}
		}
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return AnomalyMap{}, &model.ConfigError{Field: "anomalies", Value: d, Reason: "offset must be finite"}
		}
		m.offsets[month-1] = d
		m.set[month-1] = true
	}
	for i, ok := range m.set {
		if !ok {
			return AnomalyMap{}, &model.ConfigError{Field: "anomalies", Value: time.Month(i + 1).String(), Reason: "month missing"}
		}
	}
	return m, nil
}

// UniformAnomalies returns a map applying the same offset to every month.
func UniformAnomalies(d float64) AnomalyMap {
	var m AnomalyMap
	for i := range m.offsets {
		m.offsets[i] = d
		m.set[i] = true
	}
	return m
}

// Offset returns the offset for month and whether it is set.
func (m AnomalyMap) Offset(month time.Month) (float64, bool) {
	if month < time.January || month > time.December {
		return 0, false
	}
	return m.offsets[month-1], m.set[month-1]
}

// Scaled returns a copy with every offset multiplied by k.
func (m AnomalyMap) Scaled(k float64) AnomalyMap {
	out := m
	for i := range out.offsets {
		out.offsets[i] *= k
	}
	return out
}

// Months returns the map as a plain month-keyed map of the set months.
func (m AnomalyMap) Months() map[time.Month]float64 {
	out := make(map[time.Month]float64, 12)
	for i, ok := range m.set {
		if ok {
			out[time.Month(i+1)] = m.offsets[i]
		}
	}
	return out
}
