package store

import (
	"sort"
	"sync"
	"time"

	"cooling_demand/internal/model"
	"cooling_demand/internal/pipeline"
)

// SeriesMeta describes a stored series.
type SeriesMeta struct {
	ID       string
	Scenario string
	Kind     model.SeriesKind
	Name     string
	Unit     string
}

// Store holds result series in memory, indexed by series ID
// ("<scenario>/<kind>"). Stored series are never modified.
type Store struct {
	mu        sync.RWMutex
	meta      map[string]SeriesMeta
	series    map[string]model.Series
	setpoints map[string]float64 // keyed by scenario label
	order     []string           // scenario labels in load order
}

func New() *Store {
	return &Store{
		meta:      make(map[string]SeriesMeta),
		series:    make(map[string]model.Series),
		setpoints: make(map[string]float64),
	}
}

// SeriesID returns the store key for a scenario's series of the given kind.
func SeriesID(scenario string, kind model.SeriesKind) string {
	return scenario + "/" + string(kind)
}

// AddSeries registers a series for a scenario.
func (s *Store) AddSeries(scenario string, kind model.SeriesKind, series model.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := SeriesID(scenario, kind)
	info := model.SeriesCatalog[kind]
	s.meta[id] = SeriesMeta{
		ID:       id,
		Scenario: scenario,
		Kind:     kind,
		Name:     info.Name,
		Unit:     info.Unit,
	}
	s.series[id] = series
	s.addScenarioLocked(scenario)
}

func (s *Store) addScenarioLocked(scenario string) {
	for _, l := range s.order {
		if l == scenario {
			return
		}
	}
	s.order = append(s.order, scenario)
}

// LoadResult stores every series of every successful scenario in res.
func (s *Store) LoadResult(res *pipeline.Result) {
	for _, sr := range res.Succeeded() {
		s.AddSeries(sr.Label, model.KindOutdoorTemp, sr.Outdoor)
		s.AddSeries(sr.Label, model.KindInternalTemp, sr.Internal)
		s.AddSeries(sr.Label, model.KindNormalizedLoad, sr.Load)
		s.AddSeries(sr.Label, model.KindGridDemand, sr.DemandMW)

		s.mu.Lock()
		s.setpoints[sr.Label] = sr.SetpointC
		s.mu.Unlock()
	}
}

// Scenarios returns scenario labels in load order.
func (s *Store) Scenarios() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Setpoint returns the comfort setpoint of a scenario.
func (s *Store) Setpoint(scenario string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.setpoints[scenario]
	return v, ok
}

// Meta returns metadata of all stored series, sorted by ID.
func (s *Store) Meta() []SeriesMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SeriesMeta, 0, len(s.meta))
	for _, m := range s.meta {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of samples in a series.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series[id].Len()
}

// TimeRange returns the time range covered by a series.
func (s *Store) TimeRange(id string) (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series[id].TimeRange()
}

// GlobalTimeRange returns the union of all series' time ranges.
func (s *Store) GlobalTimeRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var start, end time.Time
	first := true

	for _, series := range s.series {
		tr, ok := series.TimeRange()
		if !ok {
			continue
		}
		if first || tr.Start.Before(start) {
			start = tr.Start
		}
		if first || tr.End.After(end) {
			end = tr.End
		}
		first = false
	}

	if first {
		return model.TimeRange{}, false
	}
	return model.TimeRange{Start: start, End: end}, true
}

// InRange returns a copy of a series between start (inclusive) and end
// (exclusive).
func (s *Store) InRange(id string, start, end time.Time) (model.Series, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, ok := s.series[id]
	if !ok {
		return model.Series{}, false
	}

	sub := all.Between(start, end)
	index := make([]time.Time, sub.Len())
	values := make([]float64, sub.Len())
	copy(index, sub.Index)
	copy(values, sub.Values)
	return model.Series{Index: index, Values: values}, true
}

// ValueAt returns the most recent value at or before t.
func (s *Store) ValueAt(id string, t time.Time) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.series[id]
	if all.Len() == 0 {
		return 0, false
	}

	// Find first sample after t
	idx := sort.Search(all.Len(), func(i int) bool {
		return all.Index[i].After(t)
	})

	if idx == 0 {
		return 0, false
	}

	return all.Values[idx-1], true
}
