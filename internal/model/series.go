package model

import (
	"sort"
	"time"
)

// SeriesKind identifies what a series holds.
type SeriesKind string

const (
	KindOutdoorTemp    SeriesKind = "outdoor"
	KindInternalTemp   SeriesKind = "internal"
	KindNormalizedLoad SeriesKind = "load"
	KindGridDemand     SeriesKind = "mw"
)

// SeriesInfo holds display name and unit for a series kind.
type SeriesInfo struct {
	Name string
	Unit string
}

// SeriesCatalog maps every known SeriesKind to its display name and unit.
var SeriesCatalog = map[SeriesKind]SeriesInfo{
	KindOutdoorTemp:    {Name: "Outdoor Temperature", Unit: "°C"},
	KindInternalTemp:   {Name: "Internal (BAIT) Temperature", Unit: "°C"},
	KindNormalizedLoad: {Name: "Normalized Cooling Load", Unit: "kWe/unit"},
	KindGridDemand:     {Name: "Grid Cooling Demand", Unit: "MW"},
}

// Series is an ordered hourly sequence of values. Index and Values have equal
// length. Series derived from another share its Index slice; neither slice is
// modified after construction.
type Series struct {
	Index  []time.Time
	Values []float64
}

// NewSeries builds a series from parallel timestamp and value slices. A
// length mismatch is reported as an *AlignmentError.
func NewSeries(index []time.Time, values []float64) (Series, error) {
	if len(index) != len(values) {
		return Series{}, &AlignmentError{Index: min(len(index), len(values)), Reason: "index and values length differ"}
	}
	return Series{Index: index, Values: values}, nil
}

// MustSeries is like NewSeries but panics on a length mismatch. It is meant
// for slices whose lengths are equal by construction.
func MustSeries(index []time.Time, values []float64) Series {
	s, err := NewSeries(index, values)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Values)
}

// Derive returns a series with the same index and the given values, which
// must have s.Len() elements.
func (s Series) Derive(values []float64) Series {
	return Series{Index: s.Index, Values: values}
}

// Validate checks the series is non-empty, strictly increasing and hourly.
func (s Series) Validate() error {
	if len(s.Values) == 0 {
		return &EmptySeriesError{}
	}
	if len(s.Index) != len(s.Values) {
		return &AlignmentError{Index: len(s.Index), Reason: "index and values length differ"}
	}
	for i := 1; i < len(s.Index); i++ {
		prev, cur := s.Index[i-1], s.Index[i]
		if !cur.After(prev) {
			return &AlignmentError{Index: i, Prev: prev, Got: cur, Reason: "timestamps not strictly increasing"}
		}
		if cur.Sub(prev) != time.Hour {
			return &AlignmentError{Index: i, Prev: prev, Got: cur, Reason: "timestamps not hourly"}
		}
	}
	return nil
}

// TimeRange returns the first and last timestamps. ok is false for an empty series.
func (s Series) TimeRange() (TimeRange, bool) {
	if len(s.Index) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{Start: s.Index[0], End: s.Index[len(s.Index)-1]}, true
}

// Bounds returns the index positions [from, to) covering start (inclusive)
// to end (exclusive).
func (s Series) Bounds(start, end time.Time) (from, to int) {
	from = sort.Search(len(s.Index), func(i int) bool {
		return !s.Index[i].Before(start)
	})
	to = sort.Search(len(s.Index), func(i int) bool {
		return !s.Index[i].Before(end)
	})
	if to < from {
		to = from
	}
	return from, to
}

// Between returns the sub-series between start (inclusive) and end (exclusive).
// The result aliases the receiver's backing arrays.
func (s Series) Between(start, end time.Time) Series {
	from, to := s.Bounds(start, end)
	return Series{Index: s.Index[from:to], Values: s.Values[from:to]}
}

// SameIndex reports whether two series have identical timestamps.
func (s Series) SameIndex(o Series) bool {
	if len(s.Index) != len(o.Index) {
		return false
	}
	for i := range s.Index {
		if !s.Index[i].Equal(o.Index[i]) {
			return false
		}
	}
	return true
}

// TimeRange is a closed span of time.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Period is a named sub-span of a run used for charting, End exclusive.
type Period struct {
	Name  string
	Start time.Time
	End   time.Time
}
