package model

import (
	"fmt"
	"time"
)

// ConfigError reports an invalid scenario parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// EmptySeriesError is returned when a zero-length series reaches the model.
type EmptySeriesError struct{}

func (e *EmptySeriesError) Error() string {
	return "empty series"
}

// AlignmentError reports a series whose timestamps are not strictly
// increasing and hourly, or series that do not share an index.
type AlignmentError struct {
	Index  int
	Prev   time.Time
	Got    time.Time
	Reason string
}

func (e *AlignmentError) Error() string {
	if e.Prev.IsZero() && e.Got.IsZero() {
		return fmt.Sprintf("misaligned series at %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("misaligned series at %d (%s after %s): %s",
		e.Index, e.Got.Format(time.RFC3339), e.Prev.Format(time.RFC3339), e.Reason)
}
