package scenario

import (
	"cooling_demand/internal/model"
)

// Shift adds the monthly anomaly for each sample's calendar month to the
// baseline. The month is taken from the timestamp in its own location, so
// the caller must stamp the series in the zone the data provider used. A nil
// map returns the baseline unchanged.
func Shift(baseline model.Series, anomalies *AnomalyMap) (model.Series, error) {
	if anomalies == nil {
		return baseline, nil
	}

	out := make([]float64, baseline.Len())
	for i, v := range baseline.Values {
		month := baseline.Index[i].Month()
		d, ok := anomalies.Offset(month)
		if !ok {
			return model.Series{}, &model.ConfigError{Field: "anomalies", Value: month.String(), Reason: "no offset for month in series"}
		}
		out[i] = v + d
	}
	return baseline.Derive(out), nil
}

// ShiftFor applies c's anomaly map, or nothing for a baseline scenario.
func ShiftFor(baseline model.Series, c Config) (model.Series, error) {
	return Shift(baseline, c.Anomalies())
}
