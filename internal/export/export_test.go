package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cooling_demand/internal/model"
	"cooling_demand/internal/pipeline"
	"cooling_demand/internal/scenario"
)

var start = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func testResult(t *testing.T) *pipeline.Result {
	t.Helper()
	values := []float64{20, 22, 26, 30, 26, 22, 20}
	idx := make([]time.Time, len(values))
	for i := range idx {
		idx[i] = start.Add(time.Duration(i) * time.Hour)
	}

	params := scenario.DefaultParams()
	params[1].EfficiencyRatio = 0 // SSP1 fails construction

	res, err := pipeline.New().RunParams(model.MustSeries(idx, values), params)
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	return res
}

func TestHeader(t *testing.T) {
	res := testResult(t)
	assert.Equal(t, []string{
		"timestamp",
		"outdoor_2024", "internal_2024", "load_2024", "mw_2024",
		"outdoor_SSP5", "internal_SSP5", "load_SSP5", "mw_SSP5",
	}, Header(res))
}

func TestWriteCSV(t *testing.T) {
	res := testResult(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8)

	assert.Equal(t, "2024-01-10T00:00:00Z", records[1][0])
	// Baseline row 3: outdoor 30, internal 26.75, load 0.859375
	row := records[4]
	assert.Equal(t, "30", row[1])
	assert.Equal(t, "26.75", row[2])
	assert.Equal(t, "0.859375", row[3])

	// SSP5 outdoor is shifted by the January delta.
	assert.Equal(t, "32.5", row[5])
}

func TestChart(t *testing.T) {
	res := testResult(t)
	p := model.Period{Name: "test", Start: start.Add(2 * time.Hour), End: start.Add(5 * time.Hour)}

	data := Chart(res, p)
	assert.Equal(t, res.ID.String(), data.RunID)
	assert.Len(t, data.Timestamps, 3)
	require.Len(t, data.Scenarios, 2)

	base := data.Scenarios[0]
	assert.Equal(t, "2024", base.Label)
	assert.Equal(t, 24.0, base.SetpointC)
	assert.Equal(t, []float64{23.5, 26.75, 26.375}, base.InternalC)
	assert.Len(t, base.DemandMW, 3)
}

func TestChart_KeepsFilterState(t *testing.T) {
	res := testResult(t)
	p := model.Period{Name: "mid", Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour)}

	base := Chart(res, p).Scenarios[0]
	// A filter restarted at the period start would begin at the outdoor 26.
	assert.Equal(t, []float64{23.5}, base.InternalC)
	assert.Equal(t, res.Scenarios["2024"].Internal.Values[2], base.InternalC[0])
}

func TestChart_EmptyPeriod(t *testing.T) {
	res := testResult(t)
	p := model.Period{Name: "June", Start: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC)}

	var buf bytes.Buffer
	require.NoError(t, WriteChartJSON(&buf, res, p))

	var data ChartData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "June", data.Period)
	assert.Empty(t, data.Timestamps)
	require.Len(t, data.Scenarios, 2)
	assert.Empty(t, data.Scenarios[0].InternalC)
}
