// Package export writes pipeline results to files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"cooling_demand/internal/model"
	"cooling_demand/internal/pipeline"
)

var columnKinds = []model.SeriesKind{
	model.KindOutdoorTemp,
	model.KindInternalTemp,
	model.KindNormalizedLoad,
	model.KindGridDemand,
}

// Header returns the CSV header for the successful scenarios of res:
// timestamp followed by outdoor_, internal_, load_ and mw_ columns for each
// scenario in input order.
func Header(res *pipeline.Result) []string {
	ok := res.Succeeded()
	header := make([]string, 0, 1+len(ok)*len(columnKinds))
	header = append(header, "timestamp")
	for _, sr := range ok {
		for _, k := range columnKinds {
			header = append(header, fmt.Sprintf("%s_%s", k, sr.Label))
		}
	}
	return header
}

// WriteCSV writes one row per timestamp of the run. Failed scenarios have no
// columns.
func WriteCSV(w io.Writer, res *pipeline.Result) error {
	ok := res.Succeeded()
	cw := csv.NewWriter(w)

	if err := cw.Write(Header(res)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, 1+len(ok)*len(columnKinds))
	for i, ts := range res.Index {
		row[0] = ts.Format(time.RFC3339)
		col := 1
		for _, sr := range ok {
			for _, s := range []model.Series{sr.Outdoor, sr.Internal, sr.Load, sr.DemandMW} {
				row[col] = strconv.FormatFloat(s.Values[i], 'f', -1, 64)
				col++
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
