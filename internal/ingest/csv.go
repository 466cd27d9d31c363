package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cooling_demand/internal/model"
)

// CSVHeader is the header written by WriteCSV and expected by CSVParser.
var CSVHeader = []string{"timestamp", "temperature_c"}

// CSVParser parses hourly outdoor temperature CSV files.
//
// Expected format:
//
//	timestamp,temperature_c
//	2024-01-01T00:00:00-04:00,22.41
//
// Unlike sensor exports, rows are never skipped: a missing or unparseable
// hour would leave a gap, which the model does not accept.
type CSVParser struct {
	// Location to stamp parsed timestamps in. nil keeps the offsets as written.
	Location *time.Location
}

func NewCSVParser(loc *time.Location) *CSVParser {
	return &CSVParser{Location: loc}
}

func (p *CSVParser) Parse(r io.Reader) (model.Series, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return model.Series{}, fmt.Errorf("reading CSV header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return model.Series{}, err
	}

	var index []time.Time
	var values []float64
	lineNum := 1 // header was line 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Series{}, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}

		ts, v, err := p.parseRecord(record, lineNum)
		if err != nil {
			return model.Series{}, err
		}
		index = append(index, ts)
		values = append(values, v)
	}

	s, err := model.NewSeries(index, values)
	if err != nil {
		return model.Series{}, err
	}
	if err := s.Validate(); err != nil {
		return model.Series{}, err
	}
	return s, nil
}

func validateHeader(header []string) error {
	if len(header) < len(CSVHeader) {
		return fmt.Errorf("expected at least %d columns, got %d", len(CSVHeader), len(header))
	}

	for i, col := range CSVHeader {
		if strings.TrimSpace(header[i]) != col {
			return fmt.Errorf("expected column %d to be %q, got %q", i, col, header[i])
		}
	}

	return nil
}

func (p *CSVParser) parseRecord(record []string, lineNum int) (time.Time, float64, error) {
	if len(record) < 2 {
		return time.Time{}, 0, fmt.Errorf("line %d: expected 2 fields, got %d", lineNum, len(record))
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[0]))
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("line %d: parsing timestamp %q: %w", lineNum, record[0], err)
	}
	if p.Location != nil {
		ts = ts.In(p.Location)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("line %d: parsing temperature %q: %w", lineNum, record[1], err)
	}

	return ts, value, nil
}

// WriteCSV writes s in the format read by CSVParser.
func WriteCSV(w io.Writer, s model.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for i, v := range s.Values {
		if err := cw.Write([]string{
			s.Index[i].Format(time.RFC3339),
			strconv.FormatFloat(v, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
