package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"cooling_demand/internal/model"
)

// DefaultPowerURL is the NASA POWER hourly point endpoint.
const DefaultPowerURL = "https://power.larc.nasa.gov/api/temporal/hourly/point"

// ErrFillValue is returned when the provider marks an hour as missing.
var ErrFillValue = errors.New("provider fill value")

// powerResponse is the subset of the NASA POWER GeoJSON payload we use.
//
//	{"properties":{"parameter":{"T2M":{"2024010100":22.41, ...}}},
//	 "header":{"fill_value":-999.0,"time_standard":"LST", ...}}
type powerResponse struct {
	Header struct {
		FillValue    *float64 `json:"fill_value"`
		TimeStandard string   `json:"time_standard"`
	} `json:"header"`
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
	Messages []string `json:"messages"`
}

// PowerParser parses NASA POWER hourly JSON for one parameter (T2M).
// Keys are YYYYMMDDHH wall-clock hours in the provider's time standard and
// are stamped in Location.
type PowerParser struct {
	Parameter string
	Location  *time.Location
}

func NewPowerParser(loc *time.Location) *PowerParser {
	return &PowerParser{Parameter: "T2M", Location: loc}
}

func (p *PowerParser) Parse(r io.Reader) (model.Series, error) {
	var resp powerResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return model.Series{}, fmt.Errorf("parsing JSON: %w", err)
	}

	data, ok := resp.Properties.Parameter[p.Parameter]
	if !ok {
		return model.Series{}, fmt.Errorf("parameter %s not in response (messages: %v)", p.Parameter, resp.Messages)
	}
	if len(data) == 0 {
		return model.Series{}, &model.EmptySeriesError{}
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	index := make([]time.Time, len(keys))
	values := make([]float64, len(keys))
	for i, k := range keys {
		ts, err := time.ParseInLocation("2006010215", k, loc)
		if err != nil {
			return model.Series{}, fmt.Errorf("parsing timestamp %q: %w", k, err)
		}
		v := data[k]
		if resp.Header.FillValue != nil && v == *resp.Header.FillValue {
			return model.Series{}, fmt.Errorf("%s at %s: %w", p.Parameter, k, ErrFillValue)
		}
		index[i] = ts
		values[i] = v
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

// LSTOffset returns the whole-hour standard-time offset for a longitude.
func LSTOffset(lon float64) time.Duration {
	return time.Duration(math.Round(lon/15)) * time.Hour
}

// LSTZone returns a fixed zone for a standard-time offset.
func LSTZone(offset time.Duration) *time.Location {
	return time.FixedZone(fmt.Sprintf("LST%+d", int(offset.Hours())), int(offset.Seconds()))
}

// APIError is a non-200 response from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// PowerClient fetches hourly temperature from NASA POWER. It makes a single
// request per call.
type PowerClient struct {
	BaseURL string
	HTTP    *http.Client
	Parser  *PowerParser
}

func NewPowerClient(loc *time.Location) *PowerClient {
	return &PowerClient{
		BaseURL: DefaultPowerURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		Parser:  NewPowerParser(loc),
	}
}

// FetchYear returns the hourly T2M series for January 1 through December 31 of year.
func (c *PowerClient) FetchYear(ctx context.Context, lat, lon float64, year int) (model.Series, error) {
	q := url.Values{}
	q.Set("start", fmt.Sprintf("%d0101", year))
	q.Set("end", fmt.Sprintf("%d1231", year))
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("parameters", c.Parser.Parameter)
	q.Set("community", "SB")
	q.Set("format", "JSON")
	q.Set("time-standard", "LST")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return model.Series{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return model.Series{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return model.Series{}, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	s, err := c.Parser.Parse(resp.Body)
	if err != nil {
		return model.Series{}, fmt.Errorf("decoding %d response: %w", year, err)
	}
	return s, nil
}
