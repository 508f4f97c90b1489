package openmeteo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/elcamino/weather-report/internal/weather"
)

const secondsPerDay = 86400

// payload is one location of the JSON forecast response requested with
// timeformat=unixtime.
type payload struct {
	Latitude             float64                    `json:"latitude"`
	Longitude            float64                    `json:"longitude"`
	Elevation            float64                    `json:"elevation"`
	Timezone             string                     `json:"timezone"`
	TimezoneAbbreviation string                     `json:"timezone_abbreviation"`
	UTCOffsetSeconds     int64                      `json:"utc_offset_seconds"`
	Current              map[string]json.RawMessage `json:"current"`
	Daily                map[string]json.RawMessage `json:"daily"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// reason extracts the API's error reason from a failed response body.
func reason(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Reason != "" {
		return e.Reason
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// decodeBody converts the JSON body into positional responses. Columns follow
// the requested variable order; variables absent from the body are left out
// so the decoder can name them.
func decodeBody(body []byte, current, daily []weather.Variable) ([]weather.Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var payloads []payload
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, fmt.Errorf("parse forecast response: %w", err)
		}
	} else {
		var p payload
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("parse forecast response: %w", err)
		}
		payloads = []payload{p}
	}

	responses := make([]weather.Response, 0, len(payloads))
	for i, p := range payloads {
		resp, err := p.toResponse(current, daily)
		if err != nil {
			return nil, fmt.Errorf("location %d: %w", i, err)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (p payload) toResponse(current, daily []weather.Variable) (weather.Response, error) {
	cur, err := currentGroup(p.Current, current)
	if err != nil {
		return weather.Response{}, err
	}
	day, err := dailyGroup(p.Daily, daily)
	if err != nil {
		return weather.Response{}, err
	}
	return weather.Response{
		Latitude:             p.Latitude,
		Longitude:            p.Longitude,
		Elevation:            p.Elevation,
		Timezone:             p.Timezone,
		TimezoneAbbreviation: p.TimezoneAbbreviation,
		UTCOffsetSeconds:     p.UTCOffsetSeconds,
		Current:              cur,
		Daily:                day,
	}, nil
}

func currentGroup(raw map[string]json.RawMessage, vars []weather.Variable) (weather.Group, error) {
	var g weather.Group
	if raw == nil {
		return g, nil
	}
	if err := unmarshalField(raw, "time", &g.Time); err != nil {
		return g, err
	}
	if err := unmarshalField(raw, "interval", &g.Interval); err != nil {
		return g, err
	}
	g.TimeEnd = g.Time + g.Interval

	for _, v := range vars {
		field, ok := raw[string(v)]
		if !ok {
			continue
		}
		var value *float64
		if err := json.Unmarshal(field, &value); err != nil {
			return g, fmt.Errorf("current %s: %w", v, err)
		}
		g.Variables = append(g.Variables, weather.Column{Variable: v, Value: orNaN(value)})
	}
	return g, nil
}

func dailyGroup(raw map[string]json.RawMessage, vars []weather.Variable) (weather.Group, error) {
	g := weather.Group{Interval: secondsPerDay}
	if raw == nil {
		return g, nil
	}

	var times []int64
	if err := unmarshalField(raw, "time", &times); err != nil {
		return g, err
	}
	if len(times) >= 2 {
		g.Interval = times[1] - times[0]
	}
	for i := 2; i < len(times); i++ {
		if times[i]-times[i-1] != g.Interval {
			return g, fmt.Errorf("daily time not evenly spaced at index %d", i)
		}
	}
	if len(times) > 0 {
		g.Time = times[0]
		g.TimeEnd = times[len(times)-1] + g.Interval
	}

	for _, v := range vars {
		field, ok := raw[string(v)]
		if !ok {
			continue
		}
		var values []*float64
		if err := json.Unmarshal(field, &values); err != nil {
			return g, fmt.Errorf("daily %s: %w", v, err)
		}
		col := weather.Column{Variable: v, Values: make([]float64, len(values))}
		for i, value := range values {
			col.Values[i] = orNaN(value)
		}
		g.Variables = append(g.Variables, col)
	}
	return g, nil
}

func unmarshalField(raw map[string]json.RawMessage, name string, dst any) error {
	field, ok := raw[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(field, dst); err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	return nil
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
