package weather

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"
)

type day struct {
	code, max, min, precip float64
}

var errNoReport = errors.New("no report stored")

var testStart = time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)

func currentColumns(temp float64, isDay bool, code float64) []Column {
	dayFlag := 0.0
	if isDay {
		dayFlag = 1
	}
	return []Column{
		{Variable: Temperature2m, Value: temp},
		{Variable: IsDay, Value: dayFlag},
		{Variable: WeatherCode, Value: code},
	}
}

// syntheticResponse builds a well-formed response with one daily row per day.
func syntheticResponse(current []Column, days []day) Response {
	n := len(days)
	series := map[Variable][]float64{}
	for i, d := range days {
		midnight := float64(testStart.Unix() + int64(i)*86400)
		series[WeatherCode] = append(series[WeatherCode], d.code)
		series[Temperature2mMax] = append(series[Temperature2mMax], d.max)
		series[Temperature2mMin] = append(series[Temperature2mMin], d.min)
		series[Sunrise] = append(series[Sunrise], midnight+5*3600)
		series[Sunset] = append(series[Sunset], midnight+21*3600)
		series[PrecipitationProbabilityMax] = append(series[PrecipitationProbabilityMax], d.precip)
	}

	daily := make([]Column, 0, len(dailyVariables))
	for _, v := range dailyVariables {
		values := series[v]
		if values == nil {
			values = []float64{}
		}
		daily = append(daily, Column{Variable: v, Values: values})
	}

	return Response{
		Latitude:             52.52,
		Longitude:            13.41,
		Elevation:            38,
		Timezone:             "GMT",
		TimezoneAbbreviation: "GMT",
		Current: Group{
			Time:      testStart.Unix() + 13*3600,
			TimeEnd:   testStart.Unix() + 13*3600 + 900,
			Interval:  900,
			Variables: current,
		},
		Daily: Group{
			Time:      testStart.Unix(),
			TimeEnd:   testStart.Unix() + int64(n)*86400,
			Interval:  86400,
			Variables: daily,
		},
	}
}

func withoutColumn(cols []Column, v Variable) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Variable != v {
			out = append(out, c)
		}
	}
	return out
}

type stubFetcher struct {
	responses  []Response
	err        error
	calls      int
	lastURL    string
	lastParams url.Values
}

func (s *stubFetcher) Fetch(ctx context.Context, baseURL string, params url.Values) ([]Response, error) {
	s.calls++
	s.lastURL = baseURL
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.responses, nil
}

type fakeStore struct {
	mu      sync.Mutex
	reports map[string][]WeatherReport
}

func newFakeStore() *fakeStore {
	return &fakeStore{reports: make(map[string][]WeatherReport)}
}

func (f *fakeStore) SaveReport(loc Location, report WeatherReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[loc.Key()] = append(f.reports[loc.Key()], report)
}

func (f *fakeStore) GetLatest(loc Location) (WeatherReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reports := f.reports[loc.Key()]
	if len(reports) == 0 {
		return WeatherReport{}, errNoReport
	}
	return reports[len(reports)-1], nil
}

func (f *fakeStore) GetRange(loc Location, from, to time.Time) ([]WeatherReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []WeatherReport
	for _, r := range f.reports[loc.Key()] {
		if !r.Current.DT.Before(from) && !r.Current.DT.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}
