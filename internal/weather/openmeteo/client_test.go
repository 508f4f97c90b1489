package openmeteo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elcamino/weather-report/internal/cache"
	"github.com/elcamino/weather-report/internal/weather"
	apperrors "github.com/elcamino/weather-report/pkg/errors"
	"github.com/elcamino/weather-report/pkg/logger"
)

const forecastBody = `{
	"latitude": 52.52,
	"longitude": 13.419998,
	"generationtime_ms": 0.08,
	"utc_offset_seconds": 7200,
	"timezone": "Europe/Berlin",
	"timezone_abbreviation": "CEST",
	"elevation": 38.0,
	"current": {"time": 1721912400, "interval": 900, "temperature_2m": 18.7, "is_day": 1, "weather_code": 3},
	"daily": {
		"time": [1721858400, 1721944800, 1722031200],
		"weather_code": [3, 61, 0],
		"temperature_2m_max": [21.2, 18.0, 24.4],
		"temperature_2m_min": [14.8, 12.1, null],
		"sunrise": [1721877000, 1721963500, 1722050000],
		"sunset": [1721934000, 1722020300, 1722106600],
		"precipitation_probability_max": [40, 85, 0]
	}
}`

var testConfig = weather.Config{Latitude: 52.52, Longitude: 13.41, OpenMeteoKey: "secret"}

func fastOptions(retries int) Options {
	return Options{
		Backoff:  BackoffConfig{MaxRetries: retries, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
		CacheTTL: time.Hour,
	}
}

func newTestClient(c cache.Cache, opts Options) *Client {
	return NewClient(&http.Client{Timeout: 5 * time.Second}, c, opts, logger.Discard())
}

func TestFetchBuildsRequestAndDecodes(t *testing.T) {
	var (
		query  url.Values
		accept string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer server.Close()

	client := newTestClient(nil, fastOptions(0))
	responses, err := client.Fetch(context.Background(), server.URL, weather.RequestParams(testConfig))
	require.NoError(t, err)
	require.Len(t, responses, 1)

	require.Equal(t, "unixtime", query.Get("timeformat"))
	require.Equal(t, "secret", query.Get("apikey"))
	require.Equal(t, "52.52", query.Get("latitude"))
	require.Equal(t, "temperature_2m,is_day,weather_code", query.Get("current"))
	require.Equal(t, "application/json", accept)

	resp := responses[0]
	require.Equal(t, "Europe/Berlin", resp.Timezone)
	require.Equal(t, int64(7200), resp.UTCOffsetSeconds)
	require.Equal(t, int64(1721912400), resp.Current.Time)
	require.Equal(t, int64(1721912400+900), resp.Current.TimeEnd)
	require.Equal(t, int64(86400), resp.Daily.Interval)
	require.Equal(t, int64(1722031200+86400), resp.Daily.TimeEnd)

	require.Len(t, resp.Current.Variables, 3)
	require.Equal(t, weather.IsDay, resp.Current.Variables[1].Variable)
	require.Equal(t, 18.7, resp.Current.Variables[0].Value)

	require.Len(t, resp.Daily.Variables, 6)
	for i, v := range weather.DailyVariables() {
		require.Equal(t, v, resp.Daily.Variables[i].Variable)
	}
	require.True(t, math.IsNaN(resp.Daily.Variables[2].Values[2]))

	table, err := weather.Decode(responses)
	require.NoError(t, err)
	require.Len(t, table.Days, 3)
}

func TestFetchServesFromCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer server.Close()

	client := newTestClient(cache.NewMemory(), fastOptions(0))
	params := weather.RequestParams(testConfig)

	first, err := client.Fetch(context.Background(), server.URL, params)
	require.NoError(t, err)
	second, err := client.Fetch(context.Background(), server.URL, params)
	require.NoError(t, err)

	require.Equal(t, int32(1), hits.Load())
	require.Equal(t, first[0].Daily.Time, second[0].Daily.Time)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer server.Close()

	client := newTestClient(nil, fastOptions(5))
	responses, err := client.Fetch(context.Background(), server.URL, weather.RequestParams(testConfig))
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Equal(t, int32(3), hits.Load())
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(nil, fastOptions(2))
	_, err := client.Fetch(context.Background(), server.URL, weather.RequestParams(testConfig))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, weather.CodeTransport))
	require.ErrorIs(t, err, errRateLimited)
	require.Equal(t, int32(3), hits.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": true, "reason": "Latitude must be in range of -90 to 90°."}`))
	}))
	defer server.Close()

	client := newTestClient(nil, fastOptions(5))
	_, err := client.Fetch(context.Background(), server.URL, weather.RequestParams(testConfig))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, weather.CodeTransport))
	require.Contains(t, err.Error(), "Latitude must be in range")
	require.Equal(t, int32(1), hits.Load())
}

func TestFetchOpensCircuit(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(nil, fastOptions(10))
	_, err := client.Fetch(context.Background(), server.URL, weather.RequestParams(testConfig))
	require.ErrorIs(t, err, errCircuitOpen)
	require.Equal(t, int32(6), hits.Load())
}

func TestFetchDoesNotCacheUnreadableBody(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"latitude": 52.52, "daily": {"time": "soon"}}`))
	}))
	defer server.Close()

	client := newTestClient(cache.NewMemory(), fastOptions(0))
	params := weather.RequestParams(testConfig)
	for i := 0; i < 2; i++ {
		_, err := client.Fetch(context.Background(), server.URL, params)
		require.Error(t, err)
		require.True(t, apperrors.IsCode(err, weather.CodeDecode))
	}
	require.Equal(t, int32(2), hits.Load())
}

func TestFetchHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(nil, fastOptions(5))
	_, err := client.Fetch(ctx, server.URL, weather.RequestParams(testConfig))
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, apperrors.IsCode(err, weather.CodeTransport))
}

func TestFetchIrregularDaysIsDecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"daily": {"time": [0, 1, 4000000000000000000]}}`))
	}))
	defer server.Close()

	client := newTestClient(cache.NewMemory(), fastOptions(0))
	_, err := client.Fetch(context.Background(), server.URL, weather.RequestParams(testConfig))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, weather.CodeDecode))
}
