package openmeteo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elcamino/weather-report/internal/weather"
)

func TestDecodeBodyEmptyArray(t *testing.T) {
	responses, err := decodeBody([]byte(" [] "), weather.CurrentVariables(), weather.DailyVariables())
	require.NoError(t, err)
	require.Empty(t, responses)

	_, err = weather.Decode(responses)
	require.Error(t, err)
}

func TestDecodeBodyMultipleLocations(t *testing.T) {
	body := `[` + forecastBody + `,` + forecastBody + `]`
	responses, err := decodeBody([]byte(body), weather.CurrentVariables(), weather.DailyVariables())
	require.NoError(t, err)
	require.Len(t, responses, 2)
}

func TestDecodeBodyOmitsMissingVariables(t *testing.T) {
	body := `{
		"current": {"time": 1721912400, "interval": 900, "temperature_2m": 18.7, "weather_code": 3},
		"daily": {"time": [1721858400], "weather_code": [3]}
	}`
	responses, err := decodeBody([]byte(body), weather.CurrentVariables(), weather.DailyVariables())
	require.NoError(t, err)

	cur := responses[0].Current.Variables
	require.Len(t, cur, 2)
	require.Equal(t, weather.WeatherCode, cur[1].Variable)

	_, err = weather.Decode(responses)
	require.Error(t, err)
	require.Contains(t, err.Error(), "current variable is_day missing at position 1")
}

func TestDecodeBodyZeroDays(t *testing.T) {
	body := `{"current": {"time": 1, "interval": 900, "temperature_2m": 1, "is_day": 1, "weather_code": 0},
		"daily": {"time": [], "weather_code": [], "temperature_2m_max": [], "temperature_2m_min": [],
		"sunrise": [], "sunset": [], "precipitation_probability_max": []}}`
	responses, err := decodeBody([]byte(body), weather.CurrentVariables(), weather.DailyVariables())
	require.NoError(t, err)

	table, err := weather.Decode(responses)
	require.NoError(t, err)
	require.Empty(t, table.Days)
}

func TestDecodeBodyRejectsGarbage(t *testing.T) {
	_, err := decodeBody([]byte("<html>"), nil, nil)
	require.Error(t, err)
	_, err = decodeBody(nil, nil, nil)
	require.Error(t, err)
}

func TestReason(t *testing.T) {
	require.Equal(t, "bad latitude", reason([]byte(`{"error":true,"reason":"bad latitude"}`)))
	require.Equal(t, "oops", reason([]byte("oops")))
}

func TestDecodeBodyRejectsIrregularDays(t *testing.T) {
	body := `{"current": {"time": 1, "interval": 900, "temperature_2m": 1, "is_day": 1, "weather_code": 0},
		"daily": {"time": [0, 86400, 4000000000000000000], "weather_code": [1, 2, 3]}}`
	_, err := decodeBody([]byte(body), weather.CurrentVariables(), weather.DailyVariables())
	require.Error(t, err)
	require.Contains(t, err.Error(), "daily time not evenly spaced at index 2")
}

func TestDecodeBodyRangeLongerThanSeries(t *testing.T) {
	body := `{"current": {"time": 1, "interval": 900, "temperature_2m": 1, "is_day": 1, "weather_code": 0},
		"daily": {"time": [0, 1], "weather_code": [1, 2], "temperature_2m_max": [1, 2], "temperature_2m_min": [1, 2],
		"sunrise": [1, 2], "sunset": [1, 2], "precipitation_probability_max": [1]}}`
	responses, err := decodeBody([]byte(body), weather.CurrentVariables(), weather.DailyVariables())
	require.NoError(t, err)

	_, err = weather.Decode(responses)
	require.Error(t, err)
	require.Contains(t, err.Error(), "daily precipitation_probability_max has 1 values for 2 days")
}
