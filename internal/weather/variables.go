package weather

import (
	"net/url"
	"strconv"
	"strings"
)

// Variable names a quantity requested from the forecast API.
type Variable string

const (
	Temperature2m               Variable = "temperature_2m"
	IsDay                       Variable = "is_day"
	WeatherCode                 Variable = "weather_code"
	Temperature2mMax            Variable = "temperature_2m_max"
	Temperature2mMin            Variable = "temperature_2m_min"
	Sunrise                     Variable = "sunrise"
	Sunset                      Variable = "sunset"
	PrecipitationProbabilityMax Variable = "precipitation_probability_max"
)

// The API answers positionally in request order. These two lists build the
// request and drive decoding; nothing else may enumerate the variables.
var (
	currentVariables = [...]Variable{Temperature2m, IsDay, WeatherCode}
	dailyVariables   = [...]Variable{
		WeatherCode,
		Temperature2mMax,
		Temperature2mMin,
		Sunrise,
		Sunset,
		PrecipitationProbabilityMax,
	}
)

// CurrentVariables returns the ordered variables of the current group.
func CurrentVariables() []Variable {
	return append([]Variable(nil), currentVariables[:]...)
}

// DailyVariables returns the ordered variables of the daily group.
func DailyVariables() []Variable {
	return append([]Variable(nil), dailyVariables[:]...)
}

// RequestParams builds the query for a single-location forecast request.
func RequestParams(cfg Config) url.Values {
	values := url.Values{}
	if cfg.OpenMeteoKey != "" {
		values.Set("apikey", cfg.OpenMeteoKey)
	}
	values.Set("latitude", strconv.FormatFloat(cfg.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(cfg.Longitude, 'f', -1, 64))
	values.Set("current", JoinVariables(currentVariables[:]))
	values.Set("daily", JoinVariables(dailyVariables[:]))
	return values
}

// JoinVariables renders variables as the comma separated list the API expects.
func JoinVariables(vars []Variable) string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = string(v)
	}
	return strings.Join(names, ",")
}

// ParseVariables is the inverse of JoinVariables. Blank entries are skipped.
func ParseVariables(list string) []Variable {
	var vars []Variable
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			vars = append(vars, Variable(name))
		}
	}
	return vars
}
