package weather

import (
	"math"
	"time"

	apperrors "github.com/elcamino/weather-report/pkg/errors"
)

// Reconcile builds the current record. The current group has no daily
// extremes, so high, low and precipitation come from forecast[0]. DT is the
// time the report is assembled, not the API's observation time.
func Reconcile(current map[Variable]float64, forecast []Weather, now time.Time) (Weather, error) {
	if len(forecast) == 0 {
		return Weather{}, apperrors.Wrap(CodeNoForecast, "reconcile current weather", ErrNoForecast)
	}

	values := make(map[Variable]float64, len(currentVariables))
	for _, v := range currentVariables {
		value, ok := current[v]
		if !ok {
			return Weather{}, decodeErrorf("current variable %s missing", v)
		}
		if math.IsNaN(value) {
			return Weather{}, decodeErrorf("current %s is null", v)
		}
		values[v] = value
	}

	today := forecast[0]
	return Weather{
		DT:              now,
		Code:            int(values[WeatherCode]),
		Daytime:         values[IsDay] != 0,
		Temperature:     roundInt(values[Temperature2m]),
		HighTemperature: today.HighTemperature,
		LowTemperature:  today.LowTemperature,
		Precipitation:   today.Precipitation,
	}, nil
}
