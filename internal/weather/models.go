package weather

import (
	"fmt"
	"math"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Config is the weather section of the application settings. It is loaded
// once at process start and passed by value to whatever needs it.
type Config struct {
	Latitude     float64
	Longitude    float64
	OpenMeteoURL string
	OpenMeteoKey string
}

// Location returns the coordinates the config points at.
func (c Config) Location() Location {
	return Location{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Location is the place a report was produced for.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// Weather is one observation or one forecast day. Temperatures and
// precipitation are rounded half-to-even when the record is built.
//
// Daily data carries no day/night distinction, so Daytime is only
// meaningful on the current record and is false ("not applicable") on
// forecast days.
type Weather struct {
	DT              time.Time `json:"dt"`
	Code            int       `json:"code"`
	Daytime         bool      `json:"daytime"`
	Temperature     int       `json:"temperature"`
	HighTemperature int       `json:"highTemperature"`
	LowTemperature  int       `json:"lowTemperature"`
	Precipitation   int       `json:"precipitation"`
}

// Condition maps the WMO weather code onto a coarse condition.
func (w Weather) Condition() Condition {
	code := w.Code
	switch {
	case code == 0:
		return ConditionClear
	case code >= 1 && code <= 3:
		return ConditionCloudy
	case code == 45 || code == 48:
		return ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return ConditionSnow
	case code >= 95 && code <= 99:
		return ConditionStorm
	default:
		return ConditionUnknown
	}
}

// WeatherReport bundles the current record with the daily forecast, oldest
// day first. Forecast is never empty in a report returned without error.
type WeatherReport struct {
	Current  Weather   `json:"current"`
	Forecast []Weather `json:"forecast"`
}

// roundInt rounds half-to-even, so 10.5 becomes 10 and 11.5 becomes 12.
func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}
