package weather

import "math"

// BuildForecast turns the decoded daily columns into one record per day, in
// the order of table.Days. A gap in any day fails the whole forecast.
func BuildForecast(table Table) ([]Weather, error) {
	forecast := make([]Weather, 0, len(table.Days))
	for i := range table.Days {
		day, err := buildDay(table, i)
		if err != nil {
			return nil, err
		}
		forecast = append(forecast, day)
	}
	return forecast, nil
}

func buildDay(table Table, i int) (Weather, error) {
	code, err := dailyValue(table, WeatherCode, i)
	if err != nil {
		return Weather{}, err
	}
	high, err := dailyValue(table, Temperature2mMax, i)
	if err != nil {
		return Weather{}, err
	}
	low, err := dailyValue(table, Temperature2mMin, i)
	if err != nil {
		return Weather{}, err
	}
	precipitation, err := dailyValue(table, PrecipitationProbabilityMax, i)
	if err != nil {
		return Weather{}, err
	}

	return Weather{
		DT:              table.Days[i],
		Code:            int(code),
		Temperature:     roundInt((low + high) / 2),
		HighTemperature: roundInt(high),
		LowTemperature:  roundInt(low),
		Precipitation:   roundInt(precipitation),
	}, nil
}

func dailyValue(table Table, v Variable, i int) (float64, error) {
	values, ok := table.Daily[v]
	if !ok {
		return 0, decodeErrorf("daily variable %s missing", v)
	}
	if i >= len(values) {
		return 0, decodeErrorf("daily %s has no value for day %d", v, i)
	}
	if math.IsNaN(values[i]) {
		return 0, decodeErrorf("daily %s is null on %s", v, table.Days[i].Format("2006-01-02"))
	}
	return values[i], nil
}
