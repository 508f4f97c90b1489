package weather

// Assemble packages the reconciled current record and the forecast.
func Assemble(current Weather, forecast []Weather) WeatherReport {
	return WeatherReport{Current: current, Forecast: forecast}
}
