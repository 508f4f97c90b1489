package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/elcamino/weather-report/internal/weather"
)

func writeReport(w io.Writer, report weather.WeatherReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text", "":
		return writeText(w, report)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", format)
	}
}

func writeText(w io.Writer, report weather.WeatherReport) error {
	cur := report.Current
	daytime := "night"
	if cur.Daytime {
		daytime = "day"
	}
	fmt.Fprintf(w, "Now (%s, %s): %d°C, %s, high %d°C, low %d°C, precipitation %d%%\n\n",
		cur.DT.Format("2006-01-02 15:04"), daytime, cur.Temperature, cur.Condition(),
		cur.HighTemperature, cur.LowTemperature, cur.Precipitation)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCONDITION\tAVG\tHIGH\tLOW\tPRECIP")
	for _, day := range report.Forecast {
		fmt.Fprintf(tw, "%s\t%s\t%d°C\t%d°C\t%d°C\t%d%%\n",
			day.DT.Format("Mon 2006-01-02"), day.Condition(),
			day.Temperature, day.HighTemperature, day.LowTemperature, day.Precipitation)
	}
	return tw.Flush()
}
