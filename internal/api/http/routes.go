package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/elcamino/weather-report/internal/weather"
)

var validate = validator.New()

// ReportService is what the handlers need from weather.Service.
type ReportService interface {
	Config() weather.Config
	GetLatest() (weather.WeatherReport, error)
	GetRange(from, to time.Time) ([]weather.WeatherReport, error)
	Refresh(ctx context.Context) (weather.WeatherReport, error)
}

// weatherView adds the derived condition to a record.
type weatherView struct {
	weather.Weather
	Condition weather.Condition `json:"condition"`
}

func newWeatherView(w weather.Weather) weatherView {
	return weatherView{Weather: w, Condition: w.Condition()}
}

func newForecastView(forecast []weather.Weather) []weatherView {
	views := make([]weatherView, 0, len(forecast))
	for _, w := range forecast {
		views = append(views, newWeatherView(w))
	}
	return views
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service ReportService) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		report, err := latestReport(c, service)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"location": service.Config().Location(),
			"current":  newWeatherView(report.Current),
			"forecast": newForecastView(report.Forecast),
		})
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		report, err := service.GetLatest()
		if err != nil {
			return err
		}

		return c.JSON(newWeatherView(report.Current))
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.GetLatest()
		if err != nil {
			return err
		}

		days := report.Forecast
		if len(days) > req.Days {
			days = days[:req.Days]
		}
		return c.JSON(fiber.Map{
			"days":     len(days),
			"forecast": newForecastView(days),
		})
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reports, err := service.GetRange(req.From, req.To)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"location": service.Config().Location(),
			"from":     req.From,
			"to":       req.To,
			"reports":  reports,
		})
	})
}

func latestReport(c *fiber.Ctx, service ReportService) (weather.WeatherReport, error) {
	if c.QueryBool("refresh") {
		return service.Refresh(c.UserContext())
	}
	return service.GetLatest()
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Days int `validate:"required,min=1,max=7"`
}

func (f *forecastQuery) bind(c *fiber.Ctx) error {
	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("days must be an integer")
		}
		f.Days = days
	}
	return validate.Struct(f)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
