package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/elcamino/weather-report/internal/store"
	"github.com/elcamino/weather-report/internal/weather"
	apperrors "github.com/elcamino/weather-report/pkg/errors"
)

const appName = "weather-report"

// NewApp builds the Fiber app with the shared middleware, error handling and
// health endpoint. Access log lines go to accessLog when it is non-nil.
func NewApp(logger *slog.Logger, accessLog io.Writer, timeout time.Duration) *fiber.App {
	log := logger.With("component", "http")

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           timeout,
		WriteTimeout:          timeout,
		ErrorHandler:          errorHandler(log),
	})

	if accessLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     `{"time":"${time}","status":${status},"latency":"${latency}","method":"${method}","path":"${path}"}` + "\n",
			TimeFormat: time.RFC3339,
			Output:     accessLog,
		}))
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	return app
}

// errorHandler maps failures onto status codes. Pipeline failures are an
// upstream problem, so they surface as 502 with their code.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		body := fiber.Map{"error": true, "message": err.Error()}

		var fiberErr *fiber.Error
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		case errors.Is(err, store.ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, weather.ErrNoStore):
			status = fiber.StatusServiceUnavailable
		case errors.As(err, &appErr):
			status = fiber.StatusBadGateway
			body["code"] = appErr.Code
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		}
		return c.Status(status).JSON(body)
	}
}
