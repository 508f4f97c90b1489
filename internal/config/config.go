package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/elcamino/weather-report/internal/weather"
)

const defaultConfigPath = "config.yaml"

var validate = validator.New()

// Config aggregates runtime configuration used across the service.
type Config struct {
	Weather   WeatherConfig     `yaml:"weather"`
	HTTP      HTTPConfig        `yaml:"http"`
	Cache     CacheConfig       `yaml:"cache"`
	Retry     RetryConfig       `yaml:"retry"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Store     StoreConfig       `yaml:"store"`
	Log       LogConfig         `yaml:"log"`
	Env       map[string]string `yaml:"env"`
}

// WeatherConfig is the location and endpoint the forecast is fetched for.
type WeatherConfig struct {
	Latitude     float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	OpenMeteoURL string  `yaml:"openmeteo_url" validate:"required,url"`
	OpenMeteoKey string  `yaml:"openmeteo_key"`
}

// Domain converts the section into the value the pipeline consumes.
func (w WeatherConfig) Domain() weather.Config {
	return weather.Config{
		Latitude:     w.Latitude,
		Longitude:    w.Longitude,
		OpenMeteoURL: w.OpenMeteoURL,
		OpenMeteoKey: w.OpenMeteoKey,
	}
}

// HTTPConfig controls the API server and the outbound client.
type HTTPConfig struct {
	Address string        `yaml:"address" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend     string        `yaml:"backend" validate:"oneof=memory sqlite valkey"`
	Path        string        `yaml:"path" validate:"required_if=Backend sqlite"`
	Addr        string        `yaml:"addr" validate:"required_if=Backend valkey"`
	ExpireAfter time.Duration `yaml:"expire_after" validate:"gt=0"`
}

// RetryConfig configures backoff for the forecast API client.
type RetryConfig struct {
	MaxRetries  int           `yaml:"max_retries" validate:"gte=0"`
	Backoff     time.Duration `yaml:"backoff" validate:"gt=0"`
	MaxInterval time.Duration `yaml:"max_interval" validate:"gte=0"`
}

// SchedulerConfig controls the periodic refresh.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval" validate:"gt=0"`
}

// StoreConfig controls report history retention. Zero means unlimited.
type StoreConfig struct {
	MaxHistory int           `yaml:"max_history" validate:"gte=0"`
	MaxAge     time.Duration `yaml:"max_age" validate:"gte=0"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

func defaultConfig() *Config {
	return &Config{
		Weather: WeatherConfig{
			Latitude:     52.52,
			Longitude:    13.41,
			OpenMeteoURL: "https://api.open-meteo.com/v1/forecast",
		},
		HTTP: HTTPConfig{
			Address: ":8080",
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend:     "sqlite",
			Path:        ".cache.sqlite",
			ExpireAfter: time.Hour,
		},
		Retry: RetryConfig{
			MaxRetries:  5,
			Backoff:     200 * time.Millisecond,
			MaxInterval: 5 * time.Second,
		},
		Scheduler: SchedulerConfig{Interval: 15 * time.Minute},
		// roughly 24h at 15-minute intervals
		Store: StoreConfig{MaxHistory: 96, MaxAge: 24 * time.Hour},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads configuration from .env, a YAML file and environment variables,
// in that order of increasing precedence. path may be empty.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	for key, value := range cfg.Env {
		if err := os.Setenv(key, value); err != nil {
			return nil, fmt.Errorf("export env %s: %w", key, err)
		}
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	var errs []error

	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = parsed
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = parsed
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = parsed
		}
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setFloat("WEATHER_LATITUDE", &cfg.Weather.Latitude)
	setFloat("WEATHER_LONGITUDE", &cfg.Weather.Longitude)
	setString("OPENMETEO_URL", &cfg.Weather.OpenMeteoURL)
	setString("OPENMETEO_KEY", &cfg.Weather.OpenMeteoKey)

	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	setDuration("HTTP_TIMEOUT", &cfg.HTTP.Timeout)

	setString("CACHE_BACKEND", &cfg.Cache.Backend)
	setString("CACHE_PATH", &cfg.Cache.Path)
	setString("CACHE_ADDR", &cfg.Cache.Addr)
	setDuration("CACHE_EXPIRE_AFTER", &cfg.Cache.ExpireAfter)

	setInt("RETRY_MAX", &cfg.Retry.MaxRetries)
	setDuration("RETRY_BACKOFF", &cfg.Retry.Backoff)
	setDuration("RETRY_MAX_INTERVAL", &cfg.Retry.MaxInterval)

	setDuration("FETCH_INTERVAL", &cfg.Scheduler.Interval)
	setInt("STORE_MAX_HISTORY", &cfg.Store.MaxHistory)
	setDuration("STORE_MAX_AGE", &cfg.Store.MaxAge)

	setString("LOG_LEVEL", &cfg.Log.Level)

	return errors.Join(errs...)
}
