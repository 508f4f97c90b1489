package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/elcamino/weather-report/internal/cache"
	"github.com/elcamino/weather-report/internal/config"
	"github.com/elcamino/weather-report/internal/weather"
	"github.com/elcamino/weather-report/internal/weather/openmeteo"
)

// provideCache opens the configured backend, falling back to an in-memory
// cache when it is unreachable.
func provideCache(cfg *config.Config, logger *slog.Logger) cache.Cache {
	switch cfg.Cache.Backend {
	case "sqlite":
		c, err := cache.OpenSQLite(cfg.Cache.Path)
		if err != nil {
			logger.Error("failed to open sqlite cache, falling back to memory cache", "path", cfg.Cache.Path, "error", err)
			return cache.NewMemory()
		}
		logger.Info("sqlite response cache enabled", "path", cfg.Cache.Path)
		return c
	case "valkey":
		opt, err := buildValkeyOptions(cfg.Cache.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return cache.NewMemory()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return cache.NewMemory()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
			return cache.NewMemory()
		}
		logger.Info("valkey response cache enabled", "addr", cfg.Cache.Addr)
		return cache.NewValkey(client, "weather:response")
	default:
		return cache.NewMemory()
	}
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideFetcher(cfg *config.Config, c cache.Cache, logger *slog.Logger) weather.Fetcher {
	opts := openmeteo.Options{
		Backoff: openmeteo.BackoffConfig{
			MaxRetries:      cfg.Retry.MaxRetries,
			InitialInterval: cfg.Retry.Backoff,
			MaxInterval:     cfg.Retry.MaxInterval,
		},
		CacheTTL: cfg.Cache.ExpireAfter,
	}
	return openmeteo.NewClient(&http.Client{Timeout: cfg.HTTP.Timeout}, c, opts, logger)
}
