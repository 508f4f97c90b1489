// Package openmeteo fetches forecast responses from the Open-Meteo API with
// response caching, retries and a circuit breaker.
package openmeteo

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/elcamino/weather-report/internal/cache"
	"github.com/elcamino/weather-report/internal/weather"
)

// DefaultBaseURL is the public forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const userAgent = "weather-report/1.0"

// Options tunes the client's resilience and caching.
type Options struct {
	Backoff  BackoffConfig
	CacheTTL time.Duration
}

// DefaultOptions returns 5 retries with a 200ms backoff factor and a one
// hour cache expiry.
func DefaultOptions() Options {
	return Options{
		Backoff: BackoffConfig{
			MaxRetries:      5,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		CacheTTL: time.Hour,
	}
}

// Client implements weather.Fetcher.
type Client struct {
	http    *resty.Client
	cache   cache.Cache
	opts    Options
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewClient wraps httpClient. c may be nil to disable caching.
func NewClient(httpClient *http.Client, c cache.Cache, opts Options, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	log := logger.With("component", "openmeteo")

	rc := resty.NewWithClient(httpClient).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug("open-meteo response",
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"bytes", len(resp.Body()),
		)
		return nil
	})

	return &Client{
		http:    rc,
		cache:   c,
		opts:    opts,
		circuit: newCircuitBreaker("openmeteo"),
		logger:  log,
	}
}

// Fetch performs the GET, serving it from the cache while fresh. Errors carry
// the weather package's transport or decode code.
func (c *Client) Fetch(ctx context.Context, baseURL string, params url.Values) ([]weather.Response, error) {
	query := make(url.Values, len(params)+1)
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	query.Set("timeformat", "unixtime")

	current := weather.ParseVariables(query.Get("current"))
	daily := weather.ParseVariables(query.Get("daily"))
	key := cache.Key(baseURL + "?" + query.Encode())

	if body, ok := c.cached(ctx, key); ok {
		responses, err := decodeBody(body, current, daily)
		if err == nil {
			c.logger.Debug("serving forecast from cache")
			return responses, nil
		}
		c.logger.Warn("discarding unreadable cached response", "error", err)
	}

	body, err := doRequestWithResilience(ctx, c.opts.Backoff, c.circuit, func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			Get(baseURL)
	})
	if err != nil {
		return nil, weather.TransportError(err)
	}

	responses, err := decodeBody(body, current, daily)
	if err != nil {
		return nil, weather.DecodeError(err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.opts.CacheTTL); err != nil {
			c.logger.Warn("response cache write failed", "error", err)
		}
	}
	return responses, nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("response cache read failed", "error", err)
		return nil, false
	}
	return body, ok
}
