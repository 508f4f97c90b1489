package weather

import (
	"context"
	"net/url"
	"time"
)

// Fetcher performs the parameterized GET against the forecast API. Caching
// and retries live behind it; an error means the adapter has given up.
type Fetcher interface {
	Fetch(ctx context.Context, baseURL string, params url.Values) ([]Response, error)
}

// Store is the contract the in-memory report store must satisfy.
type Store interface {
	SaveReport(loc Location, report WeatherReport)
	GetLatest(loc Location) (WeatherReport, error)
	GetRange(loc Location, from, to time.Time) ([]WeatherReport, error)
}
