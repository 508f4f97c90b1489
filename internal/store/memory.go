package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/elcamino/weather-report/internal/weather"
)

var (
	// ErrNotFound is returned when no report is available for a given location.
	ErrNotFound = errors.New("no weather report for location")
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
// Each location's reports are kept sorted by the time they were assembled
// (Current.DT), whatever order they are saved in.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: reports, oldest first
	reports map[string][]weather.WeatherReport

	maxHistory int           // max reports per location, <= 0 is unlimited
	maxAge     time.Duration // max age relative to now, <= 0 is unlimited

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		reports:    make(map[string][]weather.WeatherReport),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveReport files a report under its location and drops reports that fall
// outside the retention limits. A report assembled at the same instant as a
// stored one replaces it.
func (s *MemoryStore) SaveReport(loc weather.Location, report weather.WeatherReport) {
	key := loc.Key()
	ts := report.Current.DT

	s.mu.Lock()
	defer s.mu.Unlock()

	reports := s.reports[key]
	i := firstAtOrAfter(reports, ts)
	if i < len(reports) && reports[i].Current.DT.Equal(ts) {
		reports[i] = report
	} else {
		reports = append(reports, weather.WeatherReport{})
		copy(reports[i+1:], reports[i:])
		reports[i] = report
	}

	if s.maxAge > 0 {
		reports = reports[firstAtOrAfter(reports, s.now().Add(-s.maxAge)):]
	}
	if s.maxHistory > 0 && len(reports) > s.maxHistory {
		reports = reports[len(reports)-s.maxHistory:]
	}

	if len(reports) == 0 {
		delete(s.reports, key)
		return
	}
	s.reports[key] = reports
}

// GetLatest returns the most recently assembled report for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.WeatherReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := s.reports[loc.Key()]
	if len(reports) == 0 {
		return weather.WeatherReport{}, ErrNotFound
	}
	return reports[len(reports)-1], nil
}

// GetRange returns the reports for a location assembled between from and to
// (inclusive), oldest first.
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := s.reports[loc.Key()]
	lo := firstAtOrAfter(reports, from)
	hi := firstAtOrAfter(reports, to)
	for hi < len(reports) && reports[hi].Current.DT.Equal(to) {
		hi++
	}
	if lo >= hi {
		return nil, ErrNotFound
	}

	return append([]weather.WeatherReport(nil), reports[lo:hi]...), nil
}

func firstAtOrAfter(reports []weather.WeatherReport, ts time.Time) int {
	return sort.Search(len(reports), func(i int) bool {
		return !reports[i].Current.DT.Before(ts)
	})
}
