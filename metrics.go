package tastebase

import (
	"sync"
	"time"
)

// Metrics provides observability for tastebase operations
type Metrics interface {
	// Increment increases a counter by 1
	Increment(name string, tags ...string)

	// Gauge sets an absolute value
	Gauge(name string, value float64, tags ...string)

	// Timing records a duration
	Timing(name string, duration time.Duration, tags ...string)
}

// NoOpMetrics is a metrics collector that does nothing
type NoOpMetrics struct{}

func (m *NoOpMetrics) Increment(name string, tags ...string)                      {}
func (m *NoOpMetrics) Gauge(name string, value float64, tags ...string)           {}
func (m *NoOpMetrics) Timing(name string, duration time.Duration, tags ...string) {}

// InMemoryMetrics stores metrics in memory for testing
type InMemoryMetrics struct {
	mu       sync.Mutex
	Counters map[string]int
	Gauges   map[string]float64
	Timings  map[string][]time.Duration
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		Counters: make(map[string]int),
		Gauges:   make(map[string]float64),
		Timings:  make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Increment(name string, tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[name]++
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gauges[name] = value
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timings[name] = append(m.Timings[name], duration)
}

// Count returns the current value of a counter.
func (m *InMemoryMetrics) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counters[name]
}

// Common metric names
const (
	MetricRestaurantCreated  = "tastebase.restaurant.created"
	MetricRestaurantConflict = "tastebase.restaurant.conflict"
	MetricRestaurantViews    = "tastebase.restaurant.views"
	MetricReviewAdded        = "tastebase.review.added"
	MetricReviewDeleted      = "tastebase.review.deleted"
	MetricWeatherCacheHit    = "tastebase.weather.cache_hit"
	MetricWeatherCacheMiss   = "tastebase.weather.cache_miss"
	MetricStoreErrors        = "tastebase.store.errors"
	MetricCreateDuration     = "tastebase.restaurant.create_duration"
	MetricReviewDuration     = "tastebase.review.add_duration"
	MetricHTTPRequests       = "tastebase.http.requests"
	MetricHTTPDuration       = "tastebase.http.duration"
)
