package tastebase

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements the Metrics interface using Prometheus
type PrometheusMetrics struct {
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
	registry   *prometheus.Registry
}

// counterNames maps tastebase metric names to Prometheus counter names.
var counterNames = map[string]string{
	MetricRestaurantCreated:  "restaurants_created_total",
	MetricRestaurantConflict: "restaurant_conflicts_total",
	MetricRestaurantViews:    "restaurant_views_total",
	MetricReviewAdded:        "reviews_added_total",
	MetricReviewDeleted:      "reviews_deleted_total",
	MetricWeatherCacheHit:    "weather_cache_hits_total",
	MetricWeatherCacheMiss:   "weather_cache_misses_total",
	MetricStoreErrors:        "store_errors_total",
	MetricHTTPRequests:       "http_requests_total",
}

var histogramNames = map[string]string{
	MetricCreateDuration: "restaurant_create_duration_seconds",
	MetricReviewDuration: "review_add_duration_seconds",
	MetricHTTPDuration:   "http_request_duration_seconds",
}

// NewPrometheusMetrics creates a new Prometheus metrics instance backed by
// its own registry (pass nil) or an existing one.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	pm := &PrometheusMetrics{
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
		registry:   registry,
	}

	for metric, name := range counterNames {
		pm.counters[metric] = promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Namespace: "tastebase",
			Name:      name,
		})
	}
	for metric, name := range histogramNames {
		pm.histograms[metric] = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Namespace: "tastebase",
			Name:      name,
			Buckets:   prometheus.DefBuckets,
		})
	}

	return pm
}

// Registry exposes the underlying registry for the /metrics handler.
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusMetrics) Increment(name string, tags ...string) {
	if c, ok := p.counters[name]; ok {
		c.Inc()
	}
}

func (p *PrometheusMetrics) Gauge(name string, value float64, tags ...string) {
	if g, ok := p.gauges[name]; ok {
		g.Set(value)
	}
}

func (p *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...string) {
	if h, ok := p.histograms[name]; ok {
		h.Observe(duration.Seconds())
	}
}
