package tastebase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// weatherTTL is the fixed lifetime of a cached weather payload, enforced by
// the store rather than the application.
const weatherTTL = time.Hour

// WeatherClient fetches the current weather for a coordinate pair from an
// external provider.
type WeatherClient interface {
	Fetch(ctx context.Context, lat, lon float64) ([]byte, error)
}

// WeatherService is a read-through cache over a WeatherClient, keyed by
// restaurant id. A hit returns the stored payload byte-identical; a miss
// resolves the restaurant's coordinates, calls the provider once (no retry),
// and stores the payload with a one-hour expiry.
type WeatherService struct {
	rdb     *redis.Client
	client  WeatherClient
	logger  Logger
	metrics Metrics
}

func NewWeatherService(rdb *redis.Client, client WeatherClient, logger Logger, metrics Metrics) *WeatherService {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if metrics == nil {
		metrics = &NoOpMetrics{}
	}
	return &WeatherService{rdb: rdb, client: client, logger: logger, metrics: metrics}
}

// ForRestaurant returns the weather payload for a restaurant's location.
func (s *WeatherService) ForRestaurant(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	key := WeatherKey(restaurantID)

	cached, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		s.metrics.Increment(MetricWeatherCacheHit)
		s.logger.Debug("weather cache hit", "restaurantId", restaurantID)
		return cached, nil
	}
	if err != redis.Nil {
		return nil, &StoreError{Op: "get cached weather", Err: err}
	}
	s.metrics.Increment(MetricWeatherCacheMiss)

	coords, err := s.rdb.HGet(ctx, RestaurantKey(restaurantID), "location").Result()
	if err == redis.Nil {
		return nil, WithContext(ErrNotFound, map[string]interface{}{
			"restaurantId": restaurantID,
			"reason":       "coordinates not found",
		})
	}
	if err != nil {
		return nil, &StoreError{Op: "get restaurant location", Err: err}
	}

	lat, lon, err := parseCoordinates(coords)
	if err != nil {
		return nil, WithContext(ErrNotFound, map[string]interface{}{
			"restaurantId": restaurantID,
			"reason":       "invalid coordinates format",
		})
	}

	payload, err := s.client.Fetch(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if err := s.rdb.Set(ctx, key, payload, weatherTTL).Err(); err != nil {
		return nil, &StoreError{Op: "cache weather", Err: err}
	}
	return payload, nil
}

// parseCoordinates splits a "lat,long" location string.
func parseCoordinates(s string) (float64, float64, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("malformed coordinates %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed longitude %q", lonStr)
	}
	return lat, lon, nil
}

// OpenWeatherClient implements WeatherClient against an OpenWeather-style
// HTTP API: GET {base}/weather?units=&lat=&lon=&appid=.
type OpenWeatherClient struct {
	baseURL *url.URL
	apiKey  string
	units   string
	client  *http.Client
	logger  Logger
}

// NewOpenWeatherClient constructs an HTTP-backed weather client.
func NewOpenWeatherClient(baseURL, apiKey, units string, timeout time.Duration, logger Logger) (*OpenWeatherClient, error) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse weather url: %w", err)
	}
	return &OpenWeatherClient{
		baseURL: parsed,
		apiKey:  apiKey,
		units:   units,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
			},
		},
		logger: logger,
	}, nil
}

// Fetch retrieves the current weather for a coordinate pair.
func (c *OpenWeatherClient) Fetch(ctx context.Context, lat, lon float64) ([]byte, error) {
	rel := &url.URL{Path: "/weather"}
	q := rel.Query()
	q.Set("units", c.units)
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	rel.RawQuery = q.Encode()
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("weather provider returned non-success",
			"status", resp.StatusCode, "lat", lat, "lon", lon)
		return nil, WithContext(ErrUpstream, map[string]interface{}{
			"status": resp.StatusCode,
		})
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}
	return payload, nil
}
