package tastebase

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherCacheReadThrough(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	var calls int32
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"temp":72,"conditions":"clear"}`))
	}))
	defer provider.Close()

	client, err := NewOpenWeatherClient(provider.URL, "test-key", "imperial", time.Second, nil)
	require.NoError(t, err)

	metrics := NewInMemoryMetrics()
	svc := NewWeatherService(rdb, client, nil, metrics)

	require.NoError(t, rdb.HSet(ctx, RestaurantKey("r1"), "id", "r1", "name", "Pasta Place", "location", "40.7,-74.0").Err())

	first, err := svc.ForRestaurant(ctx, "r1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"temp":72,"conditions":"clear"}`, string(first))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, time.Hour, mr.TTL(WeatherKey("r1")))

	// Within the TTL: byte-identical payload, no provider call.
	second, err := svc.ForRestaurant(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "cached payload must be byte-identical")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, 1, metrics.Count(MetricWeatherCacheHit))

	// After expiry the provider is consulted again.
	mr.FastForward(time.Hour + time.Minute)
	_, err = svc.ForRestaurant(ctx, "r1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestWeatherMissingCoordinates(t *testing.T) {
	_, rdb := newTestRedis(t)
	svc := NewWeatherService(rdb, stubWeatherClient{}, nil, nil)

	_, err := svc.ForRestaurant(context.Background(), "no-such-restaurant")
	assert.True(t, IsNotFound(err), "expected not found, got %v", err)
}

func TestWeatherMalformedCoordinates(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	svc := NewWeatherService(rdb, stubWeatherClient{}, nil, nil)

	require.NoError(t, rdb.HSet(ctx, RestaurantKey("r1"), "location", "not-coordinates").Err())

	_, err := svc.ForRestaurant(ctx, "r1")
	assert.True(t, IsNotFound(err), "expected not found, got %v", err)
}

func TestWeatherUpstreamFailure(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer provider.Close()

	client, err := NewOpenWeatherClient(provider.URL, "test-key", "imperial", time.Second, nil)
	require.NoError(t, err)
	svc := NewWeatherService(rdb, client, nil, nil)

	require.NoError(t, rdb.HSet(ctx, RestaurantKey("r1"), "location", "40.7,-74.0").Err())

	_, err = svc.ForRestaurant(ctx, "r1")
	assert.True(t, IsUpstream(err), "expected upstream error, got %v", err)

	// Failures are never cached.
	exists, _ := rdb.Exists(ctx, WeatherKey("r1")).Result()
	assert.Zero(t, exists)
}

func TestOpenWeatherClientRequestShape(t *testing.T) {
	var query map[string]string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{
			"units": q.Get("units"),
			"lat":   q.Get("lat"),
			"lon":   q.Get("lon"),
			"appid": q.Get("appid"),
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer provider.Close()

	client, err := NewOpenWeatherClient(provider.URL, "secret", "metric", time.Second, nil)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), 53.2734, -7.77832031)
	require.NoError(t, err)

	assert.Equal(t, "metric", query["units"])
	assert.Equal(t, "53.2734", query["lat"])
	assert.Equal(t, "-7.77832031", query["lon"])
	assert.Equal(t, "secret", query["appid"])
}

func TestParseCoordinates(t *testing.T) {
	lat, lon, err := parseCoordinates("40.7,-74.0")
	require.NoError(t, err)
	assert.Equal(t, 40.7, lat)
	assert.Equal(t, -74.0, lon)

	for _, bad := range []string{"", "40.7", "abc,def", "40.7,", ",-74.0"} {
		_, _, err := parseCoordinates(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

type stubWeatherClient struct {
	payload []byte
}

func (c stubWeatherClient) Fetch(ctx context.Context, lat, lon float64) ([]byte, error) {
	if c.payload == nil {
		return []byte(`{}`), nil
	}
	return c.payload, nil
}
