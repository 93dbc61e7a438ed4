package tastebase

import (
	"os"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisOptions returns redis.Options populated from standard environment
// variables, with defaults for local development:
//
//   - REDIS_ADDR (default: "localhost:6379")
//   - REDIS_PASSWORD (default: "")
//   - REDIS_DB (default: 0)
//
// Advanced scenarios (Cluster, Sentinel, TLS, pool tuning) can construct
// redis.Options directly and bypass this helper.
func RedisOptions() *redis.Options {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	return &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

var (
	sharedOnce   sync.Once
	sharedClient *redis.Client
)

// SharedClient returns the process-wide Redis client, creating it from
// RedisOptions on first use. All request handlers reuse this one client and
// its connection pool; services still take the client by injection so tests
// can substitute their own.
func SharedClient() *redis.Client {
	sharedOnce.Do(func() {
		sharedClient = redis.NewClient(RedisOptions())
	})
	return sharedClient
}

// getEnvAsInt reads an integer environment variable with a default fallback.
func getEnvAsInt(key string, defaultVal int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultVal
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultVal
	}
	return value
}
