package tastebase

import (
	"fmt"
	"os"
)

// Config captures runtime configuration derived from environment variables.
// Redis connection settings are read separately by RedisOptions.
type Config struct {
	Port               string
	WeatherBaseURL     string
	WeatherAPIKey      string
	WeatherUnits       string
	WeatherTimeoutSecs int
	ReadTimeoutSecs    int
	WriteTimeoutSecs   int
	IdleTimeoutSecs    int
}

// LoadConfig reads configuration from environment variables, applying
// defaults and validation.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "3000"),
		WeatherBaseURL:     os.Getenv("WEATHER_API_BASE_URL"),
		WeatherAPIKey:      os.Getenv("WEATHER_API_KEY"),
		WeatherUnits:       getEnv("WEATHER_API_UNITS", "imperial"),
		WeatherTimeoutSecs: getEnvAsInt("WEATHER_TIMEOUT_SECS", 5),
		ReadTimeoutSecs:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
	}

	if cfg.WeatherBaseURL == "" {
		return Config{}, fmt.Errorf("WEATHER_API_BASE_URL is required")
	}
	if cfg.WeatherAPIKey == "" {
		return Config{}, fmt.Errorf("WEATHER_API_KEY is required")
	}
	if cfg.WeatherTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("WEATHER_TIMEOUT_SECS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
