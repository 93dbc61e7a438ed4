package tastebase

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WEATHER_API_BASE_URL", "https://api.example.com")
	t.Setenv("WEATHER_API_KEY", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %q", cfg.Port)
	}
	if cfg.WeatherUnits != "imperial" {
		t.Errorf("expected default units imperial, got %q", cfg.WeatherUnits)
	}
	if cfg.WeatherTimeoutSecs != 5 {
		t.Errorf("expected default weather timeout 5, got %d", cfg.WeatherTimeoutSecs)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("WEATHER_API_BASE_URL", "https://api.example.com")
	t.Setenv("WEATHER_API_KEY", "secret")
	t.Setenv("WEATHER_API_UNITS", "metric")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != "8080" || cfg.WeatherUnits != "metric" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigRequiredFields(t *testing.T) {
	t.Setenv("WEATHER_API_BASE_URL", "")
	t.Setenv("WEATHER_API_KEY", "secret")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error when WEATHER_API_BASE_URL is missing")
	}

	t.Setenv("WEATHER_API_BASE_URL", "https://api.example.com")
	t.Setenv("WEATHER_API_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error when WEATHER_API_KEY is missing")
	}
}
