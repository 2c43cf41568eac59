package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(t *testing.T, cfg *Config)
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			expected: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8081", cfg.Port)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "http://api.exchangeratesapi.io/v1/latest", cfg.Rates.URL)
				assert.Empty(t, cfg.Rates.APIKey)
				assert.True(t, cfg.Rates.RefreshOnStart)
				assert.Zero(t, cfg.Rates.HTTPTimeout)
				assert.True(t, cfg.RateLimit.Enabled)
				assert.Equal(t, 100, cfg.RateLimit.Requests)
				assert.Equal(t, 60*time.Second, cfg.RateLimit.Window)
				assert.Equal(t, 10, cfg.RateLimit.Burst)
				assert.False(t, cfg.Desktop.DarkMode)
			},
		},
		{
			name: "custom configuration",
			envVars: map[string]string{
				"PORT":                   "9090",
				"LOG_LEVEL":              "debug",
				"RATES_API_URL":          "https://rates.example.com/latest",
				"RATES_API_KEY":          "secret",
				"RATES_REFRESH_ON_START": "false",
				"RATES_HTTP_TIMEOUT":     "5s",
				"RATE_LIMIT_ENABLED":     "false",
				"RATE_LIMIT_REQUESTS":    "200",
				"RATE_LIMIT_WINDOW":      "2m",
				"RATE_LIMIT_BURST":       "20",
				"DESKTOP_DARK_MODE":      "true",
			},
			expected: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "9090", cfg.Port)
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "https://rates.example.com/latest", cfg.Rates.URL)
				assert.Equal(t, "secret", cfg.Rates.APIKey)
				assert.False(t, cfg.Rates.RefreshOnStart)
				assert.Equal(t, 5*time.Second, cfg.Rates.HTTPTimeout)
				assert.False(t, cfg.RateLimit.Enabled)
				assert.Equal(t, 200, cfg.RateLimit.Requests)
				assert.Equal(t, 2*time.Minute, cfg.RateLimit.Window)
				assert.Equal(t, 20, cfg.RateLimit.Burst)
				assert.True(t, cfg.Desktop.DarkMode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			require.NoError(t, err)
			tt.expected(t, cfg)
		})
	}
}

func TestLoad_InvalidURL(t *testing.T) {
	t.Setenv("RATES_API_URL", "not a url")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"non numeric port", "PORT", "http"},
		{"zero burst", "RATE_LIMIT_BURST", "0"},
		{"zero window", "RATE_LIMIT_WINDOW", "0s"},
		{"negative timeout", "RATES_HTTP_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_RatesURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		apiKey   string
		expected string
	}{
		{
			name:     "no key",
			baseURL:  "http://api.exchangeratesapi.io/v1/latest",
			expected: "http://api.exchangeratesapi.io/v1/latest",
		},
		{
			name:     "key appended",
			baseURL:  "http://api.exchangeratesapi.io/v1/latest",
			apiKey:   "abc123",
			expected: "http://api.exchangeratesapi.io/v1/latest?access_key=abc123",
		},
		{
			name:     "existing query kept",
			baseURL:  "http://api.exchangeratesapi.io/v1/latest?format=1",
			apiKey:   "abc123",
			expected: "http://api.exchangeratesapi.io/v1/latest?access_key=abc123&format=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Rates: RatesAPI{URL: tt.baseURL, APIKey: tt.apiKey}}

			got, err := cfg.RatesURL()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConfig_RatesURLRejectsRelative(t *testing.T) {
	cfg := &Config{Rates: RatesAPI{URL: "/latest"}}

	_, err := cfg.RatesURL()
	assert.Error(t, err)
}
