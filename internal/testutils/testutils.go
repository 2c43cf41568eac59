package testutils

import (
	"io"
	"time"

	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/logger"
)

// MockLogger creates a logger that discards output
func MockLogger() *logger.Logger {
	return logger.NewWithWriter("debug", io.Discard)
}

// MockConfig creates a configuration pointing at ratesURL
func MockConfig(ratesURL string) *config.Config {
	return &config.Config{
		Port:     "8081",
		LogLevel: "debug",
		Rates: config.RatesAPI{
			URL:            ratesURL,
			RefreshOnStart: false,
		},
		RateLimit: config.RateLimit{
			Enabled:  true,
			Requests: 100,
			Window:   60 * time.Second,
			Burst:    10,
		},
	}
}

// MockRates returns a small rates table relative to USD
func MockRates() map[string]float64 {
	return map[string]float64{
		"USD": 1.0,
		"EUR": 0.92,
		"GBP": 0.79,
		"JPY": 151.37,
	}
}
