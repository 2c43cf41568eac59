package config

import (
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// RatesAPI describes the upstream exchange rate endpoint
type RatesAPI struct {
	URL            string        `env:"RATES_API_URL" env-default:"http://api.exchangeratesapi.io/v1/latest"`
	APIKey         string        `env:"RATES_API_KEY"`
	RefreshOnStart bool          `env:"RATES_REFRESH_ON_START" env-default:"true"`
	HTTPTimeout    time.Duration `env:"RATES_HTTP_TIMEOUT" env-default:"0s" validate:"gte=0"`
}

// RateLimit configures the per-client limiter of the HTTP API
type RateLimit struct {
	Enabled  bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Requests int           `env:"RATE_LIMIT_REQUESTS" env-default:"100" validate:"gte=1"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"60s" validate:"gt=0"`
	Burst    int           `env:"RATE_LIMIT_BURST" env-default:"10" validate:"gte=1"`
}

// Desktop holds settings only the desktop shell reads
type Desktop struct {
	DarkMode bool `env:"DESKTOP_DARK_MODE" env-default:"false"`
}

// Config holds all configuration for the application
type Config struct {
	Port     string `env:"PORT" env-default:"8081" validate:"required,numeric"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`

	Rates     RatesAPI
	RateLimit RateLimit
	Desktop   Desktop
}

// Load loads configuration from environment variables, reading a .env file first if present
func Load() (*Config, error) {
	const op = "config.Load"

	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, op)
	}

	if _, err := cfg.RatesURL(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return cfg, nil
}

// RatesURL returns the upstream URL with the API key attached as access_key
func (cfg *Config) RatesURL() (string, error) {
	parsed, err := url.Parse(cfg.Rates.URL)
	if err != nil {
		return "", errors.Wrap(err, "invalid RATES_API_URL")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.Errorf("invalid RATES_API_URL %q: scheme and host are required", cfg.Rates.URL)
	}

	if cfg.Rates.APIKey != "" {
		query := parsed.Query()
		query.Set("access_key", cfg.Rates.APIKey)
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}
