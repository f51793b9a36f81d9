// Package config содержит логику чтения конфигурации клиента системы заказа еды.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации клиента.
type Config struct {
	RunAddress     string        `env:"RUN_ADDRESS"`
	APIURL         string        `env:"API_URL"`
	StorageDSN     string        `env:"STORAGE_DSN"`
	PayPalClientID string        `env:"PAYPAL_CLIENT_ID"`
	APIRateLimit   float64       `env:"API_RATE_LIMIT"`
	APITimeout     time.Duration `env:"API_TIMEOUT"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envAPIURL := cfg.APIURL
	envStorageDSN := cfg.StorageDSN
	envPayPalClientID := cfg.PayPalClientID
	envRateLimit := cfg.APIRateLimit
	envTimeout := cfg.APITimeout

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.APIURL, "u", "", "REST API base URL")
	flag.StringVar(&cfg.StorageDSN, "s", "", "credential storage DSN: memory, sqlite://path or postgres://...")
	flag.StringVar(&cfg.PayPalClientID, "p", "", "PayPal client id")
	flag.Float64Var(&cfg.APIRateLimit, "l", 0, "outbound API requests per second, 0 for unlimited")
	flag.DurationVar(&cfg.APITimeout, "t", 0, "outbound API request timeout, 0 for none")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envAPIURL != "" {
		cfg.APIURL = envAPIURL
	}
	if envStorageDSN != "" {
		cfg.StorageDSN = envStorageDSN
	}
	if envPayPalClientID != "" {
		cfg.PayPalClientID = envPayPalClientID
	}
	if envRateLimit != 0 {
		cfg.APIRateLimit = envRateLimit
	}
	if envTimeout != 0 {
		cfg.APITimeout = envTimeout
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if cfg.APIURL == "" {
		return nil, errors.New("api url is required: set API_URL or -u")
	}
	if cfg.APIRateLimit < 0 {
		return nil, fmt.Errorf("invalid api rate limit %v", cfg.APIRateLimit)
	}
	if cfg.APITimeout < 0 {
		return nil, fmt.Errorf("invalid api timeout %v", cfg.APITimeout)
	}

	return cfg, nil
}
