// Package config loads console configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	// Feed connection
	FeedURL              string        `envconfig:"FEED_URL" default:"ws://localhost:8080/ws"`
	Symbols              []string      `envconfig:"SYMBOLS" default:"ETH-USD,BTC-USD,LINK-USD,UNI-USD,AAVE-USD,DOT-USD,ENA-USD,MNT-USD,OKB-USD,POL-USD"`
	ReconnectDelay       time.Duration `envconfig:"RECONNECT_DELAY" default:"2s"`
	MaxReconnectDelay    time.Duration `envconfig:"MAX_RECONNECT_DELAY" default:"30s"`
	MaxReconnectAttempts int           `envconfig:"MAX_RECONNECT_ATTEMPTS" default:"10"`

	// Infrastructure
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// Redis session mirror — disabled when REDIS_ADDR is empty.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Console output
	TickerInterval time.Duration `envconfig:"TICKER_INTERVAL" default:"5s"`
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
