// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration of the API server. When
// DatabaseURL is empty the server runs on in-memory stores; when
// RedisAddr is empty list caching is disabled.
type Config struct {
	HTTPAddr     string        `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL  string        `envconfig:"DATABASE_URL"`
	RedisAddr    string        `envconfig:"REDIS_ADDR"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	SeedDemoData bool          `envconfig:"SEED_DEMO_DATA"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
