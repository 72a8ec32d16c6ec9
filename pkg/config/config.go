package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8000"`
	GinMode     string `env:"GIN_MODE" envDefault:"release"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"DATA_PATH" envDefault:"shiftboard.db"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Timezone used to resolve shifts to weekdays for availability checks.
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	EnforceAvailability bool `env:"ENFORCE_AVAILABILITY" envDefault:"true"`
	EnforceMaxHours     bool `env:"ENFORCE_MAX_HOURS" envDefault:"true"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
