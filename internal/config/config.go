// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// Server configures cmd/api.
type Server struct {
	// PORT wins over API_PORT so hosted platforms can inject it.
	Port    string `env:"PORT"`
	APIPort string `env:"API_PORT" envDefault:"8080"`

	DefaultIterations int `env:"SIM_DEFAULT_ITERATIONS" envDefault:"5000"`
	MaxIterations     int `env:"SIM_MAX_ITERATIONS" envDefault:"1000000"`
	Workers           int `env:"SIM_WORKERS"`

	// RosterPath optionally preloads units that requests can refer to by name.
	RosterPath string `env:"ROSTER_PATH"`
	// RunLogDir enables on-disk persistence of run records.
	RunLogDir string `env:"RUN_LOG_DIR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Addr is the listen address.
func (s Server) Addr() string {
	if s.Port != "" {
		return ":" + s.Port
	}
	return ":" + s.APIPort
}

// LoadServer parses and validates the server configuration.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.DefaultIterations < 1 {
		return Server{}, fmt.Errorf("SIM_DEFAULT_ITERATIONS must be positive, got %d", cfg.DefaultIterations)
	}
	if cfg.MaxIterations < cfg.DefaultIterations {
		return Server{}, fmt.Errorf("SIM_MAX_ITERATIONS (%d) is below SIM_DEFAULT_ITERATIONS (%d)", cfg.MaxIterations, cfg.DefaultIterations)
	}
	return cfg, nil
}
