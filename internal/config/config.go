// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads daemon configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the daemon reads at startup
type Config struct {
	HTTPAddr string `env:"AUTOMARKETER_HTTP_ADDR" envDefault:":8080"`
	OpsAddr  string `env:"AUTOMARKETER_OPS_ADDR" envDefault:":9090"`
	DBPath   string `env:"AUTOMARKETER_DB_PATH" envDefault:"automarketer.db"`

	LogLevel    string `env:"AUTOMARKETER_LOG_LEVEL" envDefault:"info"`
	Environment string `env:"AUTOMARKETER_ENV" envDefault:"development"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"AUTOMARKETER_GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	GenerationTimeout time.Duration `env:"AUTOMARKETER_GENERATION_TIMEOUT" envDefault:"60s"`

	// Offline forces the deterministic generator even when an API key
	// is present. Useful for demos and local development.
	Offline bool `env:"AUTOMARKETER_OFFLINE" envDefault:"false"`

	// RandSeed, when non-zero, makes jitter and sampling reproducible.
	RandSeed int64 `env:"AUTOMARKETER_RAND_SEED" envDefault:"0"`
}

// Load parses configuration from the process environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// UseGemini reports whether the daemon should call the hosted model
func (c *Config) UseGemini() bool {
	return c.GeminiAPIKey != "" && !c.Offline
}
