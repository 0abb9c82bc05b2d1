// /internal/config/config.go
package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds engine settings read from environment variables.
type Config struct {
	StoragePath   string        `env:"STORAGE_PATH" envDefault:"data/mindcycle.json"`
	TickMin       time.Duration `env:"TICK_MIN" envDefault:"3s"`
	TickMax       time.Duration `env:"TICK_MAX" envDefault:"7s"`
	DecayInterval time.Duration `env:"DECAY_INTERVAL" envDefault:"5s"`
	PatternCap    int           `env:"PATTERN_CAP" envDefault:"512"`
	RandomSeed    int64         `env:"RANDOM_SEED" envDefault:"0"` // 0 = seed from clock
}

// New loads .env (if present) and parses the environment into Config.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.TickMax < cfg.TickMin {
		cfg.TickMax = cfg.TickMin
	}
	return cfg, nil
}
