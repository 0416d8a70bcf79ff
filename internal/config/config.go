package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	RedisURL  string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// HouseEdge is the operator margin in percent, applied to both games.
	HouseEdge float64 `env:"HOUSE_EDGE" envDefault:"1"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}
	if cfg.HouseEdge < 0 || cfg.HouseEdge >= 100 {
		return nil, fmt.Errorf("house edge must be in [0, 100), got %v", cfg.HouseEdge)
	}
	return cfg, nil
}
