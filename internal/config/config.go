package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath            string        `env:"DB_PATH" envDefault:"data/quizcore.db"`
	LogLevel          slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir            string        `env:"SPA_DIR" envDefault:"../web/dist"`
	GameConfigPath    string        `env:"GAME_CONFIG" envDefault:""`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH" envDefault:""`
	TickInterval      time.Duration `env:"TICK_INTERVAL" envDefault:"250ms"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
