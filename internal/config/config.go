package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Store struct {
		Dir string `env:"STORE_DIR" envDefault:"data"`
	}
	Optimization struct {
		PopulationSize int     `env:"GA_POP_SIZE" envDefault:"10"`
		Generations    int     `env:"GA_GENERATIONS" envDefault:"500"`
		Exploration    float64 `env:"GA_EXPLORATION" envDefault:"0.25"`
		Selection      string  `env:"GA_SELECTION" envDefault:"rank"`
		KeepTop        int     `env:"GA_KEEP_TOP" envDefault:"1"`
		Precision      int     `env:"GA_PRECISION" envDefault:"5"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	// Ensure the store directory exists
	if cfg.Store.Dir != "" {
		if err := os.MkdirAll(cfg.Store.Dir, 0755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
