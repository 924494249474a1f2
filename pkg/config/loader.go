package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var loadDotEnv sync.Once

// Load parses environment variables into a new instance of T based on its
// `env` struct tags. The default .env file is loaded once per process; its
// absence is not an error.
func Load[T any]() (T, error) {
	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})

	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, fmt.Errorf("%T: %w", cfg, err))
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure. Intended for
// configurations without which the process cannot start.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
