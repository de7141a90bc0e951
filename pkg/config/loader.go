package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu      sync.Mutex
	cache   = make(map[reflect.Type]any)
	envOnce sync.Once
)

// LoadEnv loads variables from the given .env files. Later files override
// earlier ones; variables already set in the process environment are kept.
// With no arguments it loads ./.env if present.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		// A missing default .env file is not an error.
		_ = godotenv.Load()
		return nil
	}
	for i := len(paths) - 1; i >= 0; i-- {
		if err := godotenv.Load(paths[i]); err != nil {
			return errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", paths[i], err))
		}
	}
	return nil
}

// Load parses the environment into v using `env` struct tags.
// The default .env file is loaded on first use. Each configuration type is
// parsed once; later calls return the cached copy.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	envOnce.Do(func() { _ = LoadEnv() })

	key := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	parsed, err := env.ParseAs[T]()
	if err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ResetCache drops every cached configuration so the next Load re-reads the environment.
func ResetCache() {
	mu.Lock()
	clear(cache)
	mu.Unlock()
}
