// Package config loads typed configuration from the environment.
//
// Structs are described with github.com/caarlos0/env/v11 tags; nested
// structs are parsed recursively, so a service config can embed the configs
// of the packages it wires:
//
//	type AppConfig struct {
//		TenantsFile string `env:"TENANTS_FILE" envDefault:"tenants.yaml"`
//		Redis       redis.Config
//		RateLimit   ratelimiter.LimiterConfig
//	}
//
//	var cfg AppConfig
//	config.MustLoad(&cfg)
//
// A .env file in the working directory is loaded through
// github.com/joho/godotenv on first use; LoadEnv loads explicit files.
// Parsed configs are cached per type; ResetCache clears the cache in tests.
package config
