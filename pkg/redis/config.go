package redis

import "time"

// Config describes the shared Redis connection used for rate limiting,
// tenant caching and audit streams.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@host:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	DialTimeout    time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	ReadTimeout    time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"500ms"`
	WriteTimeout   time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"500ms"`
	PoolSize       int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
}
