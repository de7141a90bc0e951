package idp

import "time"

// Config tunes the HTTP transport each tenant client owns.
type Config struct {
	ConnectTimeout  time.Duration `env:"IDP_CONNECT_TIMEOUT" envDefault:"5s"`
	RequestTimeout  time.Duration `env:"IDP_REQUEST_TIMEOUT" envDefault:"10s"`
	IdleConnTimeout time.Duration `env:"IDP_IDLE_CONN_TIMEOUT" envDefault:"30s"`
	MaxConns        int           `env:"IDP_MAX_CONNS" envDefault:"50"`
	MaxConnsPerHost int           `env:"IDP_MAX_CONNS_PER_HOST" envDefault:"20"`
}

// DefaultConfig returns the settings used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:  5 * time.Second,
		RequestTimeout:  10 * time.Second,
		IdleConnTimeout: 30 * time.Second,
		MaxConns:        50,
		MaxConnsPerHost: 20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = d.IdleConnTimeout
	}
	if c.MaxConns <= 0 {
		c.MaxConns = d.MaxConns
	}
	if c.MaxConnsPerHost <= 0 {
		c.MaxConnsPerHost = d.MaxConnsPerHost
	}
	return c
}
