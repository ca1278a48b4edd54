package store

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Config selects and parameterises the payload store. Path wins over
// RedisAddr when both are set; neither set disables persistence.
type Config struct {
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	RedisAddr  string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisDB    int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// DefaultConfig returns the default store configuration (disabled).
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.RedisAddr != "" {
		c.RedisAddr = source.RedisAddr
	}
	if source.RedisDB != 0 {
		c.RedisDB = source.RedisDB
	}
	if source.TTLSeconds > 0 {
		c.TTLSeconds = source.TTLSeconds
	}
}

// New creates a Store from configuration. It returns a nil Store when
// persistence is disabled.
func New(cfg *Config) (Store, error) {
	switch {
	case cfg.Path != "":
		return NewFileStore(cfg.Path), nil
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return NewRedisStore(client, time.Duration(cfg.TTLSeconds)*time.Second), nil
	default:
		return nil, nil
	}
}
