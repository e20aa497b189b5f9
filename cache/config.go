package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-blog-api/internal/cacheinfra"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend    string
	Codec      string
	DefaultTTL time.Duration
	Redis      RedisConfig
	Memory     MemoryConfig
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// MemoryConfig mirrors the underlying sturdyc sizing options.
type MemoryConfig struct {
	Capacity           int
	NumShards          int
	MaxTTL             time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	redis := cacheinfra.DefaultRedisConfig()
	memory := cacheinfra.DefaultConfig()
	return Config{
		Backend:    BackendRedis,
		Codec:      CodecJSON,
		DefaultTTL: time.Hour,
		Redis: RedisConfig{
			Host:         redis.Host,
			Port:         redis.Port,
			DB:           redis.DB,
			DialTimeout:  redis.DialTimeout,
			ReadTimeout:  redis.ReadTimeout,
			WriteTimeout: redis.WriteTimeout,
			PoolSize:     redis.PoolSize,
		},
		Memory: MemoryConfig{
			Capacity:           memory.Capacity,
			NumShards:          memory.NumShards,
			MaxTTL:             memory.TTL,
			EvictionPercentage: memory.EvictionPercentage,
			EvictionInterval:   memory.EvictionInterval,
		},
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.DefaultTTL <= 0 {
		return &cacheinfra.ConfigError{Field: "DefaultTTL", Message: "must be greater than 0"}
	}
	if _, err := CodecByName(c.Codec); err != nil {
		return &cacheinfra.ConfigError{Field: "Codec", Message: err.Error()}
	}
	switch c.Backend {
	case BackendRedis:
		return c.redisConfig().Validate()
	case BackendMemory:
		return c.memoryConfig().Validate()
	default:
		return &cacheinfra.ConfigError{Field: "Backend", Message: fmt.Sprintf("unknown backend %q", c.Backend)}
	}
}

// NewStore constructs the long-lived store selected by Backend.
func NewStore(cfg Config, logger *slog.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendMemory {
		return cacheinfra.NewSturdycStore(cfg.memoryConfig())
	}
	return cacheinfra.NewRedisStore(cfg.redisConfig(), logger)
}

// NewAccessorFromConfig wires an Accessor around store using the configured
// codec and default expiry.
func NewAccessorFromConfig(store Store, cfg Config, logger *slog.Logger) (Accessor, error) {
	codec, err := CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	return NewAccessor(store, codec, cfg.DefaultTTL, logger), nil
}

func (c Config) redisConfig() cacheinfra.RedisConfig {
	return cacheinfra.RedisConfig{
		Host:         c.Redis.Host,
		Port:         c.Redis.Port,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		DialTimeout:  c.Redis.DialTimeout,
		ReadTimeout:  c.Redis.ReadTimeout,
		WriteTimeout: c.Redis.WriteTimeout,
		PoolSize:     c.Redis.PoolSize,
	}
}

func (c Config) memoryConfig() cacheinfra.Config {
	maxTTL := c.Memory.MaxTTL
	if maxTTL < c.DefaultTTL {
		maxTTL = c.DefaultTTL
	}
	return cacheinfra.Config{
		Capacity:           c.Memory.Capacity,
		NumShards:          c.Memory.NumShards,
		TTL:                maxTTL,
		EvictionPercentage: c.Memory.EvictionPercentage,
		EvictionInterval:   c.Memory.EvictionInterval,
	}
}
