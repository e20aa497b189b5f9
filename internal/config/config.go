package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/viper"

	"github.com/goliatone/go-blog-api/cache"
	"github.com/goliatone/go-blog-api/internal/database"
	"github.com/goliatone/go-blog-api/internal/httpapi"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is read once at startup and handed to components by value.
type Config struct {
	Env             string
	Port            int
	LogLevel        string
	ShutdownTimeout time.Duration
	WhitelistedIPs  []string
	TrustedProxies  []string
	AllowedOrigins  []string
	Database        DatabaseConfig
	Cache           CacheConfig
	JWT             JWTConfig
	RateLimit       RateLimitConfig
}

type DatabaseConfig struct {
	Driver         string
	URL            string
	MaxConns       int
	ConnectRetries int
	RetryBackoff   time.Duration
}

type CacheConfig struct {
	Backend    string
	Codec      string
	Host       string
	Port       int
	Password   string
	Expiration time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type RateLimitConfig struct {
	Window time.Duration
	Max    int
}

// required lists the keys that have no default. The cache host and port are
// only required for the redis backend.
var required = []string{
	"port",
	"database_url",
	"whitelisted_ips",
	"allowed_origins",
	"jwt_secret",
	"redis_expiration",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", EnvDevelopment)
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("database_driver", database.DriverPostgres)
	v.SetDefault("database_max_conns", 5)
	v.SetDefault("database_connect_retries", 5)
	v.SetDefault("database_retry_backoff", "5s")
	v.SetDefault("cache_backend", cache.BackendRedis)
	v.SetDefault("cache_codec", cache.CodecJSON)
	v.SetDefault("jwt_expiration", "24h")
	v.SetDefault("rate_limit_window", "2m")
	v.SetDefault("rate_limit_max", 50)
}

// Load reads the configuration from the environment and, when envFile is not
// empty, from a dotenv style file. Environment variables win over the file.
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to read config file "+envFile)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	var missing []goerrors.FieldError
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, goerrors.FieldError{Field: strings.ToUpper(key), Message: "is required"})
		}
	}
	if v.GetString("cache_backend") == cache.BackendRedis {
		for _, key := range []string{"redis_host", "redis_port"} {
			if strings.TrimSpace(v.GetString(key)) == "" {
				missing = append(missing, goerrors.FieldError{Field: strings.ToUpper(key), Message: "is required"})
			}
		}
	}
	if len(missing) > 0 {
		return Config{}, goerrors.NewValidation("missing required configuration", missing...)
	}

	var parseErrs []goerrors.FieldError
	duration := func(key string) time.Duration {
		d, err := parseDuration(v.GetString(key))
		if err != nil {
			parseErrs = append(parseErrs, goerrors.FieldError{Field: strings.ToUpper(key), Message: err.Error()})
		}
		return d
	}
	integer := func(key string) int {
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			parseErrs = append(parseErrs, goerrors.FieldError{Field: strings.ToUpper(key), Message: "must be an integer"})
		}
		return n
	}

	cfg := Config{
		Env:             strings.ToLower(v.GetString("app_env")),
		Port:            integer("port"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		ShutdownTimeout: duration("shutdown_timeout"),
		WhitelistedIPs:  splitList(v.GetString("whitelisted_ips")),
		TrustedProxies:  splitList(v.GetString("trusted_proxies")),
		AllowedOrigins:  splitList(v.GetString("allowed_origins")),
		Database: DatabaseConfig{
			Driver:         v.GetString("database_driver"),
			URL:            v.GetString("database_url"),
			MaxConns:       integer("database_max_conns"),
			ConnectRetries: integer("database_connect_retries"),
			RetryBackoff:   duration("database_retry_backoff"),
		},
		Cache: CacheConfig{
			Backend:    v.GetString("cache_backend"),
			Codec:      v.GetString("cache_codec"),
			Host:       v.GetString("redis_host"),
			Password:   v.GetString("redis_password"),
			Expiration: duration("redis_expiration"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt_secret"),
			Expiration: duration("jwt_expiration"),
		},
		RateLimit: RateLimitConfig{
			Window: duration("rate_limit_window"),
			Max:    integer("rate_limit_max"),
		},
	}
	if cfg.Cache.Backend == cache.BackendRedis {
		cfg.Cache.Port = integer("redis_port")
	}
	if len(parseErrs) > 0 {
		return Config{}, goerrors.NewValidation("invalid configuration", parseErrs...)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Env, validation.In(EnvDevelopment, EnvProduction)),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WhitelistedIPs, validation.Required),
		validation.Field(&c.AllowedOrigins, validation.Required),
		validation.Field(&c.Database),
		validation.Field(&c.Cache),
		validation.Field(&c.JWT),
		validation.Field(&c.RateLimit),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid configuration")
	}
	return nil
}

func (d DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Driver, validation.Required, validation.In(database.DriverPostgres, database.DriverPgx, database.DriverSQLite)),
		validation.Field(&d.URL, validation.Required),
		validation.Field(&d.MaxConns, validation.Min(1)),
		validation.Field(&d.ConnectRetries, validation.Min(1)),
		validation.Field(&d.RetryBackoff, validation.Min(time.Duration(0))),
	)
}

func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(cache.BackendRedis, cache.BackendMemory)),
		validation.Field(&c.Codec, validation.In(cache.CodecJSON, cache.CodecMsgpack)),
		validation.Field(&c.Port, validation.When(c.Backend == cache.BackendRedis, validation.Required, validation.Min(1), validation.Max(65535))),
		validation.Field(&c.Expiration, validation.Required, validation.Min(time.Second)),
	)
}

func (j JWTConfig) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Secret, validation.Required),
		validation.Field(&j.Expiration, validation.Required, validation.Min(time.Second)),
	)
}

func (r RateLimitConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Window, validation.Required, validation.Min(time.Second)),
		validation.Field(&r.Max, validation.Required, validation.Min(1)),
	)
}

// IsProduction reports whether stack traces must be hidden from clients.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// CacheSettings maps the environment onto the cache package configuration.
func (c Config) CacheSettings() cache.Config {
	settings := cache.DefaultConfig()
	settings.Backend = c.Cache.Backend
	settings.Codec = c.Cache.Codec
	settings.DefaultTTL = c.Cache.Expiration
	settings.Redis.Host = c.Cache.Host
	settings.Redis.Password = c.Cache.Password
	if c.Cache.Port > 0 {
		settings.Redis.Port = c.Cache.Port
	}
	return settings
}

// DatabaseSettings maps the environment onto the pool configuration.
func (c Config) DatabaseSettings() database.Config {
	settings := database.DefaultConfig()
	settings.Driver = c.Database.Driver
	settings.URL = c.Database.URL
	settings.MaxConns = c.Database.MaxConns
	settings.ConnectRetries = c.Database.ConnectRetries
	settings.RetryBackoff = c.Database.RetryBackoff
	return settings
}

// ServerOptions maps the environment onto the request pipeline options.
func (c Config) ServerOptions() httpapi.Options {
	opts := httpapi.DefaultOptions()
	opts.Production = c.IsProduction()
	opts.WhitelistedIPs = c.WhitelistedIPs
	opts.TrustedProxies = c.TrustedProxies
	opts.AllowedOrigins = c.AllowedOrigins
	opts.RateLimitWindow = c.RateLimit.Window
	opts.RateLimitMax = c.RateLimit.Max
	return opts
}

// parseDuration accepts Go duration strings and bare integers, read as seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
