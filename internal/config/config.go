// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Cache drivers.
const (
	CacheNone      = "none"
	CacheMemory    = "memory"
	CacheRedis     = "redis"
	CacheMemcached = "memcached"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int    `envconfig:"PORT" default:"3001"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// FrontendURLs is the list of allowed cross-origin request origins,
	// comma-separated in the environment.
	FrontendURLs []string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	// StoreDriver selects the trip store: mongo or postgres.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI    string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017/tripplanner"`
	// DatabaseURL is the Postgres connection string. Required when StoreDriver is postgres.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// CacheDriver selects the read-through cache: none, memory, redis or memcached.
	CacheDriver   string        `envconfig:"CACHE_DRIVER" default:"none"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	CacheSize     int64         `envconfig:"CACHE_SIZE" default:"1000"`
	RedisURL      string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	MemcachedAddr []string      `envconfig:"MEMCACHED_ADDR" default:"localhost:11211"`

	// AMQPURL enables trip event publishing when set.
	AMQPURL     string `envconfig:"AMQP_URL"`
	EventsQueue string `envconfig:"EVENTS_QUEUE" default:"trip_events"`

	// MaxBodyBytes caps request bodies. Larger requests get 413.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// Load reads a .env file from the working directory when one exists, then
// populates a Config from the environment and validates it. Variables already
// set in the environment win over the .env file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.FrontendURLs = trimAll(cfg.FrontendURLs)
	cfg.MemcachedAddr = trimAll(cfg.MemcachedAddr)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d (must be between 1 and 65535)", c.Port)
	}

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q (must be mongo or postgres)", c.StoreDriver)
	}

	switch c.CacheDriver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when CACHE_DRIVER=redis")
		}
	case CacheMemcached:
		if len(c.MemcachedAddr) == 0 {
			return errors.New("MEMCACHED_ADDR is required when CACHE_DRIVER=memcached")
		}
	default:
		return fmt.Errorf("invalid CACHE_DRIVER %q (must be none, memory, redis or memcached)", c.CacheDriver)
	}
	if c.CacheDriver != CacheNone && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.CacheDriver == CacheMemory && c.CacheSize < 1 {
		return errors.New("CACHE_SIZE must be at least 1")
	}

	if len(c.FrontendURLs) == 0 {
		return errors.New("at least one FRONTEND_URL origin must be specified")
	}
	if c.MaxBodyBytes < 1 {
		return errors.New("MAX_BODY_BYTES must be at least 1")
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// trimAll trims each entry, dropping empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ClientConfig configures the tripctl command-line client. Every variable is
// prefixed with TRIPS_, e.g. TRIPS_API_URL. envconfig falls back to the
// unprefixed name (API_URL) when the prefixed one is unset.
type ClientConfig struct {
	// APIURL is the public base URL of the trip API.
	APIURL string `envconfig:"API_URL" default:"http://localhost:3001"`
	// DBPath is the local SQLite file holding the signed-in user.
	DBPath   string `envconfig:"DB_PATH" default:"tripctl.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`

	// Username and Password are the single accepted sign-in pair. When
	// PasswordHash (bcrypt) is set it is used instead of Password.
	Username     string `envconfig:"AUTH_USERNAME" default:"admin"`
	Password     string `envconfig:"AUTH_PASSWORD" default:"password"`
	PasswordHash string `envconfig:"AUTH_PASSWORD_HASH"`
}

// LoadClient reads an optional .env file and populates a ClientConfig from
// TRIPS_* environment variables.
func LoadClient() (ClientConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ClientConfig{}, fmt.Errorf("config.LoadClient: read .env: %w", err)
	}

	var cfg ClientConfig
	if err := envconfig.Process("trips", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("config.LoadClient: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")

	if cfg.APIURL == "" {
		return ClientConfig{}, errors.New("config.LoadClient: TRIPS_API_URL must not be empty")
	}
	if cfg.Username == "" {
		return ClientConfig{}, errors.New("config.LoadClient: TRIPS_AUTH_USERNAME must not be empty")
	}
	return cfg, nil
}
