// Package config loads the settings for the commands.
//
// Settings come from the environment, optionally primed from a .env file,
// and from an optional YAML file whose values take precedence.
// Secrets such as the database password are never given defaults here.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/madkins23/mongo-users/cache"
	"github.com/madkins23/mongo-users/logger"
	"github.com/madkins23/mongo-users/mdbconf"
)

// ErrLoad is wrapped by every error returned from Load.
var ErrLoad = errors.New("load configuration")

// Cache kinds.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all command settings.
type Config struct {
	Mongo mdbconf.Raw   `envPrefix:"MONGO_" yaml:"mongo"`
	Log   logger.Config `envPrefix:"LOG_" yaml:"log"`
	Cache CacheConfig   `envPrefix:"CACHE_" yaml:"cache"`
}

// CacheConfig selects the cache placed in front of user lookups.
type CacheConfig struct {
	Kind  string            `env:"KIND" envDefault:"none" yaml:"kind" validate:"oneof=none memory redis"`
	TTL   time.Duration     `env:"TTL" envDefault:"5m" yaml:"ttl" validate:"gte=0"`
	Redis cache.RedisConfig `envPrefix:"REDIS_" yaml:"redis"`
}

// Options for Load.
type Options struct {
	// EnvFile is loaded into the process environment first, it must exist when named.
	// When empty a .env file in the working directory is loaded if there is one.
	EnvFile string

	// YAMLFile is read after the environment when named.
	YAMLFile string

	// Environment replaces the process environment when not nil.
	Environment map[string]string
}

// Load reads the configuration.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("%w: env file %s: %w", ErrLoad, opts.EnvFile, err)
		}
	} else if opts.Environment == nil {
		// The default .env file is optional.
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: opts.Environment}); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrLoad, err)
	}

	if opts.YAMLFile != "" {
		data, err := os.ReadFile(opts.YAMLFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: YAML file %s: %w", ErrLoad, opts.YAMLFile, err)
		}
	}

	if err := validator.New().Struct(cfg.Cache); err != nil {
		return nil, fmt.Errorf("%w: cache: %w", ErrLoad, err)
	}
	if cfg.Cache.Kind == CacheRedis && cfg.Cache.Redis.Addr == "" {
		return nil, fmt.Errorf("%w: cache: redis address is required", ErrLoad)
	}

	return cfg, nil
}

// Connection validates the Mongo settings.
func (c *Config) Connection() (*mdbconf.Connection, error) {
	return mdbconf.Build(c.Mongo)
}

// OpenCache returns the configured cache, nil for CacheNone.
// The returned close function is never nil.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, func() error, error) {
	noClose := func() error { return nil }
	switch c.Cache.Kind {
	case CacheMemory:
		return cache.NewMemory(), noClose, nil
	case CacheRedis:
		redis, err := cache.OpenRedis(ctx, c.Cache.Redis)
		if err != nil {
			return nil, noClose, err
		}
		return redis, redis.Close, nil
	}
	return nil, noClose, nil
}
