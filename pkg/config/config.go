// Package config loads pondera settings.
//
// Sources are layered, later ones winning: built-in defaults, a TOML file
// (pondera.toml in the working directory when no path is given), a .env
// file, and PONDERA_* environment variables. CLI flags are applied on top by
// the caller.
//
//	[data]
//	path = "data/ponderaciones.csv"
//	split_branches = ["C+SD"]
//
//	[render]
//	mode = "strict"
//	density_cap = 10
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	redis = { addr = "localhost:6379" }
package config

import (
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/pondera/pkg/cache"
	"github.com/matzehuels/pondera/pkg/calculator"
	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/weights"
)

const (
	// DefaultFile is read when Load is called without a path and it exists.
	DefaultFile = "pondera.toml"

	// DefaultEnvFile is read for PONDERA_* variables when present.
	DefaultEnvFile = ".env"

	DefaultDataPath = "ponderaciones.csv"
	DefaultAddr     = "localhost:8050"
	DefaultTTL      = "24h"
)

// Environment variables.
const (
	EnvData      = "PONDERA_DATA"
	EnvAddr      = "PONDERA_ADDR"
	EnvCache     = "PONDERA_CACHE"
	EnvRedisAddr = "PONDERA_REDIS_ADDR"
	EnvMongoURI  = "PONDERA_MONGO_URI"
)

// Config is the full settings tree.
type Config struct {
	Data       DataConfig       `toml:"data"`
	Server     ServerConfig     `toml:"server"`
	Render     RenderConfig     `toml:"render"`
	Calculator CalculatorConfig `toml:"calculator"`
	Cache      CacheConfig      `toml:"cache"`
}

type DataConfig struct {
	// Path is a local file or any URL the data loader understands.
	Path          string   `toml:"path"`
	Delimiter     string   `toml:"delimiter"` // empty auto-detects
	SplitBranches []string `toml:"split_branches"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type RenderConfig struct {
	Mode            string `toml:"mode"`
	DensityCap      int    `toml:"density_cap"`
	ShowZeroWeights bool   `toml:"show_zero_weights"`
}

type CalculatorConfig struct {
	Selection string `toml:"selection"`
}

type CacheConfig struct {
	Backend    string      `toml:"backend"`
	Dir        string      `toml:"dir"`
	TTL        string      `toml:"ttl"`
	MemorySize int         `toml:"memory_size"`
	Scope      string      `toml:"scope"` // key prefix when several datasets share a backend
	Redis      RedisConfig `toml:"redis"`
	Mongo      MongoConfig `toml:"mongo"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Data:       DataConfig{Path: DefaultDataPath, SplitBranches: weights.DefaultSplitBranches},
		Server:     ServerConfig{Addr: DefaultAddr},
		Render:     RenderConfig{Mode: flow.Strict.String()},
		Calculator: CalculatorConfig{Selection: calculator.ByContribution.String()},
		Cache: CacheConfig{
			Backend:    string(cache.BackendFile),
			TTL:        DefaultTTL,
			MemorySize: cache.DefaultMemorySize,
		},
	}
}

// Load reads settings from path (or DefaultFile when path is empty and the
// file exists), the .env file and the environment, then validates them.
func Load(path string) (*Config, error) {
	return load(path, DefaultEnvFile, os.Getenv)
}

func load(path, envFile string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	} else if explicit {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	dotenv := map[string]string{}
	if envFile != "" {
		if m, err := godotenv.Read(envFile); err == nil {
			dotenv = m
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", envFile)
		}
	}
	cfg.applyEnv(func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Data.Path, EnvData)
	set(&c.Server.Addr, EnvAddr)
	set(&c.Cache.Backend, EnvCache)
	set(&c.Cache.Redis.Addr, EnvRedisAddr)
	set(&c.Cache.Mongo.URI, EnvMongoURI)
}

// Validate checks every enumerated and ranged setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Path) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "data.path is required")
	}
	if utf8.RuneCountInString(c.Data.Delimiter) > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "data.delimiter must be a single character, got %q", c.Data.Delimiter)
	}
	if _, err := flow.ParseMode(c.Render.Mode); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.mode")
	}
	if c.Render.DensityCap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.density_cap must be >= 0, got %d", c.Render.DensityCap)
	}
	if _, err := calculator.ParseSelection(c.Calculator.Selection); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "calculator.selection")
	}
	if _, err := c.CacheConfig(); err != nil {
		return err
	}
	return nil
}

// DataOptions returns the loader options.
func (c *Config) DataOptions() weights.Options {
	opts := weights.Options{SplitBranches: c.Data.SplitBranches}
	if r, _ := utf8.DecodeRuneInString(c.Data.Delimiter); r != utf8.RuneError {
		opts.Delimiter = r
	}
	if opts.SplitBranches == nil {
		opts.SplitBranches = weights.DefaultSplitBranches
	}
	return opts
}

// Mode returns the parsed default threshold mode.
func (c *Config) Mode() flow.Mode {
	m, _ := flow.ParseMode(c.Render.Mode)
	return m
}

// Selection returns the parsed elective selection policy.
func (c *Config) Selection() calculator.Selection {
	s, _ := calculator.ParseSelection(c.Calculator.Selection)
	return s
}

// CacheConfig converts the [cache] section for cache.Open.
func (c *Config) CacheConfig() (cache.Config, error) {
	backend, err := cache.ParseBackend(c.Cache.Backend)
	if err != nil {
		return cache.Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.backend")
	}
	var ttl time.Duration
	if c.Cache.TTL != "" {
		ttl, err = time.ParseDuration(c.Cache.TTL)
		if err != nil {
			return cache.Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.ttl")
		}
		if ttl < 0 {
			return cache.Config{}, errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must be >= 0, got %s", c.Cache.TTL)
		}
	}
	if c.Cache.MemorySize < 0 {
		return cache.Config{}, errors.New(errors.ErrCodeInvalidConfig, "cache.memory_size must be >= 0, got %d", c.Cache.MemorySize)
	}
	switch {
	case backend == cache.BackendRedis && c.Cache.Redis.Addr == "":
		return cache.Config{}, errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
	case backend == cache.BackendMongo && c.Cache.Mongo.URI == "":
		return cache.Config{}, errors.New(errors.ErrCodeInvalidConfig, "cache.mongo.uri is required for the mongo backend")
	}
	return cache.Config{
		Backend:    backend,
		Dir:        c.Cache.Dir,
		TTL:        ttl,
		MemorySize: c.Cache.MemorySize,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}, nil
}
