package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Backend names a cache implementation.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
	BackendMongo  Backend = "mongo"
)

// Backends lists every supported backend.
var Backends = []Backend{BackendNone, BackendFile, BackendMemory, BackendRedis, BackendMongo}

// ParseBackend parses a backend name. "" and "null" mean none.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "", "null":
		return BackendNone, nil
	case BackendNone, BackendFile, BackendMemory, BackendRedis, BackendMongo:
		return b, nil
	default:
		return "", fmt.Errorf("unknown cache backend %q", s)
	}
}

// Config selects and configures a backend.
type Config struct {
	Backend    Backend
	Dir        string
	TTL        time.Duration
	MemorySize int
	Redis      RedisOptions
	Mongo      MongoOptions
}

// Open creates the configured cache.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendMemory:
		return NewMemoryCache(cfg.MemorySize)
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis cache: address required")
		}
		return NewRedisCache(ctx, cfg.Redis)
	case BackendMongo:
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("mongo cache: uri required")
		}
		return NewMongoCache(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
