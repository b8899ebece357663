package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/pondera/pkg/cache"
	"github.com/matzehuels/pondera/pkg/calculator"
	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/flow"
)

func noEnv(string) string { return "" }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Mode() != flow.Strict {
		t.Errorf("Mode() = %v, want strict", cfg.Mode())
	}
	if cfg.Selection() != calculator.ByContribution {
		t.Errorf("Selection() = %v, want contribution", cfg.Selection())
	}
	cc, err := cfg.CacheConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cc.Backend != cache.BackendFile || cc.TTL != 24*time.Hour {
		t.Errorf("CacheConfig() = %+v, want file backend with 24h ttl", cc)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pondera.toml", `
[data]
path = "https://example.org/ponderaciones.csv"
delimiter = ";"
split_branches = ["C+SD", "SyJ+AyH"]

[server]
addr = ":9000"

[render]
mode = "inclusive"
density_cap = 5

[calculator]
selection = "input-order"

[cache]
backend = "memory"
memory_size = 64
ttl = "1h"
`)
	cfg, err := load(path, "", noEnv)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Data.Path != "https://example.org/ponderaciones.csv" {
		t.Errorf("Data.Path = %q", cfg.Data.Path)
	}
	opts := cfg.DataOptions()
	if opts.Delimiter != ';' || len(opts.SplitBranches) != 2 {
		t.Errorf("DataOptions() = %+v", opts)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Mode() != flow.Inclusive || cfg.Render.DensityCap != 5 {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Selection() != calculator.InputOrder {
		t.Errorf("Selection() = %v, want input-order", cfg.Selection())
	}
	cc, _ := cfg.CacheConfig()
	if cc.Backend != cache.BackendMemory || cc.MemorySize != 64 || cc.TTL != time.Hour {
		t.Errorf("CacheConfig() = %+v", cc)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.toml"), "", noEnv)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.toml", "[render]\nmdoe = \"strict\"\n")
	_, err := load(path, "", noEnv)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.toml", "[server]\naddr = \":1\"\n")
	envFile := writeFile(t, dir, ".env", "PONDERA_ADDR=:2\nPONDERA_DATA=from-dotenv.csv\n")

	env := map[string]string{EnvAddr: ":3", EnvCache: "redis", EnvRedisAddr: "cache:6379"}
	cfg, err := load(path, envFile, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Server.Addr != ":3" {
		t.Errorf("Server.Addr = %q, want process env :3", cfg.Server.Addr)
	}
	if cfg.Data.Path != "from-dotenv.csv" {
		t.Errorf("Data.Path = %q, want value from .env", cfg.Data.Path)
	}
	cc, _ := cfg.CacheConfig()
	if cc.Backend != cache.BackendRedis || cc.Redis.Addr != "cache:6379" {
		t.Errorf("CacheConfig() = %+v", cc)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty path", func(c *Config) { c.Data.Path = " " }},
		{"delimiter", func(c *Config) { c.Data.Delimiter = ";;" }},
		{"mode", func(c *Config) { c.Render.Mode = "loose" }},
		{"cap", func(c *Config) { c.Render.DensityCap = -1 }},
		{"selection", func(c *Config) { c.Calculator.Selection = "best" }},
		{"backend", func(c *Config) { c.Cache.Backend = "etcd" }},
		{"ttl", func(c *Config) { c.Cache.TTL = "soon" }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = "-1h" }},
		{"memory size", func(c *Config) { c.Cache.MemorySize = -3 }},
		{"redis addr", func(c *Config) { c.Cache.Backend = "redis" }},
		{"mongo uri", func(c *Config) { c.Cache.Backend = "mongo" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
