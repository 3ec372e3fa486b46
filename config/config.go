// Package config loads pageindex settings.
//
// Loading order, later overrides earlier:
//  1. Defaults
//  2. YAML file (when a path is given)
//  3. Environment variables: PAGEINDEX_*
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/krisalay/recency-cache/eviction"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const envPrefix = "PAGEINDEX_"

// Config is the complete application configuration.
type Config struct {
	Cache    CacheConfig  `yaml:"cache"`
	Engine   EngineConfig `yaml:"engine"`
	Fetch    FetchConfig  `yaml:"fetch"`
	Report   ReportConfig `yaml:"report"`
	LogLevel string       `yaml:"log_level"`
}

// CacheConfig sizes the recency cache.
type CacheConfig struct {
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
	Eviction string        `yaml:"eviction"`

	// Shards > 1 splits keys and capacity over independent engines.
	Shards int `yaml:"shards"`
}

// EngineConfig controls the probe decision.
type EngineConfig struct {
	DedupeInFlight bool     `yaml:"dedupe_in_flight"`
	Schemes        []string `yaml:"schemes"`
}

// FetchConfig controls the HTTP extractor.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	MaxBody   int64         `yaml:"max_body"`
	UserAgent string        `yaml:"user_agent"`
}

// ReportConfig sizes the report queue.
type ReportConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Cache: CacheConfig{
			Capacity: 100,
			Window:   time.Hour,
			Eviction: string(eviction.LRU),
			Shards:   1,
		},
		Engine: EngineConfig{
			Schemes: []string{"http", "https"},
		},
		Fetch: FetchConfig{
			Timeout:   10 * time.Second,
			Retries:   2,
			MaxBody:   2 << 20,
			UserAgent: "pageindex/1",
		},
		Report: ReportConfig{
			QueueSize: 256,
		},
		LogLevel: "info",
	}
}

// Load applies the file at path (if any) and the environment on top of
// Defaults, then validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("CACHE_CAPACITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE_CAPACITY: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Cache.Capacity = n
	}
	if v, ok := get("CACHE_WINDOW"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE_WINDOW: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Cache.Window = d
	}
	if v, ok := get("CACHE_SHARDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE_SHARDS: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Cache.Shards = n
	}
	if v, ok := get("CACHE_EVICTION"); ok {
		cfg.Cache.Eviction = v
	}
	if v, ok := get("DEDUPE_IN_FLIGHT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sDEDUPE_IN_FLIGHT: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Engine.DedupeInFlight = b
	}
	if v, ok := get("SCHEMES"); ok {
		cfg.Engine.Schemes = splitList(v)
	}
	if v, ok := get("FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sFETCH_TIMEOUT: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Fetch.Timeout = d
	}
	if v, ok := get("LOG"); ok {
		cfg.LogLevel = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings the engine cannot run without.
func (c Config) Validate() error {
	var errs []error

	if c.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity))
	}
	if c.Cache.Window <= 0 {
		errs = append(errs, fmt.Errorf("cache.window must be positive, got %s", c.Cache.Window))
	}
	if c.Cache.Shards < 1 {
		errs = append(errs, fmt.Errorf("cache.shards must be at least 1, got %d", c.Cache.Shards))
	}
	if _, err := eviction.ParsePolicyType(c.Cache.Eviction); err != nil {
		errs = append(errs, fmt.Errorf("cache.eviction: %w", err))
	}
	if len(c.Engine.Schemes) == 0 {
		errs = append(errs, errors.New("engine.schemes must not be empty"))
	}
	if c.Fetch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must not be negative, got %s", c.Fetch.Timeout))
	}
	if c.Report.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("report.queue_size must not be negative, got %d", c.Report.QueueSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// EvictionPolicy returns the parsed eviction name. Call after Validate.
func (c Config) EvictionPolicy() eviction.PolicyType {
	t, err := eviction.ParsePolicyType(c.Cache.Eviction)
	if err != nil {
		return eviction.LRU
	}
	return t
}
