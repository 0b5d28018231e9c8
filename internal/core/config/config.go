package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level dashboard configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Data    DataConfig    `koanf:"data"`
	Cache   CacheConfig   `koanf:"cache"`
	Warming WarmingConfig `koanf:"warming"`
	Stats   StatsConfig   `koanf:"stats"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	Host            string `koanf:"host"`
	Mode            string `koanf:"mode"`             // debug | release
	SoftwareVersion string `koanf:"software_version"` // sent as Software-Version when set
}

type LogConfig struct {
	Level string `koanf:"level"` // debug | info | warn | error
}

// DataConfig locates the measurement files and describes their layout.
type DataConfig struct {
	PendingDir        string `koanf:"pending_dir"`
	ArchiveDir        string `koanf:"archive_dir"`
	MeasurementPrefix string `koanf:"measurement_prefix"`
	MetaPrefix        string `koanf:"meta_prefix"`
	FileLimit         int    `koanf:"file_limit"`
	RoundTo           int    `koanf:"round_to"` // negative disables rounding
}

type CacheConfig struct {
	PayloadCapacity int    `koanf:"payload_capacity"`
	ListingCapacity int    `koanf:"listing_capacity"`
	ListingTTL      string `koanf:"listing_ttl"` // parsed and validated on startup
}

type WarmingConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Interval string `koanf:"interval"` // parsed and validated on startup
}

type StatsConfig struct {
	Path string `koanf:"path"` // stat definitions file; empty uses the built-in set
}

// Dirs returns the configured data directories, highest priority first.
func (c DataConfig) Dirs() []string {
	var dirs []string
	if c.PendingDir != "" {
		dirs = append(dirs, c.PendingDir)
	}
	if c.ArchiveDir != "" {
		dirs = append(dirs, c.ArchiveDir)
	}
	return dirs
}

// RoundPlaces returns the rounding precision, or nil when rounding is disabled.
func (c DataConfig) RoundPlaces() *int32 {
	if c.RoundTo < 0 {
		return nil
	}
	places := int32(c.RoundTo)
	return &places
}

func (c CacheConfig) TTL() time.Duration {
	d, _ := time.ParseDuration(c.ListingTTL)
	return d
}

func (c WarmingConfig) EffectiveInterval() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (must be debug, info, warn or error)", c.Log.Level)
	}

	if len(c.Data.Dirs()) == 0 {
		return fmt.Errorf("at least one of data.pending_dir and data.archive_dir is required")
	}
	if strings.TrimSpace(c.Data.MetaPrefix) == "" {
		return fmt.Errorf("data.meta_prefix is required")
	}
	if c.Data.FileLimit <= 0 {
		return fmt.Errorf("data.file_limit must be > 0")
	}

	// A payload cache smaller than the scan budget evicts entries before
	// the next scan can reuse them.
	if c.Cache.PayloadCapacity < c.Data.FileLimit {
		return fmt.Errorf("cache.payload_capacity (%d) must be >= data.file_limit (%d)",
			c.Cache.PayloadCapacity, c.Data.FileLimit)
	}
	if c.Cache.ListingCapacity <= 0 {
		return fmt.Errorf("cache.listing_capacity must be > 0")
	}
	ttl, err := time.ParseDuration(c.Cache.ListingTTL)
	if err != nil {
		return fmt.Errorf("invalid cache.listing_ttl %q: %w", c.Cache.ListingTTL, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("cache.listing_ttl must be > 0")
	}

	interval, err := time.ParseDuration(c.Warming.Interval)
	if err != nil {
		return fmt.Errorf("invalid warming.interval %q: %w", c.Warming.Interval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("warming.interval must be > 0")
	}

	return nil
}

// Load parses config from defaults, an optional file and the environment, then validates it.
// DASHBOARD_DATA__PENDING_DIR=/var/nm overrides data.pending_dir.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "127.0.0.1",
		"server.mode":             "release",
		"server.software_version": "",
		"log.level":               "info",
		"data.pending_dir":        "",
		"data.archive_dir":        "",
		"data.measurement_prefix": "Measurements",
		"data.meta_prefix":        "Meta",
		"data.file_limit":         5000,
		"data.round_to":           1,
		"cache.payload_capacity":  5000,
		"cache.listing_capacity":  100,
		"cache.listing_ttl":       "24h",
		"warming.enabled":         true,
		"warming.interval":        "4h",
		"stats.path":              "",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("DASHBOARD_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "DASHBOARD_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
