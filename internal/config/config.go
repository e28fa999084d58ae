// Package config loads scribe settings from defaults, an optional TOML file,
// SCRIBE_* environment variables, and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/scribe/pkg/cache"
	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/pipeline"
)

const (
	// AppName names the config and cache directories.
	AppName = "scribe"
	// FileName is the config file name inside Dir().
	FileName = "config.toml"
	// EnvPrefix prefixes environment overrides, e.g. SCRIBE_RENDER_TABS.
	EnvPrefix = "SCRIBE"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Backends lists the valid values of cache.backend.
var Backends = []string{BackendFile, BackendMemory, BackendRedis, BackendNone}

// Config is the merged configuration.
type Config struct {
	Render RenderConfig `mapstructure:"render" toml:"render"`
	Cache  CacheConfig  `mapstructure:"cache" toml:"cache"`
	Redis  RedisConfig  `mapstructure:"redis" toml:"redis"`
	Server ServerConfig `mapstructure:"server" toml:"server"`
}

// RenderConfig holds text output settings.
type RenderConfig struct {
	IndentUnit      string `mapstructure:"indent_unit" toml:"indent_unit"`
	IndentWidth     int    `mapstructure:"indent_width" toml:"indent_width"`
	Tabs            bool   `mapstructure:"tabs" toml:"tabs"`
	MaxDepth        int    `mapstructure:"max_depth" toml:"max_depth"`
	TrailingNewline bool   `mapstructure:"trailing_newline" toml:"trailing_newline"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend" toml:"backend"`
	Dir           string        `mapstructure:"dir" toml:"dir"`
	TTL           time.Duration `mapstructure:"ttl" toml:"ttl"` // 0 keeps per-type defaults
	MemoryEntries int           `mapstructure:"memory_entries" toml:"memory_entries"`
	Prefix        string        `mapstructure:"prefix" toml:"prefix"`
}

// RedisConfig is used when cache.backend is "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr" toml:"addr"`
	Password string `mapstructure:"password" toml:"password"`
	DB       int    `mapstructure:"db" toml:"db"`
}

// ServerConfig configures "scribe serve".
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" toml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" toml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	dir, _ := CacheDir()
	return Config{
		Render: RenderConfig{
			IndentWidth:     1,
			MaxDepth:        pipeline.DefaultMaxDepth,
			TrailingNewline: true,
		},
		Cache: CacheConfig{
			Backend:       BackendFile,
			Dir:           dir,
			MemoryEntries: cache.DefaultMemoryEntries,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file. It must exist when set.
	File string
	// Dir overrides Dir() when looking for the default config file.
	Dir string
	// Flags are bound by config key, e.g. {"render.tabs": "tabs"}.
	// Only flags the user changed take precedence over file and env.
	Flags    *pflag.FlagSet
	Bindings map[string]string
}

// Load merges all sources and validates the result. It returns the config
// and the path of the file that was read, or "" when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolveFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
	}

	if opts.Flags != nil {
		for key, name := range opts.Bindings {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, "", fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("render.indent_unit", d.Render.IndentUnit)
	v.SetDefault("render.indent_width", d.Render.IndentWidth)
	v.SetDefault("render.tabs", d.Render.Tabs)
	v.SetDefault("render.max_depth", d.Render.MaxDepth)
	v.SetDefault("render.trailing_newline", d.Render.TrailingNewline)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.memory_entries", d.Cache.MemoryEntries)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
}

func resolveFile(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", opts.File)
		}
		return opts.File, nil
	}

	dir := opts.Dir
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return "", nil
		}
		dir = d
	}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

// Validate checks value ranges and the cache backend name.
func (c *Config) Validate() error {
	if c.Render.IndentWidth < 0 {
		return errors.New(errors.ErrCodeInvalidIndent, "render.indent_width must be non-negative, got %d", c.Render.IndentWidth)
	}
	if c.Render.IndentWidth == 0 && c.Render.IndentUnit == "" && !c.Render.Tabs {
		return errors.New(errors.ErrCodeInvalidIndent, "render.indent_width must be at least 1 unless indent_unit or tabs is set")
	}
	if c.Render.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.max_depth must be non-negative, got %d", c.Render.MaxDepth)
	}
	if !slices.Contains(Backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be one of %s, got %q",
			strings.Join(Backends, ", "), c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must be non-negative")
	}
	return nil
}

// PipelineOptions converts the render settings to pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		IndentUnit:      c.Render.IndentUnit,
		IndentWidth:     c.Render.IndentWidth,
		Tabs:            c.Render.Tabs,
		MaxDepth:        c.Render.MaxDepth,
		TrailingNewline: c.Render.TrailingNewline,
	}
}

// Dir returns the config directory ($XDG_CONFIG_HOME/scribe or ~/.config/scribe).
func Dir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// CacheDir returns the cache directory ($XDG_CACHE_HOME/scribe or ~/.cache/scribe).
func CacheDir() (string, error) {
	if d := os.Getenv("XDG_CACHE_HOME"); d != "" {
		return filepath.Join(d, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
