// Package config loads dailycard's settings from ~/.dailycard/config.yaml,
// DAILYCARD_* environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// DAILYCARD_ENTITLEMENT_PREMIUM=true.
const EnvPrefix = "DAILYCARD"

// Config is the persistent application configuration
type Config struct {
	Limits      LimitsConfig      `mapstructure:"limits"`
	Store       StoreConfig       `mapstructure:"store"`
	Pool        PoolConfig        `mapstructure:"pool"`
	Widget      WidgetConfig      `mapstructure:"widget"`
	UI          UIConfig          `mapstructure:"ui"`
	Entitlement EntitlementConfig `mapstructure:"entitlement"`
	Log         LogConfig         `mapstructure:"log"`

	v    *viper.Viper
	path string
}

// LimitsConfig holds plan limits and pager tuning
type LimitsConfig struct {
	FreeDailyViews      int     `mapstructure:"free_daily_views"`
	PremiumDailyViews   int     `mapstructure:"premium_daily_views"`
	FreeCollection      int     `mapstructure:"free_collection"`
	FreeScrollAllowance int     `mapstructure:"free_scroll_allowance"`
	FreeCap             int     `mapstructure:"free_cap"`
	PremiumCap          int     `mapstructure:"premium_cap"`
	DefaultFont         string  `mapstructure:"default_font"`
	ThresholdRatio      float64 `mapstructure:"threshold_ratio"`
	DeadZone            float64 `mapstructure:"dead_zone"`
}

// StoreConfig selects the key/value backend
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "sqlite", "badger" or "memory"
	Path    string `mapstructure:"path"`
}

// PoolConfig lists where content comes from. Sources are tried in order:
// file, url, rss, gemini; the built-in list is the fallback.
type PoolConfig struct {
	File    string       `mapstructure:"file"`
	URL     string       `mapstructure:"url"`
	RSS     string       `mapstructure:"rss"`
	Gemini  GeminiConfig `mapstructure:"gemini"`
	Timeout int          `mapstructure:"timeout_seconds"`
	// PerMinute throttles network sources.
	PerMinute int `mapstructure:"per_minute"`
}

// GeminiConfig for the generated-content source
type GeminiConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Count   int    `mapstructure:"count"`
	Topic   string `mapstructure:"topic"`
}

// WidgetConfig for the secondary display server
type WidgetConfig struct {
	Listen string `mapstructure:"listen"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme string `mapstructure:"theme"`
	Mouse bool   `mapstructure:"mouse"`
}

// EntitlementConfig is the local stand-in for the commerce collaborator.
type EntitlementConfig struct {
	Premium bool `mapstructure:"premium"`
}

// LogConfig controls the file logger
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			FreeDailyViews:      3,
			PremiumDailyViews:   20,
			FreeCollection:      3,
			FreeScrollAllowance: 3,
			FreeCap:             20,
			PremiumCap:          20,
			DefaultFont:         "serif",
			ThresholdRatio:      0.25,
			DeadZone:            20,
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Pool: PoolConfig{
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
				Count: 20,
				Topic: "courage, patience and curiosity",
			},
			Timeout:   30,
			PerMinute: 6,
		},
		Widget: WidgetConfig{
			Listen: "127.0.0.1:8787",
		},
		UI: UIConfig{
			Theme: "dark",
			Mouse: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns ~/.dailycard
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".dailycard"), nil
}

// settings flattens c into viper keys. It is the single list of known keys,
// used for defaults and for Save.
func (c *Config) settings() map[string]any {
	return map[string]any{
		"limits.free_daily_views":      c.Limits.FreeDailyViews,
		"limits.premium_daily_views":   c.Limits.PremiumDailyViews,
		"limits.free_collection":       c.Limits.FreeCollection,
		"limits.free_scroll_allowance": c.Limits.FreeScrollAllowance,
		"limits.free_cap":              c.Limits.FreeCap,
		"limits.premium_cap":           c.Limits.PremiumCap,
		"limits.default_font":          c.Limits.DefaultFont,
		"limits.threshold_ratio":       c.Limits.ThresholdRatio,
		"limits.dead_zone":             c.Limits.DeadZone,
		"store.backend":                c.Store.Backend,
		"store.path":                   c.Store.Path,
		"pool.file":                    c.Pool.File,
		"pool.url":                     c.Pool.URL,
		"pool.rss":                     c.Pool.RSS,
		"pool.timeout_seconds":         c.Pool.Timeout,
		"pool.per_minute":              c.Pool.PerMinute,
		"pool.gemini.enabled":          c.Pool.Gemini.Enabled,
		"pool.gemini.api_key":          c.Pool.Gemini.APIKey,
		"pool.gemini.model":            c.Pool.Gemini.Model,
		"pool.gemini.count":            c.Pool.Gemini.Count,
		"pool.gemini.topic":            c.Pool.Gemini.Topic,
		"widget.listen":                c.Widget.Listen,
		"ui.theme":                     c.UI.Theme,
		"ui.mouse":                     c.UI.Mouse,
		"entitlement.premium":          c.Entitlement.Premium,
		"log.level":                    c.Log.Level,
		"log.dir":                      c.Log.Dir,
	}
}

// Load reads config from path, or from ~/.dailycard/config.yaml when path
// is empty. A missing file yields defaults plus environment overrides.
func Load(path string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	// .env never overrides variables already set
	_ = godotenv.Load(filepath.Join(dir, ".env"))
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range DefaultConfig().settings() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{v: v, path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.autoPopulateFromEnv()
	cfg.fill(dir)
	return cfg, nil
}

// autoPopulateFromEnv fills the Gemini key from the provider's usual
// variables when the config does not set one.
func (c *Config) autoPopulateFromEnv() {
	if c.Pool.Gemini.APIKey != "" {
		return
	}
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			c.Pool.Gemini.APIKey = key
			return
		}
	}
}

// fill derives paths left empty.
func (c *Config) fill(dir string) {
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case "badger":
			c.Store.Path = filepath.Join(dir, "badger")
		case "memory":
		default:
			c.Store.Path = filepath.Join(dir, "dailycard.db")
		}
	}
	if c.Log.Dir == "" {
		c.Log.Dir = filepath.Join(dir, "logs")
	}
}

// Path returns the config file location.
func (c *Config) Path() string {
	return c.path
}

// Save writes config to disk
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, "config.yaml")
	}
	if c.v == nil {
		c.v = viper.New()
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	for key, value := range c.settings() {
		c.v.Set(key, value)
	}
	// restrictive permissions for the API key
	if err := c.v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("write config %s: %w", c.path, err)
	}
	return os.Chmod(c.path, 0600)
}

// WatchPremium calls fn with the entitlement.premium value each time the
// config file changes on disk.
func (c *Config) WatchPremium(fn func(bool)) {
	if c.v == nil {
		return
	}
	c.v.OnConfigChange(func(fsnotify.Event) {
		fn(c.v.GetBool("entitlement.premium"))
	})
	c.v.WatchConfig()
}
