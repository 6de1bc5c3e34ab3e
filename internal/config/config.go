// Package config loads and saves meetcost preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/meetcost/internal/pipeline"
)

// Config holds all meetcost configuration.
type Config struct {
	General       GeneralConfig           `toml:"general"`
	Appearance    AppearanceConfig        `toml:"appearance"`
	Serve         ServeConfig             `toml:"serve"`
	RolePresets   map[string]float64      `toml:"presets,omitempty"`
	RealityChecks []pipeline.RealityCheck `toml:"reality_checks,omitempty"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	AnnualHours    float64 `toml:"annual_hours"`
	DefaultRate    float64 `toml:"default_rate"`
	CurrencySymbol string  `toml:"currency_symbol"`
	StateDB        string  `toml:"state_db,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServeConfig holds settings for the local HTTP feed.
type ServeConfig struct {
	Addr              string   `toml:"addr"`
	EventsBuffer      int      `toml:"events_buffer"`
	AllowedOrigins    []string `toml:"allowed_origins,omitempty"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
}

// Environment overrides.
const (
	EnvTheme       = "MEETCOST_THEME"
	EnvDB          = "MEETCOST_DB"
	EnvAnnualHours = "MEETCOST_ANNUAL_HOURS"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			AnnualHours:    pipeline.DefaultAnnualHours,
			DefaultRate:    50,
			CurrencySymbol: "$",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Serve: ServeConfig{
			Addr:              "127.0.0.1:8787",
			EventsBuffer:      200,
			RequestsPerSecond: 5,
			Burst:             10,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "meetcost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "meetcost")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads .env (if present) and the config file, returning defaults if
// the file doesn't exist. Environment variables win over file values.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.RealityChecks = pipeline.SortRealityChecks(cfg.RealityChecks)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Appearance.Theme = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.General.StateDB = v
	}
	if v := os.Getenv(EnvAnnualHours); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil || hours <= 0 {
			return fmt.Errorf("%s must be a positive number, got %q", EnvAnnualHours, v)
		}
		cfg.General.AnnualHours = hours
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// RealityCheckTable returns the configured reality-check table, or the
// built-in one when none is configured.
func (c Config) RealityCheckTable() []pipeline.RealityCheck {
	if len(c.RealityChecks) == 0 {
		return pipeline.DefaultRealityChecks
	}
	return pipeline.SortRealityChecks(c.RealityChecks)
}

// AnnualHours returns the hourly-to-yearly multiplier, never zero.
func (c Config) AnnualHours() float64 {
	if c.General.AnnualHours <= 0 {
		return pipeline.DefaultAnnualHours
	}
	return c.General.AnnualHours
}
