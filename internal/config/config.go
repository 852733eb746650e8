package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config represents the complete gatehouse configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Data       DataConfig       `mapstructure:"data"`
	History    HistoryConfig    `mapstructure:"history"`
	UI         UIConfig         `mapstructure:"ui"`
	Playground PlaygroundConfig `mapstructure:"playground"`
}

// LogConfig controls structured logging behavior
type LogConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Format selects the log handler: "json" (default) or "text"
	Format string `mapstructure:"format"`
	// MaxSizeMB rotates the log file once it exceeds this size.
	// A value of 0 disables rotation.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep
	MaxBackups int `mapstructure:"max_backups"`
}

// DataConfig controls where gatehouse keeps its state
type DataConfig struct {
	// Dir is the data directory. When empty, the XDG data directory
	// is used (typically ~/.local/share/gatehouse).
	Dir string `mapstructure:"dir"`
}

// HistoryConfig controls session history persistence
type HistoryConfig struct {
	// Dir is where session history files live. When empty, it defaults
	// to {data.dir}/sessions.
	Dir string `mapstructure:"dir"`
}

// UIConfig controls the terminal surface
type UIConfig struct {
	// StatusIntervalMs is the refresh period for periodic status
	// fragments such as the uptime display, in milliseconds.
	StatusIntervalMs int `mapstructure:"status_interval_ms"`
}

// PlaygroundConfig controls the interactive playground command
type PlaygroundConfig struct {
	// Session is the name of the session the playground opens or
	// resumes on start.
	Session string `mapstructure:"session"`
}

// StatusInterval returns the status refresh period as a time.Duration
func (c *UIConfig) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalMs) * time.Millisecond
}

// Default returns a Config populated with default values
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Data: DataConfig{
			Dir: "",
		},
		History: HistoryConfig{
			Dir: "",
		},
		UI: UIConfig{
			StatusIntervalMs: 1000,
		},
		Playground: PlaygroundConfig{
			Session: "default",
		},
	}
}

// ResolveDataDir returns the effective data directory, falling back to
// the XDG data home when unset.
func (c *Config) ResolveDataDir() string {
	if c.Data.Dir != "" {
		return c.Data.Dir
	}
	return filepath.Join(xdg.DataHome, "gatehouse")
}

// ResolveHistoryDir returns the effective session history directory,
// falling back to {data}/sessions when unset.
func (c *Config) ResolveHistoryDir() string {
	if c.History.Dir != "" {
		return c.History.Dir
	}
	return filepath.Join(c.ResolveDataDir(), "sessions")
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Log defaults
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.format", defaults.Log.Format)
	viper.SetDefault("log.max_size_mb", defaults.Log.MaxSizeMB)
	viper.SetDefault("log.max_backups", defaults.Log.MaxBackups)

	// Data defaults
	viper.SetDefault("data.dir", defaults.Data.Dir)

	// History defaults
	viper.SetDefault("history.dir", defaults.History.Dir)

	// UI defaults
	viper.SetDefault("ui.status_interval_ms", defaults.UI.StatusIntervalMs)

	// Playground defaults
	viper.SetDefault("playground.session", defaults.Playground.Session)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "gatehouse")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
