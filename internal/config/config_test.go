package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default log config
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Log.MaxSizeMB != 10 {
		t.Errorf("Log.MaxSizeMB = %d, want 10", cfg.Log.MaxSizeMB)
	}
	if cfg.Log.MaxBackups != 3 {
		t.Errorf("Log.MaxBackups = %d, want 3", cfg.Log.MaxBackups)
	}

	// Verify default UI config
	if cfg.UI.StatusIntervalMs != 1000 {
		t.Errorf("UI.StatusIntervalMs = %d, want 1000", cfg.UI.StatusIntervalMs)
	}

	// Verify default playground config
	if cfg.Playground.Session != "default" {
		t.Errorf("Playground.Session = %q, want %q", cfg.Playground.Session, "default")
	}

	// Data and history dirs resolve lazily
	if cfg.Data.Dir != "" {
		t.Errorf("Data.Dir = %q, want empty", cfg.Data.Dir)
	}
	if cfg.History.Dir != "" {
		t.Errorf("History.Dir = %q, want empty", cfg.History.Dir)
	}
}

func TestStatusInterval(t *testing.T) {
	cfg := Default()

	if got := cfg.UI.StatusInterval(); got != time.Second {
		t.Errorf("StatusInterval() = %v, want %v", got, time.Second)
	}

	cfg.UI.StatusIntervalMs = 250
	if got := cfg.UI.StatusInterval(); got != 250*time.Millisecond {
		t.Errorf("StatusInterval() = %v, want %v", got, 250*time.Millisecond)
	}
}

func TestResolveDataDir(t *testing.T) {
	t.Run("explicit dir wins", func(t *testing.T) {
		cfg := Default()
		cfg.Data.Dir = "/tmp/gatehouse-data"

		if got := cfg.ResolveDataDir(); got != "/tmp/gatehouse-data" {
			t.Errorf("ResolveDataDir() = %q, want %q", got, "/tmp/gatehouse-data")
		}
	})

	t.Run("empty falls back to xdg", func(t *testing.T) {
		cfg := Default()

		got := cfg.ResolveDataDir()
		if got == "" {
			t.Fatal("ResolveDataDir() returned empty string")
		}
		if filepath.Base(got) != "gatehouse" {
			t.Errorf("ResolveDataDir() = %q, want a gatehouse directory", got)
		}
	})
}

func TestResolveHistoryDir(t *testing.T) {
	t.Run("explicit dir wins", func(t *testing.T) {
		cfg := Default()
		cfg.History.Dir = "/tmp/gatehouse-sessions"

		if got := cfg.ResolveHistoryDir(); got != "/tmp/gatehouse-sessions" {
			t.Errorf("ResolveHistoryDir() = %q, want %q", got, "/tmp/gatehouse-sessions")
		}
	})

	t.Run("derives from data dir", func(t *testing.T) {
		cfg := Default()
		cfg.Data.Dir = "/tmp/gatehouse-data"

		want := filepath.Join("/tmp/gatehouse-data", "sessions")
		if got := cfg.ResolveHistoryDir(); got != want {
			t.Errorf("ResolveHistoryDir() = %q, want %q", got, want)
		}
	})
}

func TestSetDefaultsAndLoad(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.UI.StatusIntervalMs != 1000 {
		t.Errorf("UI.StatusIntervalMs = %d, want 1000", cfg.UI.StatusIntervalMs)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()
	viper.Set("log.level", "debug")
	viper.Set("ui.status_interval_ms", 500)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.UI.StatusIntervalMs != 500 {
		t.Errorf("UI.StatusIntervalMs = %d, want 500", cfg.UI.StatusIntervalMs)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()
	viper.AutomaticEnv()
	viper.SetEnvPrefix("GATEHOUSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	t.Setenv("GATEHOUSE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q from environment", cfg.Log.Level, "debug")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()
	viper.Set("log.level", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail for invalid log level")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Fatal("ConfigDir() returned empty string")
	}
	if filepath.Base(dir) != "gatehouse" {
		t.Errorf("ConfigDir() = %q, want a gatehouse directory", dir)
	}
}

func TestConfigFile(t *testing.T) {
	file := ConfigFile()
	if !strings.HasSuffix(file, filepath.Join("gatehouse", "config.yaml")) {
		t.Errorf("ConfigFile() = %q, want .../gatehouse/config.yaml", file)
	}
}
