package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Bridge struct {
		Runtime        string `yaml:"runtime"`
		Script         string `yaml:"script"`
		Package        string `yaml:"package"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"bridge"`
	Data struct {
		Symbols   []string `yaml:"symbols"`
		Timeframe string   `yaml:"timeframe"`
		Limit     int      `yaml:"limit"`
	} `yaml:"data"`
	Fallback struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"fallback"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ExportCron  string `yaml:"export_cron"`
	} `yaml:"schedule"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// BridgeTimeout returns the configured bridge timeout as a duration.
func (c *Config) BridgeTimeout() time.Duration {
	return time.Duration(c.Bridge.TimeoutSeconds) * time.Second
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; overrides and
// defaults still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BRIDGE_RUNTIME"); v != "" {
		cfg.Bridge.Runtime = v
	}
	if v := os.Getenv("BRIDGE_SCRIPT"); v != "" {
		cfg.Bridge.Script = v
	}
	if v := os.Getenv("BRIDGE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bridge.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Data.Symbols = splitList(v)
	}
	if v := os.Getenv("TIMEFRAME"); v != "" {
		cfg.Data.Timeframe = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Bridge.Runtime == "" {
		cfg.Bridge.Runtime = "node"
	}
	if cfg.Bridge.Script == "" {
		cfg.Bridge.Script = "tools/tvfetch.js"
	}
	if cfg.Bridge.Package == "" {
		cfg.Bridge.Package = "@mathieuc/tradingview"
	}
	if cfg.Bridge.TimeoutSeconds == 0 {
		cfg.Bridge.TimeoutSeconds = 20
	}
	if len(cfg.Data.Symbols) == 0 {
		cfg.Data.Symbols = []string{"SPX500"}
	}
	if cfg.Data.Timeframe == "" {
		cfg.Data.Timeframe = "D"
	}
	if cfg.Data.Limit == 0 {
		cfg.Data.Limit = 200
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/chartbridge.db"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "data/export"
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */15 * * * *"
	}
	if cfg.Schedule.ExportCron == "" {
		cfg.Schedule.ExportCron = "0 0 7 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and sane.
func (c *Config) Validate() error {
	if c.Bridge.Script == "" {
		return fmt.Errorf("bridge.script is required")
	}
	if c.Bridge.TimeoutSeconds <= 0 {
		return fmt.Errorf("bridge.timeout_seconds must be positive")
	}
	if len(c.Data.Symbols) == 0 {
		return fmt.Errorf("data.symbols is required")
	}
	if c.Data.Limit <= 0 {
		return fmt.Errorf("data.limit must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
