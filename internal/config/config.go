package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level focusledger configuration.
type Config struct {
	DataDir         string `mapstructure:"data_dir"`
	Timezone        string `mapstructure:"timezone"`
	TemplateProject string `mapstructure:"template_project"`
	AITracking      bool   `mapstructure:"ai_tracking"`
	Timing          Timing `mapstructure:"timing"`
}

// Timing defines the state-machine cadences and thresholds.
type Timing struct {
	Debounce      time.Duration `mapstructure:"debounce"`
	Grace         time.Duration `mapstructure:"grace"`
	IdleThreshold time.Duration `mapstructure:"idle_threshold"`
	AIIdle        time.Duration `mapstructure:"ai_idle"`
	Tick          time.Duration `mapstructure:"tick"`
	Heartbeat     time.Duration `mapstructure:"heartbeat"`
	BranchPoll    time.Duration `mapstructure:"branch_poll"`
	SuspendFactor int64         `mapstructure:"suspend_factor"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("data_dir", DefaultConfigDir)
	v.SetDefault("timezone", "")
	v.SetDefault("template_project", DefaultTemplateProject)
	v.SetDefault("ai_tracking", true)
	v.SetDefault("timing.debounce", DefaultTiming.Debounce)
	v.SetDefault("timing.grace", DefaultTiming.Grace)
	v.SetDefault("timing.idle_threshold", DefaultTiming.IdleThreshold)
	v.SetDefault("timing.ai_idle", DefaultTiming.AIIdle)
	v.SetDefault("timing.tick", DefaultTiming.Tick)
	v.SetDefault("timing.heartbeat", DefaultTiming.Heartbeat)
	v.SetDefault("timing.branch_poll", DefaultTiming.BranchPoll)
	v.SetDefault("timing.suspend_factor", DefaultTiming.SuspendFactor)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error for problems other than file not found.
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.DataDir = expandPath(cfg.DataDir)
	return &cfg, nil
}

// Location resolves the configured time zone, falling back to the process
// zone when unset or unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DBPath returns the full path to the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
