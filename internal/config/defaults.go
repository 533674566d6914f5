// Package config provides configuration loading and defaults for focusledger.
package config

import "time"

// DefaultConfigDir is the default location for focusledger configuration and
// data.
const DefaultConfigDir = "~/.config/focusledger"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "focusledger.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultTemplateProject is the scratch-project name excluded from
// per-project stats.
const DefaultTemplateProject = "scratch"

// DefaultTiming holds the default state-machine cadences and thresholds.
var DefaultTiming = Timing{
	Debounce:      3 * time.Second,
	Grace:         2 * time.Minute,
	IdleThreshold: 60 * time.Second,
	AIIdle:        15 * time.Second,
	Tick:          time.Second,
	Heartbeat:     5 * time.Second,
	BranchPoll:    5 * time.Second,
	SuspendFactor: 10,
}
