package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/syncdraft/internal/flagx"
	"github.com/dmitrijs2005/syncdraft/internal/timex"
)

// fileConfig is a DTO used exclusively for config file decoding. It relies on
// timex.Duration so intervals can be given as strings like "1.2s" or as
// integer nanoseconds. Zero values leave the runtime Config unchanged.
type fileConfig struct {
	ServerURL           string         `json:"server_url" yaml:"server_url"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	AutosaveDelay       timex.Duration `json:"autosave_delay" yaml:"autosave_delay"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	AITokenDelay        timex.Duration `json:"ai_token_delay" yaml:"ai_token_delay"`
	AITokenJitter       timex.Duration `json:"ai_token_jitter" yaml:"ai_token_jitter"`
	AIRequestsPerSecond float64        `json:"ai_requests_per_second" yaml:"ai_requests_per_second"`
	AIBurst             int            `json:"ai_burst" yaml:"ai_burst"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays Config with the file named by -c or -config. Files
// ending in .yaml or .yml are read as YAML, anything else as JSON. Read or
// decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc fileConfig) apply(cfg *Config) {
	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.AutosaveDelay.Duration > 0 {
		cfg.AutosaveDelay = fc.AutosaveDelay.Duration
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.AITokenDelay.Duration > 0 {
		cfg.AITokenDelay = fc.AITokenDelay.Duration
	}
	if fc.AITokenJitter.Duration > 0 {
		cfg.AITokenJitter = fc.AITokenJitter.Duration
	}
	if fc.AIRequestsPerSecond > 0 {
		cfg.AIRequestsPerSecond = fc.AIRequestsPerSecond
	}
	if fc.AIBurst > 0 {
		cfg.AIBurst = fc.AIBurst
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
