package config

import (
	"time"

	"github.com/dmitrijs2005/syncdraft/internal/client/autosave"
	"github.com/dmitrijs2005/syncdraft/internal/client/client"
	"github.com/dmitrijs2005/syncdraft/internal/client/stream"
)

// Config holds runtime settings for the SyncDraft CLI.
//
// Fields:
//   - ServerURL: base URL of the blog API.
//   - DatabasePath: SQLite file holding the post mirror and the session.
//   - AutosaveDelay: idle window after the last edit before it is saved.
//   - RequestTimeout: upper bound for a single API request.
//   - AITokenDelay, AITokenJitter: pacing of the revealed AI answer.
//   - AIRequestsPerSecond, AIBurst: client-side AI request limit (0 disables it).
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL           string
	DatabasePath        string
	AutosaveDelay       time.Duration
	RequestTimeout      time.Duration
	AITokenDelay        time.Duration
	AITokenJitter       time.Duration
	AIRequestsPerSecond float64
	AIBurst             int
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DatabasePath = "syncdraft.db"
	c.AutosaveDelay = autosave.DefaultDelay
	c.RequestTimeout = client.DefaultTimeout
	c.AITokenDelay = stream.DefaultMinDelay
	c.AITokenJitter = stream.DefaultJitter
	c.AIRequestsPerSecond = 1
	c.AIBurst = 3
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including a .env file), a config file (if given) and
// command-line flags. Later sources take precedence over earlier ones.
// Malformed values panic.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
