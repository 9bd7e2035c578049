package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	applyEnv(cfg, lookupFrom(map[string]string{
		"SYNCDRAFT_SERVER_URL":      "https://blog.example.com",
		"SYNCDRAFT_AUTOSAVE_DELAY":  "2s",
		"SYNCDRAFT_REQUEST_TIMEOUT": "5s",
		"SYNCDRAFT_AI_TOKEN_JITTER": "0s",
		"SYNCDRAFT_AI_RPS":          "0.5",
		"SYNCDRAFT_AI_BURST":        "2",
		"SYNCDRAFT_LOG_LEVEL":       " ",
		"OTHER_VAR":                 "ignored",
	}))

	want := &Config{}
	want.LoadDefaults()
	want.ServerURL = "https://blog.example.com"
	want.AutosaveDelay = 2 * time.Second
	want.RequestTimeout = 5 * time.Second
	want.AITokenJitter = 0
	want.AIRequestsPerSecond = 0.5
	want.AIBurst = 2

	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestApplyEnv_MalformedPanics(t *testing.T) {
	tests := []map[string]string{
		{"SYNCDRAFT_AUTOSAVE_DELAY": "soon"},
		{"SYNCDRAFT_AI_RPS": "fast"},
		{"SYNCDRAFT_AI_BURST": "1.5"},
	}
	for _, env := range tests {
		require.Panics(t, func() { applyEnv(&Config{}, lookupFrom(env)) })
	}
}

func TestParseEnv_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SYNCDRAFT_DATABASE_PATH=dotenv.db\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SYNCDRAFT_DATABASE_PATH") })

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "dotenv.db", cfg.DatabasePath)
}
