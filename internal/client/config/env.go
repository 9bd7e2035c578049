package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SYNCDRAFT_"

// parseEnv overlays Config with SYNCDRAFT_* variables. A .env file in the
// working directory is loaded first; variables already set in the process
// environment win over it.
func parseEnv(cfg *Config) {
	_ = godotenv.Load(".env")
	applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := get("DATABASE_PATH"); ok {
		cfg.DatabasePath = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"AUTOSAVE_DELAY", &cfg.AutosaveDelay},
		{"REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"AI_TOKEN_DELAY", &cfg.AITokenDelay},
		{"AI_TOKEN_JITTER", &cfg.AITokenJitter},
	}
	for _, d := range durations {
		if v, ok := get(d.name); ok {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", envPrefix, d.name, err))
			}
			*d.dst = parsed
		}
	}

	if v, ok := get("AI_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("%sAI_RPS: %w", envPrefix, err))
		}
		cfg.AIRequestsPerSecond = rps
	}
	if v, ok := get("AI_BURST"); ok {
		burst, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%sAI_BURST: %w", envPrefix, err))
		}
		cfg.AIBurst = burst
	}
}
