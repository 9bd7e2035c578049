// Package config loads runtime configuration for the SyncDraft CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with SYNCDRAFT_, optionally from a .env file.
//  3. Optional config file selected via -c or -config; JSON, or YAML for
//     .yaml/.yml files.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the blog API
//	-d string   local database file
//	-s value    autosave delay in milliseconds
//	-l string   log level
//
// Environment
//
//	SYNCDRAFT_SERVER_URL, SYNCDRAFT_DATABASE_PATH, SYNCDRAFT_LOG_LEVEL,
//	SYNCDRAFT_AUTOSAVE_DELAY, SYNCDRAFT_REQUEST_TIMEOUT,
//	SYNCDRAFT_AI_TOKEN_DELAY, SYNCDRAFT_AI_TOKEN_JITTER (Go durations),
//	SYNCDRAFT_AI_RPS, SYNCDRAFT_AI_BURST
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "1.2s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://blog.example.com",
//	  "autosave_delay": "1.2s",
//	  "ai_requests_per_second": 0.5
//	}
package config
