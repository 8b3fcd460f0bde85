// Package config loads buildprobe settings.
//
// Settings come from built-in defaults, an optional buildprobe.yml, an
// optional .env file and BUILDPROBE_* environment variables, in increasing
// order of precedence.
//
// # Usage
//
//	cfg, err := config.Load()
//	cfg, err := config.Load(config.WithConfigFile("testdata/buildprobe.yml"))
//
// Environment variables use the BUILDPROBE_ prefix with underscore-separated
// paths (e.g. BUILDPROBE_TOOL_BINARY, BUILDPROBE_TOOL_TIMEOUT=2m).
package config
