// Package config loads, normalizes, and validates subsyncarr configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the environment variables the
// service has always accepted (SCAN_PATHS, INCLUDE_ENGINES,
// MAX_CONCURRENT_SYNC_TASKS, AUDIO_TRACK_LANGUAGE, the per-engine *_ARGS
// variables, and friends). Environment values that are set and non-blank win
// over values read from the file.
//
// Always obtain settings through this package so downstream code receives
// expanded scan roots, a validated engine filter, and canonical log settings.
package config
