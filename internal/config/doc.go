// Package config loads, normalizes, and validates danmaku overlay settings.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// translation API key (DANMAKU_API_KEY, DEEPSEEK_API_KEY, OPENAI_API_KEY).
// Timing knobs are stored as integer milliseconds in TOML and exposed as
// time.Duration through accessor methods.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
