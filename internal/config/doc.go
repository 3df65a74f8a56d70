// Package config loads, normalizes, and validates newsroom configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a local .env file and honours
// environment fallbacks such as YOUTUBE_API_KEY and OPENROUTER_API_KEY. The
// Config type centralizes every knob the daemon and CLI need so the database,
// template overlay and model credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
