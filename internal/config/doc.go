// Package config loads, normalizes, and validates sonalyze configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file when present, and honours
// environment fallbacks such as GROQ_API_KEY. The Config type centralizes the
// data directories, analysis parameters, LLM connection settings, and logging
// options so every command resolves them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
