// Package config loads, normalizes, and validates reelcut configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, loads a .env file, and honours environment overrides such as
// GEMINI_API_KEY, HF_TOKEN, and ENGAGEMENT_THRESHOLD. The Config type
// centralizes every knob the pipeline and CLI need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
