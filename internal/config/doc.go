// Package config loads, normalizes, and validates worldmanager configuration.
//
// It supplies platform defaults for the Foundry user-data folder, the core
// asset folder and the ffmpeg executable, expands user paths (including tilde
// shortcuts), reads TOML files, and honours WORLDMANAGER_* environment
// overrides. Command-line flags are applied on top by the CLI before
// Validate runs.
package config
