// Package config loads, normalizes, and validates tidy configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from --config, ~/.config/tidy/config.toml,
// or ./tidy.toml, in that order. Command-line flags override the per-command
// sections after loading; the CLI handles that merge.
package config
