// Package config loads, normalizes, and validates avsub's TOML configuration.
//
// Defaults are applied first, the file (if any) is decoded on top, paths are
// expanded and environment overrides applied, then the result is validated.
// The embedded sample_config.toml backs `avsub config init`.
package config
