// Package config loads, validates, and normalizes petreel's TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/petreel/config.toml,
// or ./petreel.toml), applies defaults for missing values, expands ~ in path
// fields, and validates cross-field constraints. A sample configuration is
// embedded for `petreel config init`.
package config
