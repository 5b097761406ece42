// Package config loads, validates, and defaults the TOML configuration
// for corduroy.
//
// Configuration resolves from an explicit path, then
// ~/.config/corduroy/config.toml, then ./corduroy.toml. Missing files are
// not an error: defaults describe a working setup for the shipped resort.
package config
