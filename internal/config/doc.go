// Package config loads, validates, and normalizes denoiser configuration.
//
// Configuration lives in a TOML file (default ~/.config/denoiser/config.toml,
// project fallback ./denoiser.toml) and is represented by a single explicit
// Config struct constructed once at process entry. Loading applies defaults,
// expands ~ and relative paths to absolute ones, and validates invariants such
// as the mutual exclusion of the two input sources and the [0,1] range of the
// dry/wet coefficient.
package config
