// Package config holds run configuration: CLI-derived settings, validation,
// and the optional .clinstat YAML file with per-study overrides.
package config
