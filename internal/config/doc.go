// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It selects the problem backend, the packing
// strategy and the report format, and carries the settings of the HTTP service.
package config
