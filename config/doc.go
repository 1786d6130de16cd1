// Package config loads menustream configuration from config.yml and the
// environment. Files provide the base, environment variables override, and
// every section falls back to its own defaults when unset.
package config
