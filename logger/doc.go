// Package logger provides structured logging for menustream built on zerolog.
//
// It exposes both an instance API (for components that carry their own
// logger) and package-level functions backed by a global logger for code
// paths where threading a logger through is impractical.
package logger
