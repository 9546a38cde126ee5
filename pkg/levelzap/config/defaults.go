// Package config provides configuration management for levelzap.
package config

// Default configuration values for levelzap.
const (
	// DefaultPath is the target directory when none is specified.
	DefaultPath = "."

	// DefaultOutput is the default report format.
	DefaultOutput = "plain"

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultKeepLogs controls whether journals survive reversion.
	DefaultKeepLogs = false
)
