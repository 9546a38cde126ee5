package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config represents the application configuration.
type Config struct {
	DefaultPath string        `mapstructure:"default_path"`
	Output      string        `mapstructure:"output"`
	KeepLogs    bool          `mapstructure:"keep_logs"`
	Merge       bool          `mapstructure:"merge"`
	Overwrite   bool          `mapstructure:"overwrite"`
	Strict      bool          `mapstructure:"strict"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/levelzap/config.yaml
//   - $HOME/.config/levelzap/config.yaml
//
// Environment variables are prefixed with LEVELZAP_ (e.g., LEVELZAP_OUTPUT).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "levelzap"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "levelzap"))

	v.SetEnvPrefix("LEVELZAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("keep_logs", DefaultKeepLogs)
	v.SetDefault("merge", false)
	v.SetDefault("overwrite", false)
	v.SetDefault("strict", false)
	v.SetDefault("logging.level", DefaultLogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.HasPrefix(cfg.DefaultPath, "~") {
		cfg.DefaultPath = filepath.Join(homeDir, cfg.DefaultPath[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "levelzap"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "levelzap"), nil
}

// StateDir returns $XDG_STATE_HOME/levelzap/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "levelzap")
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# LevelZap Configuration

# Target directory when none is specified
default_path: %s

# Report format: plain, table, json, yaml
output: %s

# Preserve journals after reversion (they are stamped as reverted)
keep_logs: %t

# Default collision policies (overridden by --merge / --overwrite / --strict)
merge: false
overwrite: false
strict: false

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
`, DefaultPath, DefaultOutput, DefaultKeepLogs, DefaultLogLevel)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
