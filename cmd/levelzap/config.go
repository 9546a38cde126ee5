package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dterracino/levelzap/pkg/levelzap/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage levelzap configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/levelzap/config.yaml (if set)
  2. ~/.config/levelzap/config.yaml

Environment variables can override config file settings using the LEVELZAP_ prefix:
  LEVELZAP_OUTPUT=json
  LEVELZAP_KEEP_LOGS=true
  LEVELZAP_DEFAULT_PATH=~/Downloads`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		printError("Failed to load configuration: %v", err)
		// Show defaults anyway
		cfg = &config.Config{
			DefaultPath: config.DefaultPath,
			Output:      config.DefaultOutput,
			KeepLogs:    config.DefaultKeepLogs,
		}
		cfg.Logging.Level = config.DefaultLogLevel
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("default_path:   %s\n", cfg.DefaultPath)
	fmt.Printf("output:         %s\n", cfg.Output)
	fmt.Printf("keep_logs:      %t\n", cfg.KeepLogs)
	fmt.Printf("merge:          %t\n", cfg.Merge)
	fmt.Printf("overwrite:      %t\n", cfg.Overwrite)
	fmt.Printf("strict:         %t\n", cfg.Strict)
	fmt.Printf("logging.level:  %s\n", cfg.Logging.Level)
	fmt.Printf("state dir:      %s\n", config.StateDir())

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"LEVELZAP_DEFAULT_PATH",
		"LEVELZAP_OUTPUT",
		"LEVELZAP_KEEP_LOGS",
		"LEVELZAP_MERGE",
		"LEVELZAP_OVERWRITE",
		"LEVELZAP_STRICT",
		"LEVELZAP_LOGGING_LEVEL",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'levelzap config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	fmt.Println(filepath.Join(configDir, "config.yaml"))
	return nil
}
