package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dterracino/levelzap/pkg/levelzap/config"
	"github.com/dterracino/levelzap/pkg/levelzap/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "levelzap [path]",
		Short: "Flatten subfolders up one level and clean up",
		Long: `LevelZap moves files out of nested subdirectories into a single target
directory, deletes the emptied subdirectories, and records every operation in
a journal so the run can be reverted exactly.

Examples:
  levelzap                       # Flatten the current directory
  levelzap ~/Downloads           # Flatten a specific directory
  levelzap -s .                  # Dry run: report without touching anything
  levelzap -m .                  # Merge colliding directories
  levelzap -o .                  # Overwrite collisions (destructive)
  levelzap -r .                  # Revert the most recent run
  levelzap --revert-all .        # Revert every recorded run, newest first
  levelzap --size --recurse .    # Read-only size analysis
  levelzap logs                  # List recorded journals`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRoot,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/levelzap/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "f", "", "output format (plain, table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Flatten policy flags.
	rootCmd.Flags().BoolP("dry-run", "s", false, "simulate actions without making changes")
	rootCmd.Flags().BoolP("merge", "m", false, "merge folders if names conflict")
	rootCmd.Flags().BoolP("overwrite", "o", false, "allow overwriting files/folders (destructive)")
	rootCmd.Flags().Bool("strict", false, "treat unresolved collisions as a fatal error")
	rootCmd.Flags().BoolP("recurse", "R", false, "pull up files from every depth, not just one level")
	rootCmd.Flags().BoolP("yes", "y", false, "skip the destructive-mode confirmation prompt")

	// Revert flags. pflag shorthands are single characters, so --revert-all
	// has no -ra form; -r --all works too.
	rootCmd.Flags().BoolP("revert", "r", false, "revert the most recent journal")
	rootCmd.Flags().Bool("revert-all", false, "revert all journals, most recent first")
	rootCmd.Flags().Bool("all", false, "with --revert, revert all journals")
	rootCmd.Flags().BoolP("keep-logs", "k", false, "preserve journals after reversion, stamped as reverted")

	// Analysis flags (read-only).
	rootCmd.Flags().Bool("size", false, "report total size of the tree, mutate nothing")
	rootCmd.Flags().Bool("count", false, "report file/dir counts, mutate nothing")
	rootCmd.Flags().String("min-size", "", "ignore files smaller than this size in analysis (e.g. 100K, 1.5M)")

	// Cleanup flags.
	rootCmd.Flags().Bool("remove-empty", false, "delete empty subdirectories")
	rootCmd.Flags().Bool("remove-zero", false, "delete zero-byte files")

	// Journal flags.
	rootCmd.Flags().Bool("verify", false, "check the integrity of recorded journals")
	rootCmd.Flags().Bool("list-logs", false, "list recorded journals")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("keep_logs", rootCmd.Flags().Lookup("keep-logs"))
	_ = viper.BindPFlag("merge", rootCmd.Flags().Lookup("merge"))
	_ = viper.BindPFlag("overwrite", rootCmd.Flags().Lookup("overwrite"))
	_ = viper.BindPFlag("strict", rootCmd.Flags().Lookup("strict"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "levelzap"))
		}
		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "levelzap"))
		}
	}

	viper.SetEnvPrefix("LEVELZAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("default_path", config.DefaultPath)
	viper.SetDefault("output", config.DefaultOutput)
	viper.SetDefault("keep_logs", config.DefaultKeepLogs)
	viper.SetDefault("logging.level", config.DefaultLogLevel)

	_ = viper.ReadInConfig()

	level := viper.GetString("logging.level")
	if viper.GetBool("verbose") {
		level = "debug"
	}
	_ = logging.Init(logging.Config{
		Level: level,
		Quiet: viper.GetBool("quiet"),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// targetPath resolves the positional path argument, falling back to the
// configured default path.
func targetPath(args []string) (string, error) {
	path := viper.GetString("default_path")
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		path = "."
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}
	return expanded, nil
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
