package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Use a temp directory that doesn't have a config file
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultPath != DefaultPath {
		t.Errorf("DefaultPath = %q, want %q", cfg.DefaultPath, DefaultPath)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", cfg.Output, DefaultOutput)
	}
	if cfg.KeepLogs != DefaultKeepLogs {
		t.Errorf("KeepLogs = %v, want %v", cfg.KeepLogs, DefaultKeepLogs)
	}
	if cfg.Merge || cfg.Overwrite || cfg.Strict {
		t.Errorf("collision policies should default off: merge=%v overwrite=%v strict=%v",
			cfg.Merge, cfg.Overwrite, cfg.Strict)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "levelzap")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
default_path: /home/user/inbox
output: json
keep_logs: true
merge: true
logging:
  level: debug
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultPath != "/home/user/inbox" {
		t.Errorf("DefaultPath = %q, want /home/user/inbox", cfg.DefaultPath)
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q, want json", cfg.Output)
	}
	if !cfg.KeepLogs {
		t.Error("KeepLogs = false, want true")
	}
	if !cfg.Merge {
		t.Error("Merge = false, want true")
	}
	if cfg.Overwrite {
		t.Error("Overwrite = true, want false (unset in file)")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := t.TempDir()
	xdgDir := filepath.Join(tempDir, "xdg")
	configDir := filepath.Join(xdgDir, "levelzap")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("output: yaml\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", xdgDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want yaml", cfg.Output)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("LEVELZAP_OUTPUT", "table")
	t.Setenv("LEVELZAP_KEEP_LOGS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want table", cfg.Output)
	}
	if !cfg.KeepLogs {
		t.Error("KeepLogs = false, want true")
	}
}

func TestLoad_TildeExpansion(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "levelzap")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("default_path: ~/inbox\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultPath != filepath.Join(tempDir, "inbox") {
		t.Errorf("DefaultPath = %q, want %q", cfg.DefaultPath, filepath.Join(tempDir, "inbox"))
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "levelzap")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("output: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on malformed config")
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("XDG set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if dir != filepath.Join("/custom/xdg", "levelzap") {
			t.Errorf("ConfigDir() = %q", dir)
		}
	})

	t.Run("XDG unset", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)
		t.Setenv("XDG_CONFIG_HOME", "")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if dir != filepath.Join(tempDir, ".config", "levelzap") {
			t.Errorf("ConfigDir() = %q", dir)
		}
	})
}

func TestExpandPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "tilde", path: "~/docs", want: filepath.Join(tempDir, "docs")},
		{name: "bare tilde", path: "~", want: tempDir},
		{name: "absolute unchanged", path: "/var/tmp", want: "/var/tmp"},
		{name: "relative unchanged", path: "docs", want: "docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.path)
			if err != nil {
				t.Fatalf("ExpandPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	configPath := filepath.Join(tempDir, ".config", "levelzap", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "output: plain") {
		t.Errorf("default config missing output default:\n%s", data)
	}

	// A second call must not clobber an existing file.
	if err := os.WriteFile(configPath, []byte("output: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() second call error = %v", err)
	}
	data, err = os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "output: json\n" {
		t.Errorf("WriteDefault() overwrote existing config:\n%s", data)
	}
}
