package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitCreatesFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}

	configPath := filepath.Join(configHome, "levelzap", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if !strings.Contains(string(data), "LevelZap Configuration") {
		t.Error("default config missing header comment")
	}

	// Second run must not clobber an existing file.
	if err := os.WriteFile(configPath, []byte("output: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("runConfigInit() on existing file error = %v", err)
	}
	data, err = os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "output: json\n" {
		t.Errorf("existing config overwritten: %q", got)
	}
}

func TestConfigShow(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	if err := runConfigShow(configShowCmd, nil); err != nil {
		t.Fatalf("runConfigShow() error = %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	if err := runConfigPath(configPathCmd, nil); err != nil {
		t.Fatalf("runConfigPath() error = %v", err)
	}
}
