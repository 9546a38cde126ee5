package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Level
		wantErr bool
	}{
		{input: "", want: log.InfoLevel},
		{input: "info", want: log.InfoLevel},
		{input: "debug", want: log.DebugLevel},
		{input: "warn", want: log.WarnLevel},
		{input: "warning", want: log.WarnLevel},
		{input: "error", want: log.ErrorLevel},
		{input: "INFO", want: log.InfoLevel},
		{input: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLevel) {
					t.Fatalf("parseLevel(%q) error = %v, want ErrInvalidLevel", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLevel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitRejectsInvalidLevel(t *testing.T) {
	if err := Init(Config{Level: "loud"}); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Init() error = %v, want ErrInvalidLevel", err)
	}
}

func TestGetWritesWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: "info", Writer: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logger := Get("flatten")
	logger.Info("run started", "root", "/tmp/x")

	out := buf.String()
	if !strings.Contains(out, "flatten") {
		t.Errorf("output missing component prefix: %q", out)
	}
	if !strings.Contains(out, "run started") {
		t.Errorf("output missing message: %q", out)
	}
}

func TestGetCachesLoggers(t *testing.T) {
	if err := Init(Config{Level: "info", Writer: &bytes.Buffer{}}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if Get("journal") != Get("journal") {
		t.Error("Get() should return the same logger for a component")
	}
	if Get("journal") == Get("revert") {
		t.Error("Get() should return distinct loggers per component")
	}
}

func TestQuietSilencesInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: "debug", Quiet: true, Writer: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logger := Get("flatten")
	logger.Info("hidden")
	logger.Warn("also hidden")
	if buf.Len() != 0 {
		t.Errorf("quiet mode leaked output: %q", buf.String())
	}

	logger.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("quiet mode swallowed error: %q", buf.String())
	}
}
