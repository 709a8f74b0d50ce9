package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Writers: []string{"console"}, Console: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Debug().Str("pane", "request").Msg("redacted")
	if !strings.Contains(buf.String(), "redacted") || !strings.Contains(buf.String(), "pane=") {
		t.Errorf("console output missing fields: %q", buf.String())
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Writers: []string{"console"}, Console: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %q", buf.String())
	}
}

func TestNew_FileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reqshot.log")
	log, err := New(Options{Writers: []string{"file"}, File: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info().Msg("captured")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"message":"captured"`) {
		t.Errorf("unexpected log file content: %s", data)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad level", Options{Level: "loud"}},
		{"unknown writer", Options{Writers: []string{"syslog"}}},
		{"file without path", Options{Writers: []string{"file"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}
