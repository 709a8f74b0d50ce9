package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetConfigDir(t *testing.T) {
	dir := t.TempDir()
	SetConfigDir(dir)

	if DatabasePath != filepath.Join(dir, "reqshot.db") {
		t.Errorf("DatabasePath = %s", DatabasePath)
	}
	if SettingsFile != filepath.Join(dir, "settings.yaml") {
		t.Errorf("SettingsFile = %s", SettingsFile)
	}
	if KeybindsFile != filepath.Join(dir, "keybinds.json") {
		t.Errorf("KeybindsFile = %s", KeybindsFile)
	}
}

func TestLoadSettings_MissingFileGivesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Theme != "dark" || !s.Wrap || s.Proxy.Port != 8888 {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	in := DefaultSettings()
	in.Theme = "light"
	in.ExportDir = "/tmp/shots"
	in.Proxy.Port = 9090

	if err := SaveSettings(path, in); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	out, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if out.Theme != "light" || out.ExportDir != "/tmp/shots" || out.Proxy.Port != 9090 {
		t.Errorf("round trip lost fields: %+v", out)
	}
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("theme: light\n"), FilePermissions); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Theme != "light" {
		t.Errorf("Theme = %s, want light", s.Theme)
	}
	if s.Proxy.MaxCaptures != 1000 {
		t.Errorf("MaxCaptures = %d, want default 1000", s.Proxy.MaxCaptures)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad theme", "theme: neon\n", "theme"},
		{"bad port", "proxy:\n  port: 70000\n", "proxy.port"},
		{"bad writer", "log:\n  writer: [syslog]\n", "log writer"},
		{"bad yaml", "theme: [\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yaml")
			if err := os.WriteFile(path, []byte(tt.content), FilePermissions); err != nil {
				t.Fatal(err)
			}
			_, err := LoadSettings(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadSettings() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveExportDir(t *testing.T) {
	s := DefaultSettings()
	dir, err := s.ResolveExportDir()
	if err != nil || dir != "." {
		t.Errorf("empty export dir = %q, %v", dir, err)
	}

	s.ExportDir = "~/shots"
	dir, err = s.ResolveExportDir()
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(dir, "~") || !strings.HasSuffix(dir, "shots") {
		t.Errorf("tilde not expanded: %q", dir)
	}
}
