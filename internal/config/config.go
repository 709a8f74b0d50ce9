package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// LocalSettingsFile overrides the global settings when present in the working directory
	LocalSettingsFile = ".reqshot.yaml"
)

var (
	// ConfigDir is the global configuration directory (~/.reqshot)
	ConfigDir string

	// DatabasePath is the SQLite database file holding captured exchanges
	DatabasePath string

	// SettingsFile is the global settings file
	SettingsFile string

	// KeybindsFile holds user keybinding overrides
	KeybindsFile string

	// LogFile is the rotating log file used by the file writer
	LogFile string
)

// Settings is the content of settings.yaml
type Settings struct {
	Theme     string `yaml:"theme"`
	Wrap      bool   `yaml:"wrap"`
	ExportDir string `yaml:"exportDir"`

	Proxy struct {
		Port        int `yaml:"port"`
		MaxCaptures int `yaml:"maxCaptures"`
	} `yaml:"proxy"`

	Log struct {
		Level  string   `yaml:"level"`
		Writer []string `yaml:"writer"`
	} `yaml:"log"`
}

// DefaultSettings returns the settings written on first run
func DefaultSettings() *Settings {
	s := &Settings{
		Theme: "dark",
		Wrap:  true,
	}
	s.Proxy.Port = 8888
	s.Proxy.MaxCaptures = 1000
	s.Log.Level = "info"
	s.Log.Writer = []string{"file"}
	return s
}

// Initialize sets up the configuration directory and files
// It creates ~/.reqshot/ and a default settings.yaml if they don't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	SetConfigDir(filepath.Join(homeDir, ".reqshot"))

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := SaveSettings(SettingsFile, DefaultSettings()); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// SetConfigDir points every global path at dir
func SetConfigDir(dir string) {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "reqshot.db")
	SettingsFile = filepath.Join(ConfigDir, "settings.yaml")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")
	LogFile = filepath.Join(ConfigDir, "reqshot.log")
}

// GetSettingsFilePath returns the settings file path (local or global)
func GetSettingsFilePath() string {
	if _, err := os.Stat(LocalSettingsFile); err == nil {
		return LocalSettingsFile
	}
	return SettingsFile
}

// LoadSettings reads settings from path. Missing fields keep their defaults,
// and a missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return s, nil
}

// Load reads the effective settings (local file first, then global)
func Load() (*Settings, error) {
	return LoadSettings(GetSettingsFilePath())
}

// SaveSettings writes s to path as YAML
func SaveSettings(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Validate checks enumerated values and ranges
func (s *Settings) Validate() error {
	switch s.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("theme must be dark or light, got %q", s.Theme)
	}

	if s.Proxy.Port < 1 || s.Proxy.Port > 65535 {
		return fmt.Errorf("proxy.port out of range: %d", s.Proxy.Port)
	}
	if s.Proxy.MaxCaptures < 1 {
		return fmt.Errorf("proxy.maxCaptures must be positive, got %d", s.Proxy.MaxCaptures)
	}

	for _, w := range s.Log.Writer {
		if w != "console" && w != "file" {
			return fmt.Errorf("unknown log writer %q", w)
		}
	}
	return nil
}

// ResolveExportDir expands ~ in the export directory. An empty value
// resolves to the current directory.
func (s *Settings) ResolveExportDir() (string, error) {
	dir := s.ExportDir
	if dir == "" {
		return ".", nil
	}

	if strings.HasPrefix(dir, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, dir[2:])
	}
	return dir, nil
}
