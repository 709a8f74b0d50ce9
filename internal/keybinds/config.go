package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// Config is the content of keybinds.json. Each section maps an action name
// to a comma-separated list of keys, e.g. "copy_url": "y,ctrl+y".
type Config struct {
	Version string            `json:"version"`
	Global  map[string]string `json:"global,omitempty"`
	Normal  map[string]string `json:"normal,omitempty"`
	Find    map[string]string `json:"find,omitempty"`
}

// sections pairs each context with its config section
func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal: c.Global,
		ContextNormal: c.Normal,
		ContextFind:   c.Find,
	}
}

// LoadConfig loads keybinding configuration from a JSON file. Comments and
// trailing commas are allowed.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}

	return &config, nil
}

// SaveConfig writes config to path with a leading comment
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	header := "// reqshot keybindings: action -> comma-separated keys\n"
	return os.WriteFile(path, append([]byte(header), data...), 0644)
}

// SplitKeys parses a comma-separated key list. A lone "," is the comma key.
func SplitKeys(list string) []string {
	if strings.TrimSpace(list) == "," {
		return []string{","}
	}
	var keys []string
	for _, key := range strings.Split(list, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// ApplyConfig rebinds every action named in config. Keys listed for an
// action replace that action's default keys in the same context.
func ApplyConfig(registry *Registry, config *Config) error {
	for context, section := range config.sections() {
		actions := make([]string, 0, len(section))
		for name := range section {
			actions = append(actions, name)
		}
		sort.Strings(actions)

		for _, name := range actions {
			action := Action(name)
			if !IsKnownAction(action) {
				return fmt.Errorf("unknown action %q in %s", name, context)
			}
			keys := SplitKeys(section[name])
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("action %q in %s: %w", name, context, err)
				}
			}
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}
	return nil
}

// LoadOrDefault returns the default registry with the user config at
// configPath applied over it. A missing file is not an error.
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err != nil {
		return registry, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
	}

	if result := NewValidator().ValidateConfig(config); result.HasErrors() {
		return nil, fmt.Errorf("invalid keybinds.json:\n%s", result.String())
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}

	return registry, nil
}

// ExportDefaults renders the default registry as a config
func ExportDefaults() *Config {
	registry := NewDefaultRegistry()
	config := &Config{Version: "1.0"}

	for context, dst := range map[Context]*map[string]string{
		ContextGlobal: &config.Global,
		ContextNormal: &config.Normal,
		ContextFind:   &config.Find,
	} {
		section := make(map[string]string)
		for _, b := range registry.ListBindings(context) {
			if b.Context != context {
				continue
			}
			section[string(b.Action)] = strings.Join(registry.GetBinding(context, b.Action), ",")
		}
		*dst = section
	}

	return config
}

// CreateExampleConfig writes the defaults to path for the user to edit
func CreateExampleConfig(path string) error {
	return SaveConfig(ExportDefaults(), path)
}
