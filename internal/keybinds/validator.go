package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator validates keybinding configurations
type Validator struct {
	// reservedKeys maps keys that should not be rebound to their action
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce,
		},
	}
}

// ValidateConfig checks a user config before it is applied: unknown
// actions, malformed keys and keys claimed by two actions are errors;
// rebinding a reserved key or shadowing a global key is a warning.
func (v *Validator) ValidateConfig(config *Config) *ValidationResult {
	result := &ValidationResult{}

	effective := NewDefaultRegistry()
	for context, section := range config.sections() {
		owner := make(map[string]string)

		names := make([]string, 0, len(section))
		for name := range section {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := ValidateAction(name); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Type: "invalid", Context: context, Key: section[name], Message: err.Error(),
				})
				continue
			}

			keys := SplitKeys(section[name])
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					result.Errors = append(result.Errors, ValidationError{
						Type: "invalid", Context: context, Key: key, Message: err.Error(),
					})
					continue
				}
				if prev, taken := owner[key]; taken {
					result.Errors = append(result.Errors, ValidationError{
						Type:    "conflict",
						Context: context,
						Key:     key,
						Message: fmt.Sprintf("bound to both %s and %s", prev, name),
					})
					continue
				}
				owner[key] = name

				if prev, ok := effective.bindings[context][key]; ok && prev != Action(name) {
					if _, rebound := section[string(prev)]; !rebound {
						result.Warnings = append(result.Warnings, ValidationError{
							Type:    "warning",
							Context: context,
							Key:     key,
							Message: fmt.Sprintf("takes the key from default %s", prev),
						})
					}
				}
			}
			effective.Unbind(context, Action(name))
			effective.RegisterMultiple(context, keys, Action(name))
		}
	}

	if !result.HasErrors() {
		rest := v.ValidateRegistry(effective)
		result.Warnings = append(result.Warnings, rest.Warnings...)
	}
	return result
}

// ValidateRegistry reports reserved-key rebinding and shadowing
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{}
	v.checkReservedKeys(registry, result)
	v.checkShadowing(registry, result)
	return result
}

// checkReservedKeys warns when a reserved key triggers something else
func (v *Validator) checkReservedKeys(registry *Registry, result *ValidationResult) {
	for _, context := range Contexts {
		for key, want := range v.reservedKeys {
			if action, ok := registry.bindings[context][key]; ok && action != want {
				result.Warnings = append(result.Warnings, ValidationError{
					Type:    "warning",
					Context: context,
					Key:     key,
					Message: fmt.Sprintf("reserved key rebound to %s", action),
				})
			}
		}
	}
}

// checkShadowing warns when a context binding hides a global one
func (v *Validator) checkShadowing(registry *Registry, result *ValidationResult) {
	global := registry.bindings[ContextGlobal]
	for _, context := range Contexts {
		if context == ContextGlobal {
			continue
		}
		for _, b := range registry.ListBindings(context) {
			if b.Context != context {
				continue
			}
			if globalAction, ok := global[b.Key]; ok && globalAction != b.Action {
				result.Warnings = append(result.Warnings, ValidationError{
					Type:    "warning",
					Context: context,
					Key:     b.Key,
					Message: fmt.Sprintf("shadows global binding (%s -> %s)", globalAction, b.Action),
				})
			}
		}
	}
}

// FindConflicts lists the conflict errors of a config
func FindConflicts(config *Config) []string {
	result := NewValidator().ValidateConfig(config)

	var conflicts []string
	for _, err := range result.Errors {
		if err.Type == "conflict" {
			conflicts = append(conflicts, err.Error())
		}
	}
	return conflicts
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}
	return nil
}

// ValidateAction checks that actionStr names a known action
func ValidateAction(actionStr string) error {
	if actionStr == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if !IsKnownAction(Action(actionStr)) {
		return fmt.Errorf("unknown action %q", actionStr)
	}
	return nil
}
