package keybinds

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		key     string
		want    Action
	}{
		{ContextNormal, "r", ActionAutoRedact},
		{ContextNormal, "/", ActionOpenFind},
		{ContextNormal, "n", ActionSearchNext},
		{ContextNormal, "N", ActionSearchPrevious},
		{ContextNormal, "ctrl+c", ActionQuitForce},
		{ContextFind, "enter", ActionSearchNext},
		{ContextFind, "esc", ActionCloseFind},
		{ContextFind, "ctrl+c", ActionQuitForce},
	}

	for _, tt := range tests {
		t.Run(string(tt.context)+"/"+tt.key, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if !ok || got != tt.want {
				t.Errorf("Match(%s, %q) = %q, %v; want %q", tt.context, tt.key, got, ok, tt.want)
			}
		})
	}

	if _, ok := r.Match(ContextFind, "r"); ok {
		t.Error("printable keys must not be bound in the find context")
	}
}

func TestRegistry_MatchMultiKey(t *testing.T) {
	r := NewDefaultRegistry()

	_, complete, partial := r.MatchMultiKey(ContextNormal, "g")
	if complete || !partial {
		t.Fatalf("first g: complete=%v partial=%v", complete, partial)
	}

	action, complete, _ := r.MatchMultiKey(ContextNormal, "g")
	if !complete || action != ActionGoToTop {
		t.Errorf("gg = %q complete=%v", action, complete)
	}

	action, complete, partial = r.MatchMultiKey(ContextNormal, "G")
	if !complete || partial || action != ActionGoToBottom {
		t.Errorf("G = %q complete=%v partial=%v", action, complete, partial)
	}

	r.MatchMultiKey(ContextNormal, "g")
	r.ClearMultiKeyState(ContextNormal)
	action, complete, _ = r.MatchMultiKey(ContextNormal, "j")
	if !complete || action != ActionScrollDown {
		t.Errorf("j after clear = %q complete=%v", action, complete)
	}
}

func TestRegistry_UnbindAndBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBindingString(ContextNormal, ActionUndo); got != "ctrl+z/u" {
		t.Errorf("undo keys = %q", got)
	}

	r.Unbind(ContextNormal, ActionUndo)
	if got := r.GetBindingString(ContextNormal, ActionUndo); got != "unbound" {
		t.Errorf("after Unbind = %q", got)
	}
	if r.HasBinding(ContextNormal, "u") {
		t.Error("u still bound")
	}
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	r := NewDefaultRegistry()
	c := r.Clone()
	c.Register(ContextNormal, "r", ActionQuit)

	if got, _ := r.Match(ContextNormal, "r"); got != ActionAutoRedact {
		t.Errorf("original changed to %q", got)
	}
}

func TestSplitKeys(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"y,ctrl+y", []string{"y", "ctrl+y"}},
		{" a , b ,", []string{"a", "b"}},
		{",", []string{","}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitKeys(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitKeys(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestLoadOrDefault_AppliesJSONCConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybinds.json")
	content := `{
	  // rebind redaction
	  "normal": {
	    "auto_redact": "R",
	    "copy_url": "y,ctrl+y",
	  },
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}

	if got, _ := r.Match(ContextNormal, "R"); got != ActionAutoRedact {
		t.Errorf("R = %q", got)
	}
	if r.HasBinding(ContextNormal, "r") {
		t.Error("default r binding should be replaced")
	}
	if got, _ := r.Match(ContextNormal, "ctrl+y"); got != ActionCopyURL {
		t.Errorf("ctrl+y = %q", got)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	r, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if got, _ := r.Match(ContextNormal, "q"); got != ActionQuit {
		t.Errorf("defaults not loaded: q = %q", got)
	}
}

func TestLoadOrDefault_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown action", `{"normal": {"launch_rockets": "L"}}`, "unknown action"},
		{"conflict", `{"normal": {"copy_url": "z", "undo": "z"}}`, "conflict"},
		{"bare modifier", `{"find": {"close_find": "ctrl+"}}`, "modifier without key"},
		{"malformed", `{"normal": `, "invalid keybinds.json format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "keybinds.json")
			os.WriteFile(path, []byte(tt.content), 0644)

			_, err := LoadOrDefault(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_Warnings(t *testing.T) {
	v := NewValidator()

	result := v.ValidateConfig(&Config{Normal: map[string]string{"quit": "ctrl+c", "copy_url": "r"}})
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %s", result.String())
	}

	var reserved, takesKey bool
	for _, w := range result.Warnings {
		if w.Key == "ctrl+c" && strings.Contains(w.Message, "shadows global") {
			reserved = true
		}
		if w.Key == "r" && strings.Contains(w.Message, string(ActionAutoRedact)) {
			takesKey = true
		}
	}
	if !reserved {
		t.Errorf("missing shadowing warning for ctrl+c: %s", result.String())
	}
	if !takesKey {
		t.Errorf("missing warning for stealing r: %s", result.String())
	}
}

func TestValidator_DefaultsAreClean(t *testing.T) {
	result := NewValidator().ValidateRegistry(NewDefaultRegistry())
	if result.HasErrors() || result.HasWarnings() {
		t.Errorf("defaults have issues: %s", result.String())
	}
	if got := result.String(); got != "No issues found" {
		t.Errorf("String() = %q", got)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Type: "conflict", Context: ContextNormal, Key: "z", Message: "bound to both copy_url and undo"}
	want := "[conflict] z in context 'normal': bound to both copy_url and undo"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestExportDefaults_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybinds.json")
	if err := CreateExampleConfig(path); err != nil {
		t.Fatalf("CreateExampleConfig() error = %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.Normal["copy_url"] != "y" {
		t.Errorf("copy_url = %q", config.Normal["copy_url"])
	}
	if config.Global["quit_force"] != "ctrl+c" {
		t.Errorf("quit_force = %q", config.Global["quit_force"])
	}

	if conflicts := FindConflicts(config); len(conflicts) != 0 {
		t.Errorf("exported defaults conflict: %v", conflicts)
	}
}

func TestGetActionInfo(t *testing.T) {
	if info := GetActionInfo(ActionAutoRedact); info.Category != "Edit" {
		t.Errorf("auto_redact info = %+v", info)
	}
	if info := GetActionInfo("nope"); info.Category != "Unknown" {
		t.Errorf("unknown info = %+v", info)
	}
}
