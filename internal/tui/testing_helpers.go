package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/reqshot/internal/capture"
	"github.com/studiowebux/reqshot/internal/config"
)

// testRequest carries both redactable headers and a word shared with the response
const testRequest = "POST /login HTTP/1.1\r\n" +
	"Host: example.com\r\n" +
	"Cookie: session=abc\r\n" +
	"Authorization: Bearer secret\r\n" +
	"\r\n"

const testResponse = "HTTP/1.1 200 OK\r\n" +
	"Content-Type: application/json\r\n" +
	"\r\n" +
	`{"token":"secret"}`

// CreateTestModel creates a sized Model with settings persisted into a
// temp dir and a clipboard that records into the returned string pointer
func CreateTestModel(t *testing.T) (*Model, *string) {
	t.Helper()

	settingsPath := filepath.Join(t.TempDir(), "settings.yaml")

	m := New(capture.Exchange{
		Source:   capture.SourceFile,
		Method:   "POST",
		URL:      "http://example.com/login",
		Request:  testRequest,
		Response: testResponse,
	}, Options{
		Settings:     config.DefaultSettings(),
		SettingsPath: settingsPath,
	})

	var copied string
	m.writeClipboard = func(text string) error {
		copied = text
		return nil
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &m, &copied
}

// press sends each key to the model in order and returns the last command
func press(m *Model, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, key := range keys {
		_, cmd = m.Update(key)
	}
	return cmd
}

// runes builds a key message for typed text
func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
