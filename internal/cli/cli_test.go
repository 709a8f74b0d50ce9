package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/reqshot/internal/capture"
	"github.com/studiowebux/reqshot/internal/message"
	"github.com/studiowebux/reqshot/internal/redact"
	"github.com/studiowebux/reqshot/internal/search"
)

const jsonResponse = "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n{\"a\":1}"

func TestFormat_Text(t *testing.T) {
	var buf bytes.Buffer
	err := Format(&buf, message.NewFormatter(zerolog.Nop()), jsonResponse, FormatOptions{Output: OutputText})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n{\n  \"a\": 1\n}\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Format(&buf, message.NewFormatter(zerolog.Nop()), jsonResponse, FormatOptions{Output: OutputJSON}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var result FormatResult
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Kind != "json" {
		t.Errorf("Kind = %q", result.Kind)
	}
	if result.Body != "{\n  \"a\": 1\n}" {
		t.Errorf("Body = %q", result.Body)
	}
	if result.Header != "HTTP/1.1 200 OK\r\nContent-Type: application/json" {
		t.Errorf("Header = %q", result.Header)
	}
}

func TestFormat_NoDelimiterIsOpaque(t *testing.T) {
	var buf bytes.Buffer
	Format(&buf, message.NewFormatter(zerolog.Nop()), "{\"a\":1}", FormatOptions{Output: OutputYAML})

	var result FormatResult
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if result.Kind != "opaque" || result.Formatted != "{\"a\":1}" {
		t.Errorf("result = %+v", result)
	}
}

func TestSearch_Text(t *testing.T) {
	buffers := search.Buffers{
		Request:  "GET / HTTP/1.1\r\nHost: api.test\r\n\r\n",
		Response: "HTTP/1.1 200 OK\r\n\r\nhello API",
	}

	var buf bytes.Buffer
	if err := Search(&buf, buffers, "api", OutputText); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := "1/2 request:2: Host: api.test\n" +
		"2/2 response:3: hello API\n" +
		"2 match(es) for \"api\"\n"
	if buf.String() != want {
		t.Errorf("Search() = %q, want %q", buf.String(), want)
	}
}

func TestSearch_JSONEmptyQuery(t *testing.T) {
	var buf bytes.Buffer
	Search(&buf, search.Buffers{Request: "abc"}, "", OutputJSON)

	var result SearchResult
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Count != 0 || result.Matches == nil || len(result.Matches) != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestLineAt(t *testing.T) {
	tests := []struct {
		text     string
		offset   int
		wantLine int
		wantText string
	}{
		{"abc", 1, 1, "abc"},
		{"a\r\nbc\r\nd", 3, 2, "bc"},
		{"a\nb", 2, 2, "b"},
	}
	for _, tt := range tests {
		line, text := lineAt(tt.text, tt.offset)
		if line != tt.wantLine || text != tt.wantText {
			t.Errorf("lineAt(%q, %d) = %d, %q; want %d, %q", tt.text, tt.offset, line, text, tt.wantLine, tt.wantText)
		}
	}
}

func TestRedact(t *testing.T) {
	var buf bytes.Buffer
	text := "GET / HTTP/1.1\r\ncookie: a=b\r\nAuthorization: Basic xyz\r\n"
	if err := Redact(&buf, redact.Default(), text, OutputJSON); err != nil {
		t.Fatalf("Redact() error = %v", err)
	}

	var result RedactResult
	json.Unmarshal(buf.Bytes(), &result)
	if result.Count != 2 {
		t.Errorf("Count = %d", result.Count)
	}
	if result.Redacted != "GET / HTTP/1.1\r\ncookie: [REDACTED]\r\nAuthorization: [REDACTED]\r\n" {
		t.Errorf("Redacted = %q", result.Redacted)
	}
}

func TestListCaptures(t *testing.T) {
	exchanges := []capture.Exchange{{
		ID:         "0123456789abcdef",
		CapturedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Source:     capture.SourceProxy,
		Method:     "GET",
		URL:        "http://example.com/",
		Status:     404,
		Duration:   1500 * time.Millisecond,
	}}

	var buf bytes.Buffer
	if err := ListCaptures(&buf, exchanges, OutputText); err != nil {
		t.Fatalf("ListCaptures() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"01234567", "proxy", "GET", "404", "1.50s", "http://example.com/"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}

	buf.Reset()
	ListCaptures(&buf, nil, OutputJSON)
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty JSON list = %q", buf.String())
	}

	buf.Reset()
	ListCaptures(&buf, nil, OutputText)
	if buf.String() != "No captures\n" {
		t.Errorf("empty text list = %q", buf.String())
	}
}

func TestValidateOutput(t *testing.T) {
	for _, ok := range []string{"text", "json", "yaml"} {
		if err := ValidateOutput(ok); err != nil {
			t.Errorf("ValidateOutput(%q) error = %v", ok, err)
		}
	}
	if err := ValidateOutput("xml"); err == nil {
		t.Error("ValidateOutput(xml) should fail")
	}
}

func TestSelector_EnterPicksHighlighted(t *testing.T) {
	exchanges := []capture.Exchange{
		{ID: "a", Method: "GET", URL: "http://one/"},
		{ID: "b", Method: "POST", URL: "http://two/"},
	}

	var model tea.Model = newSelector(exchanges)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	result := model.(selectorModel)
	if result.choice == nil || result.choice.ID != "b" {
		t.Fatalf("choice = %+v", result.choice)
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestSelector_QuitCancels(t *testing.T) {
	var model tea.Model = newSelector([]capture.Exchange{{ID: "a"}})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if model.(selectorModel).choice != nil {
		t.Error("q should cancel without a choice")
	}
}
