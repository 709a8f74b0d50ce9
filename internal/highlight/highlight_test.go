package highlight

import (
	"regexp"
	"strings"
	"testing"

	"github.com/studiowebux/reqshot/internal/message"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestBody_AddsColourWithoutChangingText(t *testing.T) {
	h := New(DarkStyle)

	tests := []struct {
		kind message.Kind
		body string
	}{
		{message.KindJSON, "{\n  \"a\": 1\n}"},
		{message.KindHTML, "<html>\n  <p>Hi\n  </p>\n</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got := h.Body(tt.kind, tt.body)
			if !ansi.MatchString(got) {
				t.Errorf("no escape sequences in %q", got)
			}
			if plain := ansi.ReplaceAllString(got, ""); strings.TrimRight(plain, "\n") != tt.body {
				t.Errorf("text changed: %q", plain)
			}
		})
	}
}

func TestBody_OpaqueUnchanged(t *testing.T) {
	h := ForTheme("light")
	if got := h.Body(message.KindOpaque, "plain text"); got != "plain text" {
		t.Errorf("Body(opaque) = %q", got)
	}
	if got := h.Body(message.KindJSON, ""); got != "" {
		t.Errorf("Body(empty) = %q", got)
	}
}

func TestMessage_HeaderUntouched(t *testing.T) {
	h := New("no-such-style")
	raw := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n{\"a\":1}"

	got := h.Message(raw)
	if !strings.HasPrefix(got, "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n") {
		t.Errorf("header block changed: %q", got)
	}

	if got := h.Message("GET / HTTP/1.1"); got != "GET / HTTP/1.1" {
		t.Errorf("Message without delimiter = %q", got)
	}
}
