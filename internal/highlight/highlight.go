// Package highlight colours formatted message bodies for terminals.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/studiowebux/reqshot/internal/message"
)

// Styles per theme
const (
	DarkStyle  = "monokai"
	LightStyle = "github"
)

// Highlighter wraps a chroma formatter and style
type Highlighter struct {
	formatter chroma.Formatter
	style     *chroma.Style
}

// New creates a 256-colour terminal highlighter. Unknown style names fall
// back to chroma's default style.
func New(styleName string) *Highlighter {
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	return &Highlighter{formatter: formatter, style: style}
}

// ForTheme picks the style matching a "dark" or "light" theme
func ForTheme(theme string) *Highlighter {
	if theme == "light" {
		return New(LightStyle)
	}
	return New(DarkStyle)
}

// Body colours body according to kind. Opaque bodies, and bodies chroma
// fails on, come back unchanged.
func (h *Highlighter) Body(kind message.Kind, body string) string {
	var lexer chroma.Lexer
	switch kind {
	case message.KindHTML:
		lexer = lexers.Get("html")
	case message.KindJSON:
		lexer = lexers.Get("json")
	}
	if lexer == nil || body == "" {
		return body
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, body)
	if err != nil {
		return body
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return body
	}
	return buf.String()
}

// Message colours the body of a raw or formatted message, leaving the
// header block as it is
func (h *Highlighter) Message(raw string) string {
	header, body, ok := message.Split(raw)
	if !ok {
		return raw
	}
	return header + message.Delimiter + h.Body(message.Classify(header, body), body)
}
