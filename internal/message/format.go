package message

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Delimiter separates the header block from the body
const Delimiter = "\r\n\r\n"

// Split cuts raw at the first delimiter. ok is false when there is no
// delimiter, in which case header is the whole input and body is empty.
func Split(raw string) (header, body string, ok bool) {
	idx := strings.Index(raw, Delimiter)
	if idx < 0 {
		return raw, "", false
	}
	return raw[:idx], raw[idx+len(Delimiter):], true
}

// Formatter reformats raw messages and reports recovered reindent failures
type Formatter struct {
	log zerolog.Logger
}

// NewFormatter creates a formatter that logs through l
func NewFormatter(l zerolog.Logger) *Formatter {
	return &Formatter{log: l}
}

var defaultFormatter = NewFormatter(zerolog.Nop())

// Format reformats raw with a silent formatter
func Format(raw string) string {
	return defaultFormatter.Format(raw)
}

// Format returns header block + delimiter + reindented body. Messages
// without a delimiter and opaque bodies come back unchanged. The header
// block is never altered.
func (f *Formatter) Format(raw string) string {
	header, body, ok := Split(raw)
	if !ok {
		return raw
	}
	return header + Delimiter + f.FormatBody(header, body)
}

// FormatBody reindents body according to its sniffed kind. A panic inside
// a reindenter is recovered and the original body is returned.
func (f *Formatter) FormatBody(header, body string) (formatted string) {
	kind := Classify(header, body)
	if kind == KindOpaque {
		return body
	}

	defer func() {
		if r := recover(); r != nil {
			f.log.Debug().
				Str("kind", kind.String()).
				Int("bodySize", len(body)).
				Str("panic", fmt.Sprint(r)).
				Msg("body reindent failed, showing original")
			formatted = body
		}
	}()

	switch kind {
	case KindHTML:
		return reindentHTML(body)
	case KindJSON:
		return reindentJSON(body)
	}
	return body
}

// Indirection points so tests can force a reindenter failure
var (
	reindentHTML = ReindentHTML
	reindentJSON = ReindentJSON
)
