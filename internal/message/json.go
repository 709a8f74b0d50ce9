package message

import "strings"

// ReindentJSON pretty-prints a JSON-like body with a single quote-aware scan.
// Text before the first '{' or '[' (a JSONP callback, for instance) is copied
// verbatim, and a body without either character is returned unchanged.
// Structural whitespace outside strings is regenerated, so the output of
// ReindentJSON is a fixed point of ReindentJSON. Invalid JSON never fails; it
// only indents oddly.
func ReindentJSON(body string) string {
	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return body
	}

	var out strings.Builder
	out.Grow(len(body) * 2)
	out.WriteString(body[:start])

	indent := 0
	inQuotes := false

	for i := start; i < len(body); i++ {
		c := body[i]

		if inQuotes {
			switch c {
			case '\\':
				out.WriteByte(c)
				if i+1 < len(body) {
					i++
					out.WriteByte(body[i])
				}
			case '"':
				inQuotes = false
				out.WriteByte(c)
			default:
				out.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
			out.WriteByte(c)
		case '{', '[':
			out.WriteByte(c)
			indent++
			newline(&out, indent)
		case '}', ']':
			indent--
			newline(&out, indent)
			out.WriteByte(c)
		case ',':
			out.WriteByte(c)
			newline(&out, indent)
		case ':':
			out.WriteString(": ")
		case ' ', '\t', '\n', '\r':
			// regenerated by the cases above
		default:
			out.WriteByte(c)
		}
	}

	return strings.TrimRight(out.String(), " \t\r\n")
}

func newline(out *strings.Builder, indent int) {
	out.WriteByte('\n')
	out.WriteString(strings.Repeat(indentUnit, max(indent, 0)))
}
