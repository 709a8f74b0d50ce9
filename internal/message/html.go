package message

import (
	"regexp"
	"strings"
	"unicode"
)

const indentUnit = "  "

var interTagSpace = regexp.MustCompile(`>\s+<`)

// voidElements never take children, so they do not open a nesting level
var voidElements = map[string]bool{
	"meta": true,
	"link": true,
	"br":   true,
}

// tagKind is the variant of a tag body found between '<' and '>'
type tagKind int

const (
	tagOpen tagKind = iota
	tagClose
	tagSelfClose
)

// ReindentHTML re-flows markup so that every tag starts on its own line,
// indented two spaces per nesting level. It is a textual pass, not a parser:
// malformed markup is emitted as-is and unbalanced closing tags are clamped
// at column zero.
func ReindentHTML(body string) string {
	normalized := strings.TrimSpace(interTagSpace.ReplaceAllString(body, "><"))
	tokens := tokenizeMarkup(normalized)

	var out strings.Builder
	out.Grow(len(normalized) + len(normalized)/4)
	indent := 0

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "<":
			// A '<' with no usable tag body after it is stray text
			if i+1 >= len(tokens) || isMarkupDelimiter(tokens[i+1]) || strings.TrimSpace(tokens[i+1]) == "" {
				out.WriteString(tok)
				continue
			}
			i++
			tag := tokens[i]
			// Without a closing '>' the body ends at the next '<', and its
			// trailing whitespace would become a blank line on the next pass
			if i+1 >= len(tokens) || tokens[i+1] != ">" {
				tag = strings.TrimRightFunc(tag, unicode.IsSpace)
			}

			switch classifyTag(tag) {
			case tagClose:
				indent--
				writeTag(&out, indent, tag)
			case tagSelfClose:
				writeTag(&out, indent, tag)
			case tagOpen:
				writeTag(&out, indent, tag)
				if !voidElements[tagName(tag)] {
					indent++
				}
			}
		case ">":
			out.WriteString(tok)
		default:
			out.WriteString(strings.TrimSpace(tok))
		}
	}

	return strings.TrimSpace(out.String())
}

// tokenizeMarkup splits s on '<' and '>', keeping each delimiter as its own token.
// Empty runs between adjacent delimiters produce no token.
func tokenizeMarkup(s string) []string {
	tokens := make([]string, 0, strings.Count(s, "<")*3+1)
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '<' && s[i] != '>' {
			continue
		}
		if i > start {
			tokens = append(tokens, s[start:i])
		}
		tokens = append(tokens, s[i:i+1])
		start = i + 1
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isMarkupDelimiter(tok string) bool {
	return tok == "<" || tok == ">"
}

// classifyTag decides the variant of a tag body (the text between '<' and '>')
func classifyTag(tag string) tagKind {
	switch {
	case strings.HasPrefix(tag, "/"):
		return tagClose
	case strings.HasSuffix(tag, "/"):
		return tagSelfClose
	default:
		return tagOpen
	}
}

// tagName returns the lowercase element name of an opening tag body
func tagName(tag string) string {
	if idx := strings.IndexFunc(tag, unicode.IsSpace); idx >= 0 {
		tag = tag[:idx]
	}
	return strings.ToLower(tag)
}

func writeTag(out *strings.Builder, indent int, tag string) {
	out.WriteByte('\n')
	out.WriteString(strings.Repeat(indentUnit, max(indent, 0)))
	out.WriteByte('<')
	out.WriteString(tag)
}
