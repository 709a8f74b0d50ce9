package message

import (
	"strings"
	"unicode"
)

// Kind classifies a message body
type Kind int

const (
	KindOpaque Kind = iota
	KindHTML
	KindJSON
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindJSON:
		return "json"
	default:
		return "opaque"
	}
}

// Classify sniffs the body kind from the header block and the body text
func Classify(header, body string) Kind {
	lowerHeader := strings.ToLower(header)

	if strings.Contains(lowerHeader, "text/html") {
		return KindHTML
	}

	trimmed := strings.TrimLeftFunc(body, unicode.IsSpace)
	if hasPrefixFold(trimmed, "<!doctype") || hasPrefixFold(trimmed, "<html") {
		return KindHTML
	}

	if strings.Contains(lowerHeader, "json") || strings.ContainsAny(body, "{[") {
		return KindJSON
	}

	return KindOpaque
}

// hasPrefixFold reports whether s starts with prefix, ignoring ASCII case
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
