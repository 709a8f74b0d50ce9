// Package redact masks credential-bearing header lines and arbitrary spans
// of message text.
package redact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Token replaces every masked header value
const Token = "[REDACTED]"

// MaskRune fills spans hidden by MaskSpan
const MaskRune = '█'

// Rule masks the value of every header line whose name equals Header,
// ignoring case
type Rule struct {
	Header      string
	Replacement string
}

// DefaultRules are the header lines masked by Auto-Redact
var DefaultRules = []Rule{
	{Header: "Cookie", Replacement: Token},
	{Header: "Authorization", Replacement: Token},
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Redactor applies a fixed set of rules
type Redactor struct {
	rules []compiledRule
}

// New compiles rules. Header names are literal; a line matches only when the
// name starts the line, so Set-Cookie or Proxy-Authorization stay untouched.
func New(rules ...Rule) *Redactor {
	r := &Redactor{rules: make([]compiledRule, 0, len(rules))}
	for _, rule := range rules {
		pattern := regexp.MustCompile(`(?im)^(` + regexp.QuoteMeta(rule.Header) + `)[ \t]*:[ \t]*[^\r\n]*`)
		r.rules = append(r.rules, compiledRule{
			pattern:     pattern,
			replacement: "${1}: " + strings.ReplaceAll(rule.Replacement, "$", "$$"),
		})
	}
	return r
}

var defaultRedactor = New(DefaultRules...)

// Default returns the Cookie/Authorization redactor
func Default() *Redactor {
	return defaultRedactor
}

// Redact masks text with the default rules
func Redact(text string) string {
	return defaultRedactor.Redact(text)
}

// Redact rewrites every matching line to "<Name>: <replacement>", keeping
// the header name exactly as written. Running it twice changes nothing.
func (r *Redactor) Redact(text string) string {
	out, _ := r.RedactCount(text)
	return out
}

// RedactCount is Redact that also reports how many lines matched a rule
func (r *Redactor) RedactCount(text string) (string, int) {
	count := 0
	for _, rule := range r.rules {
		count += len(rule.pattern.FindAllStringIndex(text, -1))
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text, count
}

// MaskSpan replaces every rune in the byte range [start, end) of text with
// MaskRune. Out-of-range bounds are clamped and bounds inside a multi-byte
// rune are widened to the rune edges.
func MaskSpan(text string, start, end int) string {
	start = max(0, min(start, len(text)))
	end = max(start, min(end, len(text)))
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	if start == end {
		return text
	}

	n := utf8.RuneCountInString(text[start:end])
	return text[:start] + strings.Repeat(string(MaskRune), n) + text[end:]
}

// RemoveSpan deletes the byte range [start, end) from text
func RemoveSpan(text string, start, end int) string {
	start = max(0, min(start, len(text)))
	end = max(start, min(end, len(text)))
	return text[:start] + text[end:]
}
