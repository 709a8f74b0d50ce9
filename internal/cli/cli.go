package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/reqshot/internal/capture"
	"github.com/studiowebux/reqshot/internal/highlight"
	"github.com/studiowebux/reqshot/internal/message"
	"github.com/studiowebux/reqshot/internal/proxy"
	"github.com/studiowebux/reqshot/internal/redact"
	"github.com/studiowebux/reqshot/internal/search"
)

// Output formats accepted by the -o flag
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// IsInteractive checks if stdin is a terminal (not piped)
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// ValidateOutput rejects unknown -o values
func ValidateOutput(format string) error {
	switch format {
	case OutputText, OutputJSON, OutputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (use text, json or yaml)", format)
}

// formatOutput renders v as json or yaml, or calls text for the text format
func formatOutput(v any, format string, text func() string) (string, error) {
	switch format {
	case OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case OutputText:
		fallthrough
	default:
		return text(), nil
	}
}

func write(w io.Writer, v any, format string, text func() string) error {
	out, err := formatOutput(v, format, text)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// FormatResult is the structured form of a reformatted message
type FormatResult struct {
	Kind      string `json:"kind" yaml:"kind"`
	Header    string `json:"header" yaml:"header"`
	Body      string `json:"body" yaml:"body"`
	Formatted string `json:"formatted" yaml:"formatted"`
}

// FormatOptions controls Format
type FormatOptions struct {
	Output string

	// Highlighter colours the text output; nil prints plain text
	Highlighter *highlight.Highlighter
}

// Format reformats raw and writes it to w
func Format(w io.Writer, formatter *message.Formatter, raw string, opts FormatOptions) error {
	formatted := formatter.Format(raw)

	header, body, ok := message.Split(raw)
	result := FormatResult{Kind: message.KindOpaque.String(), Header: header, Formatted: formatted}
	if ok {
		result.Kind = message.Classify(header, body).String()
		_, result.Body, _ = message.Split(formatted)
	}

	return write(w, result, opts.Output, func() string {
		text := formatted
		if opts.Highlighter != nil {
			text = opts.Highlighter.Message(formatted)
		}
		return ensureNewline(text)
	})
}

// MatchView is one search hit with its line for display
type MatchView struct {
	Buffer string `json:"buffer" yaml:"buffer"`
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
	Line   int    `json:"line" yaml:"line"`
	Text   string `json:"text" yaml:"text"`
}

// SearchResult is the structured form of a search over both messages
type SearchResult struct {
	Query   string      `json:"query" yaml:"query"`
	Count   int         `json:"count" yaml:"count"`
	Matches []MatchView `json:"matches" yaml:"matches"`
}

// Search runs query over both buffers and writes the hits to w
func Search(w io.Writer, buffers search.Buffers, query, output string) error {
	session := search.Search(buffers, query)

	result := SearchResult{Query: query, Count: session.Len(), Matches: make([]MatchView, 0, session.Len())}
	for _, match := range session.Matches {
		line, text := lineAt(buffers.Text(match.Buffer), match.Start)
		result.Matches = append(result.Matches, MatchView{
			Buffer: match.Buffer.String(),
			Start:  match.Start,
			End:    match.End,
			Line:   line,
			Text:   text,
		})
	}

	return write(w, result, output, func() string {
		var sb strings.Builder
		for i, match := range result.Matches {
			fmt.Fprintf(&sb, "%d/%d %s:%d: %s\n", i+1, result.Count, match.Buffer, match.Line, match.Text)
		}
		fmt.Fprintf(&sb, "%d match(es) for %q\n", result.Count, query)
		return sb.String()
	})
}

// lineAt returns the 1-based line number holding offset and that line
// without its line ending
func lineAt(text string, offset int) (int, string) {
	start := strings.LastIndex(text[:offset], "\n") + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += offset
	}
	return strings.Count(text[:offset], "\n") + 1, strings.TrimRight(text[start:end], "\r")
}

// RedactResult is the structured form of a redaction pass
type RedactResult struct {
	Count    int    `json:"count" yaml:"count"`
	Redacted string `json:"redacted" yaml:"redacted"`
}

// Redact masks credential headers in text and writes the result to w
func Redact(w io.Writer, redactor *redact.Redactor, text, output string) error {
	redacted, count := redactor.RedactCount(text)
	return write(w, RedactResult{Count: count, Redacted: redacted}, output, func() string {
		return ensureNewline(redacted)
	})
}

// ListCaptures prints stored exchanges, newest first
func ListCaptures(w io.Writer, exchanges []capture.Exchange, output string) error {
	if exchanges == nil {
		exchanges = []capture.Exchange{}
	}
	return write(w, exchanges, output, func() string {
		if len(exchanges) == 0 {
			return "No captures\n"
		}
		var sb strings.Builder
		for _, ex := range exchanges {
			status := "---"
			if ex.Status > 0 {
				status = fmt.Sprintf("%s%d%s", getStatusColor(ex.Status), ex.Status, colorReset)
			}
			fmt.Fprintf(&sb, "%s  %s  %-5s %-7s %s  %s  %s\n",
				shortID(ex.ID),
				ex.CapturedAt.Local().Format("2006-01-02 15:04:05"),
				ex.Source,
				ex.Method,
				status,
				proxy.FormatDuration(ex.Duration),
				ex.URL)
		}
		return sb.String()
	})
}

// shortID is the prefix accepted by `captures show` and `view --id`
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func getStatusColor(status int) string {
	if status >= 200 && status < 300 {
		return colorGreen
	} else if status >= 400 {
		return colorRed
	}
	return colorYellow
}
