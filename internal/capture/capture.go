package capture

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Source records where an exchange came from
type Source string

const (
	SourceProxy Source = "proxy"
	SourceHAR   Source = "har"
	SourceFile  Source = "file"
)

// DefaultProto is used when a source does not say which protocol it spoke
const DefaultProto = "HTTP/1.1"

// Exchange is one captured request/response pair
type Exchange struct {
	ID         string        `json:"id" yaml:"id"`
	CapturedAt time.Time     `json:"capturedAt" yaml:"capturedAt"`
	Source     Source        `json:"source" yaml:"source"`
	Method     string        `json:"method" yaml:"method"`
	URL        string        `json:"url" yaml:"url"`
	Status     int           `json:"status" yaml:"status"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Request    string        `json:"request" yaml:"request"`
	Response   string        `json:"response" yaml:"response"`
}

// Title is the one-line summary used in listings
func (e Exchange) Title() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s", e.Method, e.URL)
	}
	return fmt.Sprintf("%s %s -> %d", e.Method, e.URL, e.Status)
}

// Header is a single header line in wire order
type Header struct {
	Name  string
	Value string
}

// SortedHeaders flattens h into lines ordered by name
func SortedHeaders(h http.Header) []Header {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []Header
	for _, name := range names {
		for _, value := range h[name] {
			lines = append(lines, Header{Name: name, Value: value})
		}
	}
	return lines
}

// RenderRequest serialises a request as raw text. The request line uses the
// origin form of rawURL and a Host header is added when headers lack one.
func RenderRequest(method, rawURL, proto string, headers []Header, body []byte) string {
	target := rawURL
	host := ""
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		target = u.RequestURI()
		host = u.Host
	}

	var sb strings.Builder
	sb.Grow(len(rawURL) + len(body) + 64*len(headers))
	sb.WriteString(method)
	sb.WriteByte(' ')
	sb.WriteString(target)
	sb.WriteByte(' ')
	sb.WriteString(protoOrDefault(proto))
	sb.WriteString("\r\n")

	if host != "" && !hasHeader(headers, "Host") {
		headers = append([]Header{{Name: "Host", Value: host}}, headers...)
	}
	writeHeaders(&sb, headers)
	sb.Write(body)
	return sb.String()
}

// RenderResponse serialises a response as raw text. status may be a bare
// reason phrase or a full "200 OK" line.
func RenderResponse(proto string, code int, status string, headers []Header, body []byte) string {
	var sb strings.Builder
	sb.Grow(len(body) + 64*len(headers))
	sb.WriteString(protoOrDefault(proto))
	sb.WriteByte(' ')
	sb.WriteString(statusLine(code, status))
	sb.WriteString("\r\n")
	writeHeaders(&sb, headers)
	sb.Write(body)
	return sb.String()
}

func writeHeaders(sb *strings.Builder, headers []Header) {
	for _, h := range headers {
		sb.WriteString(h.Name)
		sb.WriteString(": ")
		sb.WriteString(h.Value)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
}

func hasHeader(headers []Header, name string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

func protoOrDefault(proto string) string {
	if strings.HasPrefix(strings.ToUpper(proto), "HTTP/") {
		return strings.ToUpper(proto)
	}
	return DefaultProto
}

func statusLine(code int, status string) string {
	prefix := strconv.Itoa(code)
	switch {
	case strings.HasPrefix(status, prefix+" ") || status == prefix:
		return status
	case status != "":
		return prefix + " " + status
	case http.StatusText(code) != "":
		return prefix + " " + http.StatusText(code)
	default:
		return prefix
	}
}

// LoadFile reads a raw message from path. With crlf set, bare LF line
// endings are converted to CRLF so the header/body delimiter is recognised
// in files written by hand.
func LoadFile(path string, crlf bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read message file: %w", err)
	}

	text := string(data)
	if crlf {
		text = NormalizeCRLF(text)
	}
	return text, nil
}

// NormalizeCRLF rewrites every line ending as CRLF
func NormalizeCRLF(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\r\n")
}

// StartLine returns the first line of a raw message
func StartLine(raw string) string {
	line, _, _ := strings.Cut(raw, "\n")
	return strings.TrimRight(line, "\r")
}

// ParseStatus extracts the status code from a raw response start line.
// It returns 0 when the line is not a status line.
func ParseStatus(raw string) int {
	fields := strings.Fields(StartLine(raw))
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return code
}

// FromFiles builds an exchange from a request file and an optional response
// file. The method and URL are read from the request line and Host header.
func FromFiles(requestPath, responsePath string, crlf bool) (Exchange, error) {
	req, err := LoadFile(requestPath, crlf)
	if err != nil {
		return Exchange{}, err
	}

	var resp string
	if responsePath != "" {
		resp, err = LoadFile(responsePath, crlf)
		if err != nil {
			return Exchange{}, err
		}
	}

	method, target := parseRequestLine(req)
	return Exchange{
		CapturedAt: time.Now(),
		Source:     SourceFile,
		Method:     method,
		URL:        RequestURL(req, target),
		Status:     ParseStatus(resp),
		Request:    req,
		Response:   resp,
	}, nil
}

func parseRequestLine(raw string) (method, target string) {
	fields := strings.Fields(StartLine(raw))
	if len(fields) >= 2 {
		return fields[0], fields[1]
	}
	if len(fields) == 1 {
		return fields[0], ""
	}
	return "", ""
}

// RequestURL rebuilds an absolute URL from the request target and the Host
// header. Absolute targets are returned as they are.
func RequestURL(raw, target string) string {
	if strings.Contains(target, "://") {
		return target
	}

	head, _, _ := strings.Cut(raw, "\r\n\r\n")
	for _, line := range strings.Split(head, "\n") {
		name, value, ok := strings.Cut(strings.TrimRight(line, "\r"), ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), "Host") {
			return "http://" + strings.TrimSpace(value) + target
		}
	}
	return target
}
