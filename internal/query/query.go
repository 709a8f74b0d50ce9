// Package query selects fields from a JSON message body with JMESPath
// expressions such as `items[?status=='active'].id`.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmespath/go-jmespath"

	"github.com/studiowebux/reqshot/internal/message"
)

// ErrNoBody is returned when a message has no body to query
var ErrNoBody = errors.New("message has no body")

// Apply evaluates expression against a JSON document and returns the
// result as indented JSON. A missing field yields "null".
func Apply(document, expression string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(document), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}
	if result == nil {
		return "null", nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(out), nil
}

// Body runs expression over the body of a raw HTTP message
func Body(raw, expression string) (string, error) {
	_, body, ok := message.Split(raw)
	if !ok || strings.TrimSpace(body) == "" {
		return "", ErrNoBody
	}
	return Apply(body, expression)
}

// Valid reports whether expression compiles
func Valid(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}
