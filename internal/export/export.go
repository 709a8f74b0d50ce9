// Package export writes text snapshots of the inspector panes.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Snapshot is what the inspector shows at the moment of saving
type Snapshot struct {
	URL      string
	Request  string
	Response string
}

// FileName returns the snapshot file name for t
func FileName(t time.Time) string {
	return fmt.Sprintf("reqshot_%d.txt", t.UnixMilli())
}

// Render lays the snapshot out as plain text, request above response
func (s Snapshot) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", s.URL)
	fmt.Fprintf(&sb, "Length: %d bytes\n\n", len(s.Response))
	sb.WriteString("==== Request ====\n")
	sb.WriteString(s.Request)
	if !strings.HasSuffix(s.Request, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString("\n==== Response ====\n")
	sb.WriteString(s.Response)
	if !strings.HasSuffix(s.Response, "\n") {
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Write saves s into dir, creating the directory when needed, and returns
// the written path
func Write(dir string, s Snapshot) (string, error) {
	return WriteAt(dir, s, time.Now())
}

// WriteAt is Write with an explicit timestamp for the file name
func WriteAt(dir string, s Snapshot, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(at))
	if err := os.WriteFile(path, []byte(s.Render()), 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}
