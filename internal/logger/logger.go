// Package logger builds the zerolog logger shared by the CLI, the proxy and
// the inspector.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and the writers
type Options struct {
	Level   string
	Writers []string // "console", "file"
	File    string
	// Console is where the console writer prints; defaults to stderr
	Console io.Writer
}

// New builds a logger from opts. With no writers the logger discards
// everything.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var writers []io.Writer
	for _, w := range opts.Writers {
		switch w {
		case "console":
			out := opts.Console
			if out == nil {
				out = os.Stderr
			}
			writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly})
		case "file":
			if opts.File == "" {
				return zerolog.Nop(), fmt.Errorf("file writer requires a log file path")
			}
			if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
				return zerolog.Nop(), fmt.Errorf("failed to create log directory: %w", err)
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
			})
		default:
			return zerolog.Nop(), fmt.Errorf("unknown log writer %q", w)
		}
	}

	if len(writers) == 0 {
		return zerolog.Nop(), nil
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}
