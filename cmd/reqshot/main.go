package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/studiowebux/reqshot/internal/capture"
	"github.com/studiowebux/reqshot/internal/config"
	"github.com/studiowebux/reqshot/internal/logger"
	"github.com/studiowebux/reqshot/internal/message"
	"github.com/studiowebux/reqshot/internal/store"
	"github.com/studiowebux/reqshot/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what PersistentPreRunE sets up for every command
var app struct {
	settings     *config.Settings
	settingsPath string
	log          zerolog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "reqshot [request-file] [response-file]",
	Short: "reqshot - inspect, search and redact captured HTTP exchanges",
	Long: `reqshot shows a captured HTTP request and response side by side with
reformatted HTML/JSON bodies. Search both messages at once, scrub Cookie and
Authorization headers, then copy or save the result.

Run without arguments to pick a stored capture, or provide raw message files.

Examples:
  reqshot req.txt resp.txt             # Inspect two raw messages
  reqshot view --id 3f2a               # Inspect a stored capture
  reqshot proxy --port 8888            # Capture traffic through a proxy
  reqshot import-har session.har       # Store the entries of a HAR file
  reqshot format resp.txt --color      # Print a reformatted message
  reqshot search token req.txt resp.txt
  reqshot redact req.txt               # Print with credentials masked`,
	Version:           version.Version,
	Args:              cobra.MaximumNArgs(2),
	Annotations:       map[string]string{annotationTUI: "true"},
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runView,
}

// Persistent flags
var (
	flagLogLevel string
	flagConsole  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().BoolVar(&flagConsole, "log-console", false, "Also log to stderr (ignored by the TUI)")

	addViewFlags(rootCmd)

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(redactCmd)
	rootCmd.AddCommand(proxyCmd)
	rootCmd.AddCommand(capturesCmd)
	rootCmd.AddCommand(importHARCmd)
	rootCmd.AddCommand(keybindsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup initializes config, settings and logging
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	app.settingsPath = config.GetSettingsFilePath()
	settings, err := config.LoadSettings(app.settingsPath)
	if err != nil {
		return err
	}
	app.settings = settings

	level := settings.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}

	writers := settings.Log.Writer
	if flagConsole && !opensTUI(cmd) {
		writers = append(writers, "console")
	}
	if opensTUI(cmd) {
		writers = withoutConsole(writers)
	}

	log, err := logger.New(logger.Options{
		Level:   level,
		Writers: writers,
		File:    config.LogFile,
		Console: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	app.log = log.With().Str("cmd", cmd.Name()).Logger()

	return nil
}

// opensTUI reports whether cmd takes over the terminal
func opensTUI(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationTUI] == "true"
}

// annotationTUI marks commands that open the inspector
const annotationTUI = "tui"

func withoutConsole(writers []string) []string {
	out := make([]string, 0, len(writers))
	for _, w := range writers {
		if w != "console" {
			out = append(out, w)
		}
	}
	return out
}

// openStore opens the capture database
func openStore() (*store.Manager, error) {
	mgr, err := store.NewManager(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture store: %w", err)
	}
	return mgr, nil
}

func newFormatter() *message.Formatter {
	return message.NewFormatter(app.log)
}

// readInput reads a file, or stdin when path is "-"
func readInput(path string, crlf bool) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(data)
	if crlf {
		text = capture.NormalizeCRLF(text)
	}
	return text, nil
}
