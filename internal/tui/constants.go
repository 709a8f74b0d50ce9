package tui

import "time"

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Chrome around the panes: URL bar (1) + status/find bar (1)
	ChromeLines = 2

	// Viewport Padding and Borders
	ViewportBorderWidth       = 2 // Width consumed by borders
	ViewportPaddingHorizontal = 2 // Horizontal padding (left + right)

	// Pane title line above each viewport
	PaneTitleLines = 1

	// Help modal margins
	HelpWidthMargin  = 6
	HelpHeightMargin = 4

	// Input limits
	FindCharLimit = 256
	PathCharLimit = 1024

	// Status messages clear after this long
	StatusTimeout = 4 * time.Second
)
